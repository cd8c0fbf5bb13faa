package router

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/launchfee/backend/pkg/errorx"
	"github.com/launchfee/backend/pkg/xcontext"
)

type requestInfoKey struct{}

type RequestInfo struct {
	Method  string
	Pattern string
	Request *http.Request
}

func GetRequestInfo(ctx context.Context) *RequestInfo {
	if info, ok := ctx.Value(requestInfoKey{}).(*RequestInfo); ok {
		return info
	}

	return nil
}

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := router.requestContext(r)
		ctx = context.WithValue(ctx, requestInfoKey{},
			&RequestInfo{Method: method, Pattern: r.URL.Path, Request: r})

		if r.Method != method {
			writeResponse(ctx, w, newErrorResponse(
				errorx.New(errorx.BadRequest, "Method not allowed")))
			runClosers(router, ctx)
			return
		}

		var req Request
		var err error
		switch method {
		case http.MethodGet:
			err = bindQuery(r, &req)
		case http.MethodPost:
			err = bindBody(r, &req)
		}
		if err != nil {
			ctx = xcontext.SetError(ctx, errorx.New(errorx.BadRequest, "Cannot parse the request"))
			writeResponse(ctx, w, newErrorResponse(xcontext.GetError(ctx)))
			runClosers(router, ctx)
			return
		}

		for _, middleware := range router.befores {
			ctx, err = middleware(ctx)
			if err != nil {
				ctx = xcontext.SetError(ctx, err)
				writeResponse(ctx, w, newErrorResponse(err))
				runClosers(router, ctx)
				return
			}
		}

		resp, err := handler(ctx, &req)
		if err != nil {
			ctx = xcontext.SetError(ctx, err)
			writeResponse(ctx, w, newErrorResponse(err))
		} else {
			ctx = xcontext.SetResponse(ctx, resp)
			writeResponse(ctx, w, newResponse(resp))
		}

		runClosers(router, ctx)
	}
}

func runClosers(router *Router, ctx context.Context) {
	for _, closer := range router.closers {
		closer(ctx)
	}
}

func bindBody(r *http.Request, req any) error {
	if r.Body == nil {
		return nil
	}

	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(req); err != nil && err.Error() != "EOF" {
		return err
	}

	return nil
}

func writeResponse(ctx context.Context, w http.ResponseWriter, resp response) {
	w.Header().Set("Content-Type", "application/json")
	if err := WriteJson(w, resp); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}
}
