package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/launchfee/backend/pkg/errorx"
	"github.com/launchfee/backend/pkg/router"
	"github.com/launchfee/backend/pkg/xcontext"
)

func Logger() router.CloserFunc {
	return func(ctx context.Context) {
		request := router.GetRequestInfo(ctx)
		if request == nil {
			return
		}

		info := fmt.Sprintf("%s | %s", request.Method, request.Request.URL.Path)
		if err := xcontext.GetError(ctx); err != nil {
			var errx errorx.Error
			if errors.As(err, &errx) {
				xcontext.Logger(ctx).Warnf("%s | %d", info, errx.Code)
			} else {
				xcontext.Logger(ctx).Errorf("%s | %d", info, -1)
			}
		} else {
			xcontext.Logger(ctx).Infof(info)
		}
	}
}
