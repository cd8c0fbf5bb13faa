package middleware

import (
	"context"
	"strings"

	"github.com/launchfee/backend/internal/model"
	"github.com/launchfee/backend/pkg/errorx"
	"github.com/launchfee/backend/pkg/jwt"
	"github.com/launchfee/backend/pkg/router"
	"github.com/launchfee/backend/pkg/xcontext"
)

// VerifyAccessToken resolves the wallet behind the request's bearer token or
// access-token cookie and stores it in the context. Requests without a token
// pass through unauthenticated; Authenticate rejects them where a wallet is
// required.
func VerifyAccessToken() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		request := router.GetRequestInfo(ctx)
		if request == nil {
			return ctx, nil
		}

		token := ""
		if authorization := request.Request.Header.Get("Authorization"); authorization != "" {
			token = strings.TrimPrefix(authorization, "Bearer ")
		} else {
			cfg := xcontext.Configs(ctx).Auth
			if cookie, err := request.Request.Cookie(cfg.AccessTokenName); err == nil {
				token = cookie.Value
			}
		}

		if token == "" {
			return ctx, nil
		}

		cfg := xcontext.Configs(ctx).Auth
		engine := jwt.NewEngine[model.AccessToken](cfg.TokenSecret, cfg.TokenExpiration)
		accessToken, err := engine.Verify(token)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
			return ctx, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		return xcontext.WithRequestWallet(ctx, accessToken.Address), nil
	}
}

// Authenticate stops requests with no authenticated wallet.
func Authenticate() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if xcontext.RequestWallet(ctx) == "" {
			return ctx, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		return ctx, nil
	}
}
