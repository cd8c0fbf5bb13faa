package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/launchfee/backend/internal/common"
	"github.com/launchfee/backend/pkg/errorx"
	"github.com/launchfee/backend/pkg/router"
	"github.com/launchfee/backend/pkg/xcontext"
)

func Prometheus() router.CloserFunc {
	return func(ctx context.Context) {
		request := router.GetRequestInfo(ctx)
		if request == nil {
			return
		}

		code := 0
		if err := xcontext.GetError(ctx); err != nil {
			var errx errorx.Error
			if errors.As(err, &errx) {
				code = int(errx.Code)
			} else {
				code = -1
			}
		}

		common.PromCounters[common.HTTPRequestTotal].
			WithLabelValues(request.Request.URL.Path, fmt.Sprint(code)).Inc()
	}
}
