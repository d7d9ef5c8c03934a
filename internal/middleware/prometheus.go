package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/habitquest/backend/internal/common"
	"github.com/habitquest/backend/pkg/router"
	"github.com/habitquest/backend/pkg/xcontext"
)

func WithStartTime() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		return xcontext.WithStartTime(ctx, time.Now()), nil
	}
}

// Prometheus records the count and the duration of requests, labeled by path
// and HTTP status.
func Prometheus() router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		code := "200"
		if err := xcontext.Error(ctx); err != nil {
			code = fmt.Sprint(router.StatusCode(err))
		}

		common.PromCounters[common.HTTPRequestTotal].WithLabelValues(req.URL.Path, code).Inc()

		startTime := xcontext.StartTime(ctx)
		if !startTime.IsZero() {
			common.PromHistograms[common.HTTPRequestDurationSeconds].
				WithLabelValues(req.URL.Path, code).
				Observe(time.Since(startTime).Seconds())
		}
	}
}
