package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/utils/errutil"
	"github.com/secmon-lab/casewright/pkg/utils/logging"
)

// Dispatch runs task in its own goroutine, detached from the cancellation of
// ctx but keeping its logger. A failure or panic is reported as name.
func Dispatch(ctx context.Context, name string, task func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				_ = errutil.Handle(bgCtx, goerr.New("panic in background task", goerr.V("panic", r)), name)
			}
		}()

		if err := task(bgCtx); err != nil {
			_ = errutil.Handle(bgCtx, err, name)
		}
	}()
}
