package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
)

// Detach runs task in a new goroutine that outlives the caller's context.
//
// The logger carried by ctx is preserved, cancellation is not. A returned
// error or a panic is logged with the task name. The returned channel is
// closed when task has finished.
func Detach(ctx context.Context, name string, task func(ctx context.Context) error) <-chan struct{} {
	newCtx := newBackgroundContext(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				ctxlog.From(newCtx).Error("panic in detached task",
					"task", name,
					"recover", r,
					"stack", string(debug.Stack()))
			}
		}()

		if err := task(newCtx); err != nil {
			ctxlog.From(newCtx).Error("detached task failed", "task", name, "error", err)
			return
		}
		ctxlog.From(newCtx).Debug("detached task finished", "task", name)
	}()

	return done
}

// newBackgroundContext creates a background context keeping the ctxlog logger
func newBackgroundContext(ctx context.Context) context.Context {
	return ctxlog.With(context.Background(), ctxlog.From(ctx))
}
