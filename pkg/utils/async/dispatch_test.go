package async_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
	"github.com/groundwork-dev/groundwork/pkg/utils/async"
)

// safeBuffer is a thread-safe buffer for concurrent logging
type safeBuffer struct {
	b bytes.Buffer
	m sync.Mutex
}

func (sb *safeBuffer) Write(p []byte) (int, error) {
	sb.m.Lock()
	defer sb.m.Unlock()
	return sb.b.Write(p)
}

func (sb *safeBuffer) String() string {
	sb.m.Lock()
	defer sb.m.Unlock()
	return sb.b.String()
}

// syncHandler is a slog.Handler that signals when a log is written
type syncHandler struct {
	handler slog.Handler
	done    chan struct{}
}

func newSyncHandler(buf *safeBuffer) *syncHandler {
	return &syncHandler{
		handler: slog.NewTextHandler(buf, &slog.HandlerOptions{
			Level: slog.LevelError,
		}),
		done: make(chan struct{}, 1),
	}
}

func (h *syncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *syncHandler) Handle(ctx context.Context, r slog.Record) error {
	err := h.handler.Handle(ctx, r)
	select {
	case h.done <- struct{}{}:
	default:
	}
	return err
}

func (h *syncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &syncHandler{
		handler: h.handler.WithAttrs(attrs),
		done:    h.done,
	}
}

func (h *syncHandler) WithGroup(name string) slog.Handler {
	return &syncHandler{
		handler: h.handler.WithGroup(name),
		done:    h.done,
	}
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not complete within timeout")
	}
}

func TestDetach(t *testing.T) {
	t.Run("runs task asynchronously", func(t *testing.T) {
		executed := false
		done := async.Detach(context.Background(), "installer", func(ctx context.Context) error {
			executed = true
			return nil
		})

		wait(t, done)
		gt.True(t, executed)
	})

	t.Run("logs returned error with task name", func(t *testing.T) {
		logBuf := &safeBuffer{}
		handler := newSyncHandler(logBuf)
		ctx := ctxlog.With(context.Background(), slog.New(handler))

		done := async.Detach(ctx, "VulkanSDK-1.3.236.0-Installer.exe", func(ctx context.Context) error {
			return errors.New("exit status 1")
		})
		wait(t, done)

		select {
		case <-handler.done:
		case <-time.After(time.Second):
			t.Fatal("log was not written within timeout")
		}

		out := logBuf.String()
		gt.True(t, strings.Contains(out, "detached task failed"))
		gt.True(t, strings.Contains(out, "VulkanSDK-1.3.236.0-Installer.exe"))
		gt.True(t, strings.Contains(out, "exit status 1"))
	})

	t.Run("recovers from panic with stack trace", func(t *testing.T) {
		logBuf := &safeBuffer{}
		handler := newSyncHandler(logBuf)
		ctx := ctxlog.With(context.Background(), slog.New(handler))

		done := async.Detach(ctx, "panicking", func(ctx context.Context) error {
			panic("test panic with stack")
		})
		wait(t, done)

		select {
		case <-handler.done:
		case <-time.After(time.Second):
			t.Fatal("log was not written within timeout")
		}

		out := logBuf.String()
		gt.True(t, strings.Contains(out, "panic in detached task"))
		gt.True(t, strings.Contains(out, "test panic with stack"))
		gt.True(t, strings.Contains(out, "goroutine"))
		gt.True(t, strings.Contains(out, "dispatch_test.go"))
	})

	t.Run("preserves logger", func(t *testing.T) {
		ctx := ctxlog.With(context.Background(), slog.Default())

		var got *slog.Logger
		done := async.Detach(ctx, "logger", func(newCtx context.Context) error {
			got = ctxlog.From(newCtx)
			return nil
		})

		wait(t, done)
		gt.NotNil(t, got)
	})

	t.Run("is not cancelled with the caller", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		var cancelled bool
		done := async.Detach(ctx, "cancel", func(newCtx context.Context) error {
			cancel()
			select {
			case <-newCtx.Done():
				cancelled = true
			default:
			}
			return nil
		})

		wait(t, done)
		gt.False(t, cancelled)
	})
}
