package logger

import (
	"context"
	"fmt"
	"os"
	"sync"
)

type (
	loggerKey    struct{}
	requestIDKey struct{}
)

// WithContext returns a new context carrying l.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// WithRequestID returns a context carrying requestID and a child of l that
// adds it to every entry as request_id.
func WithRequestID(ctx context.Context, l Logger, requestID string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey{}, requestID)
	return WithContext(ctx, l.With(String("request_id", requestID)))
}

// RequestID returns the request id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext returns the logger stored in ctx. Without one it falls back to a
// warn-level stderr logger, tagged with the request id when ctx has one.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return l
	}
	if id := RequestID(ctx); id != "" {
		return fallbackLogger().With(String("request_id", id))
	}
	return fallbackLogger()
}

var (
	fallbackLog  Logger
	fallbackOnce sync.Once
)

func fallbackLogger() Logger {
	fallbackOnce.Do(func() {
		l, err := New(Config{Level: "warn", OutputPaths: []string{"stderr"}})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create fallback logger: %v\n", err)
			l = NewNop()
		}
		fallbackLog = l
	})
	return fallbackLog
}
