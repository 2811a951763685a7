// Package ctxlog carries a logger, and the name of the input being
// worked on, on a context.
package ctxlog

import (
	"context"

	"github.com/go-kit/kit/log"
)

type key int

const (
	loggerKey key = 0
	sourceKey key = 1
)

func NewContext(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithSource names the document or database the work under ctx reads.
// Loggers returned for ctx carry it as the source key.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey, source)
}

// Lookup returns the logger stored on ctx, if any.
func Lookup(ctx context.Context) (log.Logger, bool) {
	v, ok := ctx.Value(loggerKey).(log.Logger)
	if !ok {
		return nil, false
	}
	return withSource(ctx, v), true
}

func FromContext(ctx context.Context) log.Logger {
	if logger, ok := Lookup(ctx); ok {
		return logger
	}
	return log.NewNopLogger()
}

// Or returns the logger on ctx, falling back to logger.
func Or(ctx context.Context, logger log.Logger) log.Logger {
	if l, ok := Lookup(ctx); ok {
		return l
	}
	return withSource(ctx, logger)
}

func withSource(ctx context.Context, logger log.Logger) log.Logger {
	source, ok := ctx.Value(sourceKey).(string)
	if !ok || source == "" {
		return logger
	}
	return log.With(logger, "source", source)
}
