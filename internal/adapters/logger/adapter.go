// Package logger bridges the shared zap-backed logger into the narrow
// logging interfaces the rest of nex declares for itself.
package logger

import (
	"context"
)

// Logger is the surface nex needs from the underlying zap wrapper. Any
// implementation with these four methods can sit behind a ZapAdapter.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]any)
	Debug(ctx context.Context, msg string, fields map[string]any)
	Warn(ctx context.Context, msg string, fields map[string]any)
	Error(ctx context.Context, msg string, err error, fields map[string]any)
}

// ZapAdapter forwards calls to the wrapped logger. The cmd, usecases and
// adapter packages each declare their own subset of these methods, so one
// adapter instance serves all of them.
type ZapAdapter struct {
	log Logger
}

// NewZapAdapter wraps log in an adapter.
func NewZapAdapter(log Logger) *ZapAdapter {
	return &ZapAdapter{log: log}
}

// Info logs at info level.
func (a *ZapAdapter) Info(ctx context.Context, msg string, fields map[string]any) {
	a.log.Info(ctx, msg, fields)
}

// Debug logs at debug level.
func (a *ZapAdapter) Debug(ctx context.Context, msg string, fields map[string]any) {
	a.log.Debug(ctx, msg, fields)
}

// Warn logs at warn level.
func (a *ZapAdapter) Warn(ctx context.Context, msg string, fields map[string]any) {
	a.log.Warn(ctx, msg, fields)
}

// Error logs at error level with the triggering error attached.
func (a *ZapAdapter) Error(ctx context.Context, msg string, err error, fields map[string]any) {
	a.log.Error(ctx, msg, err, fields)
}
