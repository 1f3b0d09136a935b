package blueprint

import (
	"context"

	"github.com/tendermint/tendermint/libs/log"
)

// Context is the context passed through the runtime to every handler.
type Context = context.Context

type contextKey int // local to the blueprint module

const (
	contextKeyLogger contextKey = iota
	contextKeyTxSignature
)

var (
	// DefaultLogger is used for all context that have not
	// set anything themselves
	DefaultLogger = log.NewNopLogger()
)

// WithLogger sets the logger for this context.
func WithLogger(ctx Context, logger log.Logger) Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// WithLogInfo accepts keyvalue pairs, and returns another
// context like this, after passing all the keyvals to the
// Logger
func WithLogInfo(ctx Context, keyvals ...interface{}) Context {
	logger := GetLogger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// GetLogger returns the currently set logger, or DefaultLogger if none was
// set.
func GetLogger(ctx Context) log.Logger {
	val, ok := ctx.Value(contextKeyLogger).(log.Logger)
	if !ok {
		return DefaultLogger
	}
	return val
}

// WithTxSignature sets the primary signature of the transaction being
// processed. It identifies the transaction in logs.
func WithTxSignature(ctx Context, sig []byte) Context {
	return context.WithValue(ctx, contextKeyTxSignature, sig)
}

// GetTxSignature returns the primary signature of the transaction being
// processed, if any.
func GetTxSignature(ctx Context) ([]byte, bool) {
	val, ok := ctx.Value(contextKeyTxSignature).([]byte)
	return val, ok
}
