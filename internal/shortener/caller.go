package shortener

import "context"

type callerKey struct{}

// Caller holds request metadata carried into published events.
type Caller struct {
	ClientIP  string
	UserAgent string
	Referrer  string
}

// WithCaller adds caller metadata to ctx.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom extracts caller metadata from ctx.
func CallerFrom(ctx context.Context) Caller {
	if v, ok := ctx.Value(callerKey{}).(Caller); ok {
		return v
	}

	return Caller{}
}
