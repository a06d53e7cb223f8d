package access

import "context"

type callerKey struct{}

// WithCaller attaches the caller to ctx. A nil caller marks the request anonymous.
func WithCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom returns nil for anonymous requests.
func CallerFrom(ctx context.Context) *Caller {
	caller, _ := ctx.Value(callerKey{}).(*Caller)
	return caller
}
