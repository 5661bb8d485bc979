// Package auth identifies the caller of a request.
//
// Middleware in this package never rejects a request. It only records who the
// caller is; the service layer decides whether an anonymous caller may proceed.
package auth

import "context"

type callerKey struct{}

// CallerResolver reports the authenticated caller of the current operation.
type CallerResolver interface {
	CallerID(ctx context.Context) (string, bool)
}

// WithCaller returns a copy of ctx carrying callerID.
func WithCaller(ctx context.Context, callerID string) context.Context {
	return context.WithValue(ctx, callerKey{}, callerID)
}

// CallerFromContext returns the caller stored by WithCaller.
func CallerFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(callerKey{}).(string)
	return id, ok && id != ""
}

// ContextResolver resolves the caller placed in the context by Identify or TrustHeader.
type ContextResolver struct{}

func (ContextResolver) CallerID(ctx context.Context) (string, bool) {
	return CallerFromContext(ctx)
}
