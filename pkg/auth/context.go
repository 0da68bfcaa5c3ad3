package auth

import (
	"context"
)

type contextKey string

// ContextKeyOperator is the context key for the authenticated operator
const ContextKeyOperator contextKey = "operator"

// WithOperator adds the operator subject to the context
func WithOperator(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ContextKeyOperator, subject)
}

// OperatorFromContext retrieves the operator subject from the context
func OperatorFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(ContextKeyOperator).(string)
	return sub, ok
}
