package auth

import "context"

type ctxTokenKey struct{}

// ContextWithToken stores the authenticated session in ctx
func ContextWithToken(ctx context.Context, token *Token) context.Context {
	return context.WithValue(ctx, ctxTokenKey{}, token)
}

// TokenFromContext returns the authenticated session, or nil
func TokenFromContext(ctx context.Context) *Token {
	token, _ := ctx.Value(ctxTokenKey{}).(*Token)
	return token
}
