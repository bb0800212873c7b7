package web

import (
	"context"

	"github.com/starfeed/starfeed/adapters/auth"
	"github.com/starfeed/starfeed/app"
	"github.com/starfeed/starfeed/domain/key"
)

type contextKey string

const (
	ctxKeyDecision contextKey = "gate_decision"
	ctxKeyClaims   contextKey = "admin_claims"
)

func withDecision(ctx context.Context, d app.Decision) context.Context {
	return context.WithValue(ctx, ctxKeyDecision, d)
}

// decisionFrom returns the gate decision placed by the key middleware.
func decisionFrom(ctx context.Context) app.Decision {
	d, _ := ctx.Value(ctxKeyDecision).(app.Decision)
	return d
}

// keyFrom returns the authenticated API key. The zero Key means the
// middleware did not run.
func keyFrom(ctx context.Context) key.Key {
	return decisionFrom(ctx).Key
}

func withClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, ctxKeyClaims, c)
}

func claimsFrom(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(ctxKeyClaims).(*auth.Claims)
	return c
}
