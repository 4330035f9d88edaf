package model

import (
	"context"
	"sync"
)

// TokenUsage accumulates LLM token counts for a single request.
// Safe for concurrent use.
type TokenUsage struct {
	mu  sync.Mutex
	in  int
	out int
}

// Add records tokens consumed by one model call.
func (u *TokenUsage) Add(in, out int) {
	u.mu.Lock()
	u.in += in
	u.out += out
	u.mu.Unlock()
}

// Totals returns the accumulated input and output token counts.
func (u *TokenUsage) Totals() (in, out int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.in, u.out
}

type usageCtxKey struct{}

// ContextWithUsage stores a token usage accumulator in the request context.
func ContextWithUsage(ctx context.Context, u *TokenUsage) context.Context {
	return context.WithValue(ctx, usageCtxKey{}, u)
}

// UsageFromContext retrieves the token usage accumulator from context, or nil.
func UsageFromContext(ctx context.Context) *TokenUsage {
	u, _ := ctx.Value(usageCtxKey{}).(*TokenUsage)
	return u
}

// AddUsage records token counts on the context's accumulator, if any.
func AddUsage(ctx context.Context, in, out int) {
	if u := UsageFromContext(ctx); u != nil {
		u.Add(in, out)
	}
}
