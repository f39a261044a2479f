// Package narrative produces flavor text for engine results. Providers
// may fail or time out; callers wrap them with WithFallback so the game
// always gets text, degraded to a static template on any failure.
package narrative

import (
	"context"
	"log/slog"
	"time"

	"github.com/nathoo/dungeonmaster/types"
)

// Provider turns a structured request into flavor text.
type Provider interface {
	Generate(ctx context.Context, req types.NarrativeRequest) (string, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, req types.NarrativeRequest) (string, error)

// Generate implements Provider.
func (f ProviderFunc) Generate(ctx context.Context, req types.NarrativeRequest) (string, error) {
	return f(ctx, req)
}

// Fallback wraps a primary provider with the static templates. Generate
// never returns an error: any primary failure degrades to static text.
type Fallback struct {
	primary Provider
	static  *Static
	timeout time.Duration
	log     *slog.Logger
}

// WithFallback builds a Fallback around primary. A nil primary uses the
// static templates directly.
func WithFallback(primary Provider, log *slog.Logger) *Fallback {
	if log == nil {
		log = slog.Default()
	}
	return &Fallback{
		primary: primary,
		static:  NewStatic(),
		timeout: 15 * time.Second,
		log:     log,
	}
}

// Generate resolves the request, falling back to a static template on
// any primary failure. The error return exists to satisfy Provider and
// is always nil.
func (f *Fallback) Generate(ctx context.Context, req types.NarrativeRequest) (string, error) {
	if f.primary == nil {
		return f.static.Generate(ctx, req)
	}

	genCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	text, err := f.primary.Generate(genCtx, req)
	if err != nil || text == "" {
		f.log.Warn("narrative provider unavailable, using static text",
			"category", req.Category, "outcome", req.Outcome, "err", err)
		return f.static.Generate(ctx, req)
	}
	return text, nil
}
