package registry

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/provdir/internal/model"
)

// Limited throttles an inner Lookup. It exists for backends that proxy a
// real registry service; local snapshots don't need it.
type Limited struct {
	inner   Lookup
	limiter *rate.Limiter
}

// NewLimited wraps inner with a requests-per-second limit.
func NewLimited(inner Lookup, rps float64) *Limited {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &Limited{inner: inner, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Lookup waits for limiter capacity, then delegates.
func (l *Limited) Lookup(ctx context.Context, npi string) (*model.PartialRecord, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "registry: rate limit wait")
	}
	return l.inner.Lookup(ctx, npi)
}

// Close releases the inner backend when it holds resources.
func (l *Limited) Close() error {
	if c, ok := l.inner.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
