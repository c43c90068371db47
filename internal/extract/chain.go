package extract

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sells-group/jeonse-risk/internal/model"
)

// Chain tries backends in order. It stops at the first complete result
// (no unmatched entries) and otherwise keeps the best incomplete one. A
// failing backend never fails the chain; only context cancellation does.
type Chain struct {
	backends []Extractor
}

// NewChain creates a chain over backends in priority order. Nil backends
// are skipped.
func NewChain(backends ...Extractor) *Chain {
	c := &Chain{}
	for _, b := range backends {
		if b != nil {
			c.backends = append(c.backends, b)
		}
	}
	return c
}

// Name implements Extractor.
func (c *Chain) Name() string { return "chain" }

// Backends returns the backend names in order.
func (c *Chain) Backends() []string {
	names := make([]string, len(c.backends))
	for i, b := range c.backends {
		names[i] = b.Name()
	}
	return names
}

// Extract implements Extractor.
func (c *Chain) Extract(ctx context.Context, in Input) (*model.Extraction, error) {
	var best *model.Extraction
	var tried []string

	for _, b := range c.backends {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tried = append(tried, b.Name())

		res, err := b.Extract(ctx, in)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			if errors.Is(err, ErrBackendUnavailable) {
				zap.L().Debug("extract: backend unavailable", zap.String("backend", b.Name()))
			} else {
				zap.L().Warn("extract: backend failed, falling through",
					zap.String("backend", b.Name()),
					zap.Error(err),
				)
			}
			continue
		}
		if res == nil {
			continue
		}
		if res.Unmatched == 0 {
			res.BackendsTried = tried
			return res, nil
		}
		if better(res, best) {
			best = res
		}
		zap.L().Debug("extract: incomplete result, trying next backend",
			zap.String("backend", b.Name()),
			zap.Int("unmatched", res.Unmatched),
		)
	}

	if best == nil {
		best = model.NewExtraction(BackendNone)
	}
	best.BackendsTried = tried
	return best, nil
}

// better prefers fewer unmatched entries, then more extracted records.
func better(a, b *model.Extraction) bool {
	if b == nil {
		return true
	}
	if a.Unmatched != b.Unmatched {
		return a.Unmatched < b.Unmatched
	}
	return len(a.Mortgages)+len(a.LeaseRights)+len(a.Liens) > len(b.Mortgages)+len(b.LeaseRights)+len(b.Liens)
}
