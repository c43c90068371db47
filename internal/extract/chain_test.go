package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/jeonse-risk/internal/model"
)

type stubExtractor struct {
	name  string
	res   *model.Extraction
	err   error
	calls int
}

func (s *stubExtractor) Name() string { return s.name }

func (s *stubExtractor) Extract(context.Context, Input) (*model.Extraction, error) {
	s.calls++
	return s.res, s.err
}

func extraction(backend string, mortgages, unmatched int) *model.Extraction {
	e := model.NewExtraction(backend)
	for i := 0; i < mortgages; i++ {
		e.Mortgages = append(e.Mortgages, model.EncumbranceRecord{Priority: i + 1})
	}
	e.Unmatched = unmatched
	return e
}

func TestChain_FirstCompleteWins(t *testing.T) {
	a := &stubExtractor{name: "pattern", res: extraction("pattern", 2, 0)}
	b := &stubExtractor{name: "table", res: extraction("table", 3, 0)}

	c := NewChain(a, nil, b)
	assert.Equal(t, []string{"pattern", "table"}, c.Backends())

	ext, err := c.Extract(context.Background(), Input{})
	require.NoError(t, err)
	assert.Equal(t, "pattern", ext.Backend)
	assert.Equal(t, []string{"pattern"}, ext.BackendsTried)
	assert.Equal(t, 0, b.calls)
}

func TestChain_FallsThroughOnErrorAndIncomplete(t *testing.T) {
	a := &stubExtractor{name: "pattern", res: extraction("pattern", 1, 2)}
	b := &stubExtractor{name: "table", err: ErrBackendUnavailable}
	l := &stubExtractor{name: "llm", res: extraction("llm", 2, 0)}

	ext, err := NewChain(a, b, l).Extract(context.Background(), Input{})
	require.NoError(t, err)
	assert.Equal(t, "llm", ext.Backend)
	assert.Equal(t, []string{"pattern", "table", "llm"}, ext.BackendsTried)
}

func TestChain_KeepsBestIncomplete(t *testing.T) {
	a := &stubExtractor{name: "pattern", res: extraction("pattern", 1, 3)}
	b := &stubExtractor{name: "table", res: extraction("table", 2, 1)}
	l := &stubExtractor{name: "llm", err: errors.New("model exploded")}

	ext, err := NewChain(a, b, l).Extract(context.Background(), Input{})
	require.NoError(t, err)
	assert.Equal(t, "table", ext.Backend)
	assert.Equal(t, 1, ext.Unmatched)
	assert.Len(t, ext.BackendsTried, 3)
}

func TestChain_AllFailYieldsEmpty(t *testing.T) {
	a := &stubExtractor{name: "table", err: ErrBackendUnavailable}
	b := &stubExtractor{name: "llm", err: errors.New("boom")}

	ext, err := NewChain(a, b).Extract(context.Background(), Input{})
	require.NoError(t, err, "a failed backend never fails the assessment")
	assert.Equal(t, BackendNone, ext.Backend)
	assert.True(t, ext.Empty())
}

func TestChain_ContextCancelled(t *testing.T) {
	a := &stubExtractor{name: "llm", err: context.Canceled}
	_, err := NewChain(a).Extract(context.Background(), Input{})
	assert.ErrorIs(t, err, context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := &stubExtractor{name: "pattern", res: extraction("pattern", 1, 0)}
	_, err = NewChain(b).Extract(ctx, Input{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, b.calls)
}
