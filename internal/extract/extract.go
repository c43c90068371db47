// Package extract pulls claim and lien records out of located registry
// sections. Every backend returns the same model.Extraction shape so they
// can be chained as fallbacks.
package extract

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/jeonse-risk/internal/model"
)

// Backend names recorded in provenance.
const (
	BackendPattern = "pattern"
	BackendTable   = "table"
	BackendLLM     = "llm"
	BackendNone    = "none"
)

// ErrBackendUnavailable is returned by a backend that is not configured or
// has no input it can read. Chains fall through to the next backend.
var ErrBackendUnavailable = eris.New("extract: backend unavailable")

// Table is one pre-extracted table from a layout-aware OCR backend.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Input is what a backend reads. Secured and Other hold the located
// secured-claims and other-ownership-matters section text; either may be
// empty when the section was empty or missing.
type Input struct {
	Secured string
	Other   string
	Tables  []Table
	// Owners are current owner names, stripped from holder text where the
	// summary layout prints the target owner next to the creditor.
	Owners []string
}

// Extractor is implemented by every extraction backend.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, in Input) (*model.Extraction, error)
}
