// Package store persists completed assessments.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/jeonse-risk/internal/model"
	"github.com/sells-group/jeonse-risk/internal/pipeline"
)

// ErrNotFound is returned when an assessment id does not exist.
var ErrNotFound = eris.New("store: not found")

// Record is one saved assessment.
type Record struct {
	ID        string           `json:"id"`
	Address   string           `json:"address"`
	Deposit   int64            `json:"deposit"`
	Score     int              `json:"score"`
	RiskLevel model.RiskLevel  `json:"risk_level"`
	Report    *pipeline.Report `json:"report"`
	CreatedAt time.Time        `json:"created_at"`
}

// ListFilter specifies criteria for listing assessments.
type ListFilter struct {
	RiskLevel model.RiskLevel `json:"risk_level,omitempty"`
	Address   string          `json:"address,omitempty"`
	Limit     int             `json:"limit,omitempty"`
	Offset    int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for assessments.
type Store interface {
	SaveAssessment(ctx context.Context, rep *pipeline.Report) (*Record, error)
	// SaveAssessments stores a batch in one round trip.
	SaveAssessments(ctx context.Context, reps []*pipeline.Report) ([]*Record, error)
	GetAssessment(ctx context.Context, id string) (*Record, error)
	ListAssessments(ctx context.Context, filter ListFilter) ([]Record, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

func newRecord(rep *pipeline.Report, now time.Time) (*Record, error) {
	if rep == nil || rep.Assessment == nil {
		return nil, eris.New("store: report has no assessment")
	}
	return &Record{
		ID:        uuid.New().String(),
		Address:   rep.Address,
		Deposit:   rep.Assessment.ProposedDeposit,
		Score:     rep.Assessment.OverallScore,
		RiskLevel: rep.Assessment.RiskLevel,
		Report:    rep,
		CreatedAt: now,
	}, nil
}

func listLimit(filter ListFilter) int {
	if filter.Limit <= 0 {
		return defaultListLimit
	}
	return filter.Limit
}

func riskLevel(s string) model.RiskLevel {
	return model.RiskLevel(s)
}

func decodeReport(data []byte, r *Record) error {
	r.Report = &pipeline.Report{}
	if err := json.Unmarshal(data, r.Report); err != nil {
		return eris.Wrapf(err, "store: unmarshal report %s", r.ID)
	}
	return nil
}
