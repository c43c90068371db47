package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/jeonse-risk/internal/model"
	"github.com/sells-group/jeonse-risk/internal/pipeline"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testReport(address string, level model.RiskLevel, score int) *pipeline.Report {
	return &pipeline.Report{
		Address:  address,
		Sections: map[string]string{"secured_claims": "found"},
		Mortgages: []model.EncumbranceRecord{
			{Priority: 5, Type: model.ClaimMortgage, Amount: 300_000_000, EstimatedPrincipal: 250_000_000, Holder: "주식회사국민은행"},
		},
		Assessment: &model.RiskAssessment{
			OverallScore:    score,
			RiskLevel:       level,
			ProposedDeposit: 200_000_000,
			TotalDebt:       250_000_000,
			Provenance:      model.Provenance{ExtractionBackend: "pattern", ValuationSource: model.ValuationProvided},
		},
	}
}

func TestSQLite_SaveAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	rec, err := st.SaveAssessment(ctx, testReport("서울특별시 마포구 망원동 1", model.RiskSafe, 82))
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, int64(200_000_000), rec.Deposit)
	assert.Equal(t, 82, rec.Score)

	got, err := st.GetAssessment(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "서울특별시 마포구 망원동 1", got.Address)
	assert.Equal(t, model.RiskSafe, got.RiskLevel)
	require.NotNil(t, got.Report)
	require.NotNil(t, got.Report.Assessment)
	assert.Equal(t, int64(250_000_000), got.Report.Assessment.TotalDebt)
	require.Len(t, got.Report.Mortgages, 1)
	assert.Equal(t, "주식회사국민은행", got.Report.Mortgages[0].Holder)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSQLite_GetNotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetAssessment(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_SaveRejectsReportWithoutAssessment(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.SaveAssessment(context.Background(), &pipeline.Report{Address: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no assessment")

	_, err = st.SaveAssessment(context.Background(), nil)
	require.Error(t, err)
}

func TestSQLite_SaveAssessmentsBatch(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	recs, err := st.SaveAssessments(ctx, []*pipeline.Report{
		testReport("서울특별시 마포구 망원동 1", model.RiskSafe, 82),
		testReport("부산광역시 해운대구 우동 1", model.RiskHigh, 35),
		testReport("서울특별시 강남구 역삼동 2", model.RiskHigh, 30),
	})
	require.NoError(t, err)
	require.Len(t, recs, 3)

	all, err := st.ListAssessments(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	high, err := st.ListAssessments(ctx, ListFilter{RiskLevel: model.RiskHigh})
	require.NoError(t, err)
	assert.Len(t, high, 2)
	for _, r := range high {
		assert.Equal(t, model.RiskHigh, r.RiskLevel)
	}

	seoul, err := st.ListAssessments(ctx, ListFilter{Address: "서울"})
	require.NoError(t, err)
	assert.Len(t, seoul, 2)

	page, err := st.ListAssessments(ctx, ListFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestSQLite_SaveAssessmentsRollsBackOnError(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.SaveAssessments(ctx, []*pipeline.Report{
		testReport("서울특별시 마포구 망원동 1", model.RiskSafe, 82),
		{Address: "broken"},
	})
	require.Error(t, err)

	all, err := st.ListAssessments(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSQLite_SaveAssessmentsEmpty(t *testing.T) {
	st := newTestSQLiteStore(t)

	recs, err := st.SaveAssessments(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, recs)
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}
