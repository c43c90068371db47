package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/jeonse-risk/internal/pipeline"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS assessments (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	address    TEXT NOT NULL,
	deposit    BIGINT NOT NULL,
	score      INTEGER NOT NULL,
	risk_level TEXT NOT NULL,
	report     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_assessments_risk_level ON assessments(risk_level);
CREATE INDEX IF NOT EXISTS idx_assessments_address ON assessments(address);
CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at DESC);
`

var assessmentColumns = []string{"id", "address", "deposit", "score", "risk_level", "report", "created_at"}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveAssessment(ctx context.Context, rep *pipeline.Report) (*Record, error) {
	rec, reportJSON, err := prepareRecord(rep)
	if err != nil {
		return nil, err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO assessments (id, address, deposit, score, risk_level, report, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.Address, rec.Deposit, rec.Score, string(rec.RiskLevel), reportJSON, rec.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert assessment")
	}
	return rec, nil
}

// SaveAssessments writes the batch with COPY.
func (s *PostgresStore) SaveAssessments(ctx context.Context, reps []*pipeline.Report) ([]*Record, error) {
	if len(reps) == 0 {
		return nil, nil
	}
	out := make([]*Record, 0, len(reps))
	rows := make([][]any, 0, len(reps))
	for _, rep := range reps {
		rec, reportJSON, err := prepareRecord(rep)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
		rows = append(rows, []any{rec.ID, rec.Address, rec.Deposit, rec.Score, string(rec.RiskLevel), reportJSON, rec.CreatedAt})
	}

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{"assessments"}, assessmentColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: copy assessments")
	}
	if int(n) != len(rows) {
		return nil, eris.Errorf("postgres: copied %d of %d assessments", n, len(rows))
	}
	return out, nil
}

func (s *PostgresStore) GetAssessment(ctx context.Context, id string) (*Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, address, deposit, score, risk_level, report, created_at FROM assessments WHERE id = $1`,
		id,
	)
	rec, err := scanPgRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get assessment %s", id)
	}
	return rec, err
}

func (s *PostgresStore) ListAssessments(ctx context.Context, filter ListFilter) ([]Record, error) {
	query := `SELECT id, address, deposit, score, risk_level, report, created_at FROM assessments WHERE 1=1`
	var args []any

	if filter.RiskLevel != "" {
		args = append(args, string(filter.RiskLevel))
		query += ` AND risk_level = $` + strconv.Itoa(len(args))
	}
	if filter.Address != "" {
		args = append(args, "%"+filter.Address+"%")
		query += ` AND address LIKE $` + strconv.Itoa(len(args))
	}
	args = append(args, listLimit(filter))
	query += ` ORDER BY created_at DESC, id LIMIT $` + strconv.Itoa(len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list assessments")
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanPgRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list assessments iterate")
}

func prepareRecord(rep *pipeline.Report) (*Record, []byte, error) {
	rec, err := newRecord(rep, time.Now().UTC())
	if err != nil {
		return nil, nil, err
	}
	reportJSON, err := json.Marshal(rep)
	if err != nil {
		return nil, nil, eris.Wrap(err, "postgres: marshal report")
	}
	return rec, reportJSON, nil
}

func scanPgRecord(row pgx.Row) (*Record, error) {
	var r Record
	var level string
	var reportJSON []byte

	if err := row.Scan(&r.ID, &r.Address, &r.Deposit, &r.Score, &level, &reportJSON, &r.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "postgres: scan assessment")
	}
	r.RiskLevel = riskLevel(level)
	if err := decodeReport(reportJSON, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
