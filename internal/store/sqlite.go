package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/jeonse-risk/internal/pipeline"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS assessments (
	id         TEXT PRIMARY KEY,
	address    TEXT NOT NULL,
	deposit    INTEGER NOT NULL,
	score      INTEGER NOT NULL,
	risk_level TEXT NOT NULL,
	report     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_assessments_risk_level ON assessments(risk_level);
CREATE INDEX IF NOT EXISTS idx_assessments_address ON assessments(address);
CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteInsert = `INSERT INTO assessments (id, address, deposit, score, risk_level, report, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertSQLite(ctx context.Context, ex execer, rep *pipeline.Report) (*Record, error) {
	rec, err := newRecord(rep, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	reportJSON, err := json.Marshal(rep)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal report")
	}
	_, err = ex.ExecContext(ctx, sqliteInsert,
		rec.ID, rec.Address, rec.Deposit, rec.Score, string(rec.RiskLevel), string(reportJSON), rec.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert assessment")
	}
	return rec, nil
}

func (s *SQLiteStore) SaveAssessment(ctx context.Context, rep *pipeline.Report) (*Record, error) {
	return insertSQLite(ctx, s.db, rep)
}

func (s *SQLiteStore) SaveAssessments(ctx context.Context, reps []*pipeline.Report) ([]*Record, error) {
	if len(reps) == 0 {
		return nil, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	out := make([]*Record, 0, len(reps))
	for _, rep := range reps {
		rec, err := insertSQLite(ctx, tx, rep)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
	}
	return out, nil
}

func (s *SQLiteStore) GetAssessment(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, address, deposit, score, risk_level, report, created_at FROM assessments WHERE id = ?`,
		id,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get assessment %s", id)
	}
	return rec, err
}

func (s *SQLiteStore) ListAssessments(ctx context.Context, filter ListFilter) ([]Record, error) {
	query := `SELECT id, address, deposit, score, risk_level, report, created_at FROM assessments WHERE 1=1`
	var args []any

	if filter.RiskLevel != "" {
		query += ` AND risk_level = ?`
		args = append(args, string(filter.RiskLevel))
	}
	if filter.Address != "" {
		query += ` AND address LIKE '%' || ? || '%'`
		args = append(args, filter.Address)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, listLimit(filter))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list assessments")
	}
	defer rows.Close() //nolint:errcheck

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list assessments iterate")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (*Record, error) {
	var r Record
	var reportJSON string
	var level string

	if err := row.Scan(&r.ID, &r.Address, &r.Deposit, &r.Score, &level, &reportJSON, &r.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "store: scan assessment")
	}
	r.RiskLevel = riskLevel(level)
	if err := decodeReport([]byte(reportJSON), &r); err != nil {
		return nil, err
	}
	return &r, nil
}
