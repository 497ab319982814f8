package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ericfisherdev/creditpanel/internal/domain/model"
	"github.com/ericfisherdev/creditpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Ledger = (*LedgerRepo)(nil)

// timeFormat is fixed width so created_at sorts lexicographically.
const timeFormat = "2006-01-02 15:04:05.000000"

// LedgerRepo is the SQLite implementation of the Ledger port interface.
type LedgerRepo struct {
	db *DB

	// mu orders timestamp assignment with the insert so created_at never
	// runs backwards relative to id.
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewLedgerRepo creates a new LedgerRepo backed by the given DB.
func NewLedgerRepo(db *DB) *LedgerRepo {
	return &LedgerRepo{db: db, now: time.Now}
}

const insertApplication = `
	INSERT INTO credit_applications (
		income_total, days_employed, years_employed, income_type, children_count,
		own_car, own_realty, prob_default, credit_score, risk_tier, decision,
		explanation_summary, explanation_reasons, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Append stores a single record and returns it with ID and CreatedAt set.
func (r *LedgerRepo) Append(ctx context.Context, rec model.ApplicationRecord) (model.ApplicationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec.CreatedAt = r.stamp()
	if err := r.insert(ctx, r.db.Writer, &rec); err != nil {
		return model.ApplicationRecord{}, err
	}
	return rec, nil
}

// AppendBatch stores all records in one transaction; on error none are kept.
func (r *LedgerRepo) AppendBatch(ctx context.Context, recs []model.ApplicationRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin append batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	last := r.last
	for i := range recs {
		rec := recs[i]
		rec.CreatedAt = r.stamp()
		if err := r.insert(ctx, tx, &rec); err != nil {
			r.last = last
			return 0, fmt.Errorf("batch record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		r.last = last
		return 0, fmt.Errorf("commit append batch: %w", err)
	}

	return len(recs), nil
}

// stamp returns the current time, clamped so it never precedes the previous
// stamp. Callers hold r.mu.
func (r *LedgerRepo) stamp() time.Time {
	t := r.now().UTC().Truncate(time.Microsecond)
	if t.Before(r.last) {
		t = r.last
	}
	r.last = t
	return t
}

func (r *LedgerRepo) insert(ctx context.Context, db execer, rec *model.ApplicationRecord) error {
	reasons := rec.Assessment.Explanation.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	reasonsJSON, err := json.Marshal(reasons)
	if err != nil {
		return fmt.Errorf("marshal explanation reasons: %w", err)
	}

	a, res := rec.Applicant, rec.Assessment
	result, err := db.ExecContext(ctx, insertApplication,
		a.IncomeTotal, a.DaysEmployed, a.YearsEmployed, a.IncomeType, a.ChildrenCount,
		string(a.OwnsCar), string(a.OwnsRealty),
		res.ProbabilityOfDefault, res.CreditScore, string(res.RiskTier), string(res.Decision),
		res.Explanation.Summary, string(reasonsJSON), rec.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("insert credit application: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	rec.ID = id

	return nil
}

// ListAll returns every record, most recent first.
func (r *LedgerRepo) ListAll(ctx context.Context) ([]model.ApplicationRecord, error) {
	const query = `
		SELECT id, income_total, days_employed, years_employed, income_type, children_count,
		       own_car, own_realty, prob_default, credit_score, risk_tier, decision,
		       explanation_summary, explanation_reasons, created_at
		FROM credit_applications
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query credit applications: %w", err)
	}
	defer rows.Close()

	recs := []model.ApplicationRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credit application: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credit applications: %w", err)
	}

	return recs, nil
}

// Count returns the number of stored records.
func (r *LedgerRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM credit_applications`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count credit applications: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (model.ApplicationRecord, error) {
	var rec model.ApplicationRecord
	var ownCar, ownRealty, tier, decision, reasonsJSON, createdAt string

	a, res := &rec.Applicant, &rec.Assessment
	err := s.Scan(
		&rec.ID, &a.IncomeTotal, &a.DaysEmployed, &a.YearsEmployed, &a.IncomeType, &a.ChildrenCount,
		&ownCar, &ownRealty, &res.ProbabilityOfDefault, &res.CreditScore, &tier, &decision,
		&res.Explanation.Summary, &reasonsJSON, &createdAt,
	)
	if err != nil {
		return model.ApplicationRecord{}, err
	}

	a.OwnsCar = model.Flag(ownCar)
	a.OwnsRealty = model.Flag(ownRealty)
	res.RiskTier = model.RiskTier(tier)
	res.Decision = model.Decision(decision)

	if err := json.Unmarshal([]byte(reasonsJSON), &res.Explanation.Reasons); err != nil {
		return model.ApplicationRecord{}, fmt.Errorf("unmarshal explanation reasons: %w", err)
	}
	if len(res.Explanation.Reasons) == 0 {
		res.Explanation.Reasons = nil
	}

	rec.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.ApplicationRecord{}, fmt.Errorf("parse created_at: %w", err)
	}

	return rec, nil
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		timeFormat,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
