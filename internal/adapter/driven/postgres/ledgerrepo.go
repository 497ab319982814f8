package postgres

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

var _ driven.Ledger = (*LedgerRepo)(nil)

// LedgerRepo is the PostgreSQL implementation of the Ledger port interface.
type LedgerRepo struct {
	db *sql.DB

	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewLedgerRepo creates a new LedgerRepo backed by db.
func NewLedgerRepo(db *sql.DB) *LedgerRepo {
	return &LedgerRepo{db: db, now: time.Now}
}

const insertApplication = `
	INSERT INTO credit_applications (
		income_total, days_employed, years_employed, income_type, children_count,
		own_car, own_realty, prob_default, credit_score, risk_tier, decision,
		explanation_summary, explanation_reasons, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	RETURNING id
`

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Append stores a single record and returns it with ID and CreatedAt set.
func (r *LedgerRepo) Append(ctx context.Context, rec model.ApplicationRecord) (model.ApplicationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec.CreatedAt = r.stamp()
	if err := insert(ctx, r.db, &rec); err != nil {
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

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin append batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	last := r.last
	for i := range recs {
		rec := recs[i]
		rec.CreatedAt = r.stamp()
		if err := insert(ctx, tx, &rec); err != nil {
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

func (r *LedgerRepo) stamp() time.Time {
	t := r.now().UTC().Truncate(time.Microsecond)
	if t.Before(r.last) {
		t = r.last
	}
	r.last = t
	return t
}

func insert(ctx context.Context, q queryer, rec *model.ApplicationRecord) error {
	reasons := rec.Assessment.Explanation.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	reasonsJSON, err := json.Marshal(reasons)
	if err != nil {
		return fmt.Errorf("marshal explanation reasons: %w", err)
	}

	a, res := rec.Applicant, rec.Assessment
	err = q.QueryRowContext(ctx, insertApplication,
		a.IncomeTotal, a.DaysEmployed, a.YearsEmployed, a.IncomeType, a.ChildrenCount,
		string(a.OwnsCar), string(a.OwnsRealty),
		res.ProbabilityOfDefault, res.CreditScore, string(res.RiskTier), string(res.Decision),
		res.Explanation.Summary, string(reasonsJSON), rec.CreatedAt,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("insert credit application: %w", err)
	}

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

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query credit applications: %w", err)
	}
	defer rows.Close()

	recs := []model.ApplicationRecord{}
	for rows.Next() {
		var rec model.ApplicationRecord
		var ownCar, ownRealty, tier, decision string
		var reasonsJSON []byte

		a, res := &rec.Applicant, &rec.Assessment
		if err := rows.Scan(
			&rec.ID, &a.IncomeTotal, &a.DaysEmployed, &a.YearsEmployed, &a.IncomeType, &a.ChildrenCount,
			&ownCar, &ownRealty, &res.ProbabilityOfDefault, &res.CreditScore, &tier, &decision,
			&res.Explanation.Summary, &reasonsJSON, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan credit application: %w", err)
		}

		a.OwnsCar = model.Flag(ownCar)
		a.OwnsRealty = model.Flag(ownRealty)
		res.RiskTier = model.RiskTier(tier)
		res.Decision = model.Decision(decision)
		rec.CreatedAt = rec.CreatedAt.UTC()

		if err := json.Unmarshal(reasonsJSON, &res.Explanation.Reasons); err != nil {
			return nil, fmt.Errorf("unmarshal explanation reasons: %w", err)
		}
		if len(res.Explanation.Reasons) == 0 {
			res.Explanation.Reasons = nil
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
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM credit_applications`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count credit applications: %w", err)
	}
	return n, nil
}
