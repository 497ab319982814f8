package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/creditpanel/internal/domain/model"
)

func makeRecord(income float64, tier model.RiskTier, reasons ...string) model.ApplicationRecord {
	return model.NewApplicationRecord(
		model.NewApplicant(income, 6, "Working", 1, model.FlagYes, model.FlagNo),
		model.Assessment{
			ProbabilityOfDefault: 0.08,
			CreditScore:          92,
			RiskTier:             tier,
			Decision:             model.DecisionApprove,
			Explanation: model.Explanation{
				Summary: "Strong financial profile with low default probability.",
				Reasons: reasons,
			},
		},
	)
}

func TestLedgerRepo_AppendAndListAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepo(db)
	ctx := context.Background()

	in := makeRecord(300000, model.RiskTierLow, "High Income Stability (+)", "Asset Ownership (+)")
	stored, err := repo.Append(ctx, in)
	require.NoError(t, err)

	assert.Positive(t, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	if diff := cmp.Diff(stored, all[0], cmpopts.EquateApproxTime(time.Microsecond)); diff != "" {
		t.Errorf("record changed in storage (-stored +listed):\n%s", diff)
	}
}

func TestLedgerRepo_ListAll_Empty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepo(db)

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestLedgerRepo_NoReasonsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepo(db)
	ctx := context.Background()

	_, err := repo.Append(ctx, makeRecord(100000, model.RiskTierMedium))
	require.NoError(t, err)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Nil(t, all[0].Assessment.Explanation.Reasons)
}

func TestLedgerRepo_IDsIncreaseAndListIsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepo(db)
	ctx := context.Background()

	var ids []int64
	for i := range 5 {
		rec, err := repo.Append(ctx, makeRecord(float64(100000+i), model.RiskTierLow))
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i], ids[i-1])
	}

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, rec := range all {
		assert.Equal(t, ids[len(ids)-1-i], rec.ID)
	}
}

func TestLedgerRepo_TiesBrokenByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepo(db)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	ctx := context.Background()

	first, err := repo.Append(ctx, makeRecord(1, model.RiskTierLow))
	require.NoError(t, err)
	second, err := repo.Append(ctx, makeRecord(2, model.RiskTierLow))
	require.NoError(t, err)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
	assert.True(t, all[0].CreatedAt.Equal(fixed))
}

func TestLedgerRepo_ClockSkewDoesNotReorder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepo(db)
	ctx := context.Background()

	clock := []time.Time{
		time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC),
		time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC),
	}
	repo.now = func() time.Time {
		t := clock[0]
		clock = clock[1:]
		return t
	}

	first, err := repo.Append(ctx, makeRecord(1, model.RiskTierLow))
	require.NoError(t, err)
	second, err := repo.Append(ctx, makeRecord(2, model.RiskTierLow))
	require.NoError(t, err)

	assert.False(t, second.CreatedAt.Before(first.CreatedAt))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, all[0].ID)
}

func TestLedgerRepo_ConcurrentAppends(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepo(db)
	ctx := context.Background()

	const n = 40
	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := repo.Append(ctx, makeRecord(float64(i), model.RiskTierLow))
			if assert.NoError(t, err) {
				ids <- rec.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, count)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt))
		assert.Less(t, all[i].ID, all[i-1].ID)
	}
}

func TestLedgerRepo_AppendBatch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepo(db)
	ctx := context.Background()

	recs := []model.ApplicationRecord{
		makeRecord(1, model.RiskTierLow),
		makeRecord(2, model.RiskTierMedium),
		makeRecord(3, model.RiskTierHigh),
	}

	n, err := repo.AppendBatch(ctx, recs)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first means the last dataset row comes back first.
	assert.InDelta(t, 3, all[0].Applicant.IncomeTotal, 0)
	assert.InDelta(t, 1, all[2].Applicant.IncomeTotal, 0)
}

func TestLedgerRepo_AppendBatch_RollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepo(db)
	ctx := context.Background()

	bad := makeRecord(2, model.RiskTierLow)
	bad.Applicant.ChildrenCount = -1

	_, err := repo.AppendBatch(ctx, []model.ApplicationRecord{makeRecord(1, model.RiskTierLow), bad})
	require.Error(t, err)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "a failed batch must not leave partial rows")
}

func TestLedgerRepo_AppendRejectsInvalidRecord(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepo(db)

	bad := makeRecord(1, model.RiskTierLow)
	bad.Assessment.CreditScore = 101

	_, err := repo.Append(context.Background(), bad)
	assert.Error(t, err)
}

func TestLedgerRepo_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	db, err := NewDB(ctx, path)
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db.Writer))

	stored, err := NewLedgerRepo(db).Append(ctx, makeRecord(42, model.RiskTierLow))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewDB(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, RunMigrations(db.Writer))

	all, err := NewLedgerRepo(db).ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, stored.ID, all[0].ID)
	assert.Equal(t, path, db.Path())
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-03-01 12:00:00.123456", time.Date(2026, 3, 1, 12, 0, 0, 123456000, time.UTC)},
		{"2026-03-01 12:00:00", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		{"2026-03-01T12:00:00Z", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTime(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}

	_, err := parseTime("yesterday")
	assert.Error(t, err)
}
