package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/creditpanel/internal/application"
	"github.com/ericfisherdev/creditpanel/internal/bootstrap"
	"github.com/ericfisherdev/creditpanel/internal/config"
	"github.com/ericfisherdev/creditpanel/internal/domain/port/driven"
)

const testdata = "../../internal/adapter/driven/riskmodel/testdata"

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "credit_data.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"AMT_INCOME_TOTAL,DAYS_EMPLOYED,NAME_INCOME_TYPE,CNT_CHILDREN,FLAG_OWN_CAR,FLAG_OWN_REALTY,TARGET\n"+
			"300000,-2190,Working,0,Y,N,0\n"+
			"120000,-180,Working,1,N,N,1\n"), 0o600))

	return &config.Config{
		DBDriver:    config.DriverSQLite,
		DBPath:      filepath.Join(dir, "ledger.db"),
		ModelPath:   filepath.Join(testdata, "model.json"),
		VocabPath:   filepath.Join(testdata, "vocabulary.yaml"),
		DatasetPath: csvPath,
		SeedOnStart: true,
		SeedWorkers: 2,
	}
}

func openTestLedger(t *testing.T, cfg *config.Config) driven.Ledger {
	t.Helper()
	ledger, closeDB, err := bootstrap.OpenLedger(context.Background(), cfg, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeDB() })
	return ledger
}

func TestSeedOnStart_SeedsEmptyLedger(t *testing.T) {
	cfg := newTestConfig(t)
	ledger := openTestLedger(t, cfg)

	sc, err := bootstrap.LoadServiceContext(cfg, slog.Default())
	require.NoError(t, err)
	svc := application.NewAssessService(sc, ledger, nil, slog.Default())

	seedOnStart(context.Background(), cfg, svc, ledger, nil, slog.Default())

	n, err := ledger.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSeedOnStart_WarnsWithoutModel(t *testing.T) {
	cfg := newTestConfig(t)
	ledger := openTestLedger(t, cfg)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	svc := application.NewAssessService(nil, ledger, nil, logger)

	seedOnStart(context.Background(), cfg, svc, ledger, nil, logger)

	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "seeding skipped: risk model not loaded")

	n, err := ledger.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSeedOnStart_Disabled(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.SeedOnStart = false
	ledger := openTestLedger(t, cfg)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	svc := application.NewAssessService(nil, ledger, nil, logger)

	seedOnStart(context.Background(), cfg, svc, ledger, nil, logger)

	assert.Empty(t, logs.String())
}

func TestSeedOnStart_LogsMissingDataset(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.DatasetPath = filepath.Join(t.TempDir(), "absent.csv")
	ledger := openTestLedger(t, cfg)

	sc, err := bootstrap.LoadServiceContext(cfg, slog.Default())
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	svc := application.NewAssessService(sc, ledger, nil, logger)

	seedOnStart(context.Background(), cfg, svc, ledger, nil, logger)

	assert.Contains(t, logs.String(), "level=ERROR")
	assert.Contains(t, logs.String(), "absent.csv")
}
