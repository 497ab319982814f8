package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/creditpanel/internal/domain/model"
	"github.com/ericfisherdev/creditpanel/internal/domain/port/driven"
)

const defaultSeedWorkers = 4

// SeedError reports why a bootstrap seed was abandoned. Row and Field are set
// when a specific dataset row could not be read or encoded.
type SeedError struct {
	Path  string
	Row   int
	Field string
	Err   error
}

func (e *SeedError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("seed %s: row %d field %s: %v", e.Path, e.Row, e.Field, e.Err)
	}
	return fmt.Sprintf("seed %s: %v", e.Path, e.Err)
}

func (e *SeedError) Unwrap() error { return e.Err }

// SeedService imports a historical dataset into an empty ledger by running
// every row through the same pipeline as a live assessment.
type SeedService struct {
	mu      sync.Mutex
	scorer  *AssessService
	ledger  driven.Ledger
	source  driven.DatasetSource
	workers int
	metrics driven.PipelineMetrics
	logger  *slog.Logger
}

// NewSeedService creates a SeedService. workers bounds concurrent row scoring;
// values below 1 use the default.
func NewSeedService(
	scorer *AssessService,
	ledger driven.Ledger,
	source driven.DatasetSource,
	workers int,
	metrics driven.PipelineMetrics,
	logger *slog.Logger,
) *SeedService {
	if workers < 1 {
		workers = defaultSeedWorkers
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &SeedService{
		scorer:  scorer,
		ledger:  ledger,
		source:  source,
		workers: workers,
		metrics: metrics,
		logger:  logger,
	}
}

// SeedFromDataset inserts every row of the dataset at path when the ledger is
// empty and is a no-op otherwise. The emptiness check and the inserts run
// under one lock, and all rows are scored before anything is written, so a
// bad row leaves the ledger untouched. Callers run it before serving traffic.
func (s *SeedService) SeedFromDataset(ctx context.Context, path string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()

	count, err := s.ledger.Count(ctx)
	if err != nil {
		return 0, s.fail(&SeedError{Path: path, Err: fmt.Errorf("count ledger: %w", err)})
	}
	if count > 0 {
		s.logger.Info("ledger already populated, skipping seed", "path", path, "records", count)
		return 0, nil
	}

	if !s.scorer.Ready() {
		return 0, s.fail(&SeedError{Path: path, Err: model.ErrServiceUnavailable})
	}

	rows, err := s.source.Load(ctx, path)
	if err != nil {
		var rowErr *driven.RowError
		if errors.As(err, &rowErr) {
			return 0, s.fail(&SeedError{Path: path, Row: rowErr.Row, Field: rowErr.Field, Err: rowErr.Err})
		}
		return 0, s.fail(&SeedError{Path: path, Err: err})
	}

	recs, err := s.scoreRows(ctx, path, rows)
	if err != nil {
		return 0, s.fail(err)
	}

	inserted, err := s.ledger.AppendBatch(ctx, recs)
	if err != nil {
		return 0, s.fail(&SeedError{Path: path, Err: fmt.Errorf("append batch: %w", err)})
	}

	s.metrics.SeedCompleted(inserted)
	s.logger.Info("seeded ledger from dataset",
		"path", path,
		"inserted", inserted,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return inserted, nil
}

// scoreRows scores rows concurrently and returns the records in dataset
// order. When several rows fail, the earliest row is reported.
func (s *SeedService) scoreRows(ctx context.Context, path string, rows []driven.DatasetRow) ([]model.ApplicationRecord, error) {
	recs := make([]model.ApplicationRecord, len(rows))
	rowErrs := make([]error, len(rows))

	var g errgroup.Group
	g.SetLimit(s.workers)

	for i, row := range rows {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result, err := s.scorer.Score(row.Applicant)
			if err != nil {
				field := ""
				var encErr *model.EncodingError
				if errors.As(err, &encErr) {
					field = encErr.Field
				}
				rowErrs[i] = &SeedError{Path: path, Row: row.Line, Field: field, Err: err}
				return nil
			}

			recs[i] = model.NewApplicationRecord(row.Applicant, result)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, &SeedError{Path: path, Err: err}
	}

	for _, err := range rowErrs {
		if err != nil {
			return nil, err
		}
	}

	return recs, nil
}

func (s *SeedService) fail(err error) error {
	s.metrics.SeedFailed()
	s.logger.Error("seed aborted", "error", err)
	return err
}
