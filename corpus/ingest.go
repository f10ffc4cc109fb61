package corpus

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hazyhaar/dlm/catalog"
	"github.com/hazyhaar/dlm/reader"
)

// Pair is one input to ingestion: a file location and its business label.
type Pair struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

// FileFailure records why one file did not yield content. The file is still
// cataloged with its status; ingestion never aborts a batch for it.
type FileFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// Failure reasons in IngestReport. The first three mirror catalog statuses;
// store_write_conflict means extraction worked but the catalog write did not;
// canceled marks pairs never processed because the batch context ended.
const (
	ReasonMissingFile    = catalog.StatusMissingFile
	ReasonUnsupported    = catalog.StatusUnsupported
	ReasonExtractorError = catalog.StatusExtractorError
	ReasonStoreWrite     = "store_write_conflict"
	ReasonCanceled       = "canceled"
)

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Total      int           `json:"total"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Failures   []FileFailure `json:"failures,omitempty"`
}

// Ingest processes every pair: stat, route, extract, persist. Pairs run
// concurrently up to the configured worker count; each file's outcome is
// independent of the rest of the batch. Duplicate paths within or across
// runs overwrite, they never duplicate.
func (s *Service) Ingest(ctx context.Context, pairs []Pair) (*IngestReport, error) {
	report := &IngestReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Total:     len(pairs),
	}
	s.logger.Info("ingestion started", "run_id", report.RunID, "pairs", len(pairs))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for i, p := range pairs {
		if err := ctx.Err(); err != nil {
			// Pairs never dispatched are reported as canceled failures so
			// Total always equals Succeeded + Failed.
			mu.Lock()
			for _, rest := range pairs[i:] {
				report.Failed++
				report.Failures = append(report.Failures, FileFailure{
					Path:   rest.Path,
					Reason: ReasonCanceled,
					Detail: err.Error(),
				})
			}
			mu.Unlock()
			break
		}
		wg.Add(1)
		s.sem <- struct{}{}

		go func(p Pair) {
			defer wg.Done()
			defer func() { <-s.sem }()

			fail := s.ingestOne(ctx, p)

			mu.Lock()
			defer mu.Unlock()
			if fail != nil {
				report.Failed++
				report.Failures = append(report.Failures, *fail)
			} else {
				report.Succeeded++
			}
		}(p)
	}
	wg.Wait()

	report.FinishedAt = time.Now().UTC()
	s.logger.Info("ingestion finished",
		"run_id", report.RunID,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"duration", report.FinishedAt.Sub(report.StartedAt))
	return report, ctx.Err()
}

// ingestOne handles a single pair end to end and returns nil on success.
// Every outcome, success or failure, lands in the catalog under the
// canonical path so the label is never lost.
func (s *Service) ingestOne(ctx context.Context, p Pair) *FileFailure {
	path := p.Path
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	fi, err := reader.Stat(path)
	if err != nil {
		// The extension still comes from the path, so a labeled-but-missing
		// file keeps its extension feature in the catalog.
		rec := &catalog.FileRecord{
			Path:      path,
			Extension: reader.Extension(path),
			Status:    catalog.StatusMissingFile,
		}
		s.record(path, rec, p.Label, nil)
		return &FileFailure{Path: path, Reason: ReasonMissingFile, Detail: err.Error()}
	}

	rec := &catalog.FileRecord{
		Path:       path,
		SizeBytes:  fi.SizeBytes,
		ModifiedAt: fi.ModifiedAt,
		Extension:  fi.Extension,
	}

	strat := s.pipe.Route(path)
	if strat == reader.StrategyUnsupported {
		rec.Status = catalog.StatusUnsupported
		if f := s.record(path, rec, p.Label, nil); f != nil {
			return f
		}
		return &FileFailure{Path: path, Reason: ReasonUnsupported, Detail: "no extractor for ." + fi.Extension}
	}

	doc, err := s.extract(ctx, path, strat)
	if err != nil {
		s.logger.Warn("extraction failed", "path", path, "strategy", strat, "error", err)
		rec.Status = catalog.StatusExtractorError
		if f := s.record(path, rec, p.Label, nil); f != nil {
			return f
		}
		return &FileFailure{Path: path, Reason: ReasonExtractorError, Detail: err.Error()}
	}

	rec.Status = catalog.StatusOK
	if f := s.record(path, rec, p.Label, &catalog.ContentRecord{Text: doc.Text, Extractor: doc.Extractor}); f != nil {
		return f
	}
	return nil
}

// extract runs one extraction under the per-file deadline. Fallback calls
// additionally hold a fallback slot so a slow external service cannot
// monopolize the worker pool. A dedicated extractor failure optionally
// retries on the fallback when retry_fallback is set.
func (s *Service) extract(ctx context.Context, path string, strat reader.Strategy) (*reader.Document, error) {
	exctx, cancel := context.WithTimeout(ctx, s.cfg.ExtractTimeout())
	defer cancel()

	if strat == reader.StrategyFallback {
		return s.extractFallback(exctx, path)
	}

	doc, err := s.pipe.Extract(exctx, path, strat)
	if err != nil && s.cfg.RetryFallback && s.pipe.FallbackAvailable() {
		s.logger.Debug("retrying on fallback", "path", path, "error", err)
		return s.extractFallback(exctx, path)
	}
	return doc, err
}

func (s *Service) extractFallback(ctx context.Context, path string) (*reader.Document, error) {
	select {
	case s.fbSem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.fbSem }()
	return s.pipe.Extract(ctx, path, reader.StrategyFallback)
}

// record persists one outcome and converts a store error into a failure.
func (s *Service) record(path string, rec *catalog.FileRecord, label string, content *catalog.ContentRecord) *FileFailure {
	if err := s.store.UpsertDocument(rec, label, content); err != nil {
		s.logger.Error("catalog write failed", "path", path, "error", err)
		return &FileFailure{Path: path, Reason: ReasonStoreWrite, Detail: err.Error()}
	}
	return nil
}
