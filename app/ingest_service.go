package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"contractbot/domain/dataset"
	"contractbot/internal"
	"contractbot/internal/config"
	"contractbot/internal/errors"
	"contractbot/ports"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// IngestService turns an upload batch into tables, or loads the example
// dataset when nothing was uploaded
type IngestService struct {
	reader         ports.SpreadsheetReader
	fallbackPath   string
	maxUploadBytes int64
	workers        int
	logger         *internal.Logger
}

// NewIngestService creates an ingest service
func NewIngestService(reader ports.SpreadsheetReader, dataConfig config.DataConfig, maxUploadBytes int64) *IngestService {
	workers := dataConfig.ParseWorkers
	if workers <= 0 {
		workers = 1
	}
	return &IngestService{
		reader:         reader,
		fallbackPath:   dataConfig.FallbackFile,
		maxUploadBytes: maxUploadBytes,
		workers:        workers,
		logger:         internal.DefaultLogger.With("IngestService"),
	}
}

// FallbackPath returns the example dataset location
func (s *IngestService) FallbackPath() string {
	return s.fallbackPath
}

type ingestSlot struct {
	table *dataset.Table
	err   error
}

// Ingest parses every upload in parallel. Failed files are reported in
// FileErrors and skipped; tables keep upload order. An empty batch loads the
// fallback instead.
func (s *IngestService) Ingest(ctx context.Context, uploads []dataset.Upload) (*dataset.IngestResult, error) {
	if len(uploads) == 0 {
		table, err := s.LoadFallback()
		if err != nil {
			return nil, err
		}
		return &dataset.IngestResult{Tables: []*dataset.Table{table}, UsedFallback: true}, nil
	}

	startTime := time.Now()
	slots := make([]ingestSlot, len(uploads))
	sem := semaphore.NewWeighted(int64(s.workers))

	var g errgroup.Group
	for i, upload := range uploads {
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			table, err := s.parseUpload(upload)
			slots[i] = ingestSlot{table: table, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "ingest cancelled")
	}

	result := &dataset.IngestResult{}
	for i, slot := range slots {
		if slot.err != nil {
			s.logger.Warn("skipping %s: %v", uploads[i].Filename, slot.err)
			result.FileErrors = append(result.FileErrors, dataset.FileError{Filename: uploads[i].Filename, Err: slot.err})
			continue
		}
		result.Tables = append(result.Tables, slot.table)
	}

	s.logger.Info("ingested %d of %d files in %.2fms (%d row issues)",
		len(result.Tables), len(uploads), float64(time.Since(startTime).Nanoseconds())/1e6, result.IssueCount())

	return result, nil
}

func (s *IngestService) parseUpload(upload dataset.Upload) (*dataset.Table, error) {
	if _, ok := dataset.DetectFormat(upload.Filename); !ok {
		return nil, errors.UnsupportedFile(upload.Filename)
	}
	if s.maxUploadBytes > 0 && upload.Size() > s.maxUploadBytes {
		return nil, errors.InvalidInput(fmt.Sprintf("file is %d bytes, the limit is %d", upload.Size(), s.maxUploadBytes))
	}
	return s.reader.Read(upload)
}

// LoadFallback reads the bundled example dataset
func (s *IngestService) LoadFallback() (*dataset.Table, error) {
	if _, err := os.Stat(s.fallbackPath); err != nil {
		return nil, errors.FallbackMissing(s.fallbackPath, err)
	}

	table, err := s.reader.ReadFile(s.fallbackPath)
	if err != nil {
		return nil, errors.FallbackMissing(s.fallbackPath, err)
	}
	table.Source = dataset.SourceFallback

	s.logger.Info("loaded example dataset %s (%d rows)", s.fallbackPath, table.RowCount())
	return table, nil
}
