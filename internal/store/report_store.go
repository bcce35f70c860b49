package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/nao1215/acctexport/internal/keyvalue"
	"github.com/nao1215/acctexport/internal/model"
)

// Storage keys for the cached report.
const (
	KeyAccountDataReport             = "account.data_report"
	KeyAccountDataReportDownloadTime = "account.data_report_download_time"
)

// ReportStore persists the downloaded report and its download time.
// All methods are safe for concurrent use.
//
// Design decision: We store the document and its download time under two
// keys and always move them together. Set and Clear go through a single
// keyvalue.Batch and Get reads both keys with GetMany, so the pair is
// atomic on the storage itself and not just inside this process. A pair
// that is still found half-present, for example one written by an older
// build, is reported as absent rather than repaired.
//
// The store holds no copy of the report. Every Get goes back to storage,
// which keeps it the single source of truth for the coordinator and the
// status command alike.
type ReportStore struct {
	// storage is the injected key-value backend.
	storage keyvalue.Storage

	// mu serializes access so that Get observes either the state before or
	// after a Set/Clear, never a mix.
	mu sync.Mutex
}

// New creates a ReportStore on top of storage.
func New(storage keyvalue.Storage) *ReportStore {
	return &ReportStore{storage: storage}
}

// Get returns the cached record, or nil if nothing is cached.
// A half-written pair is treated as absent.
func (s *ReportStore) Get(ctx context.Context) (*model.DownloadRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Both keys come from one read so another process's Set or Clear cannot
	// land between them.
	values, err := s.storage.GetMany(ctx, KeyAccountDataReport, KeyAccountDataReportDownloadTime)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	doc, ok := values[KeyAccountDataReport]
	if !ok {
		return nil, nil
	}
	raw, ok := values[KeyAccountDataReportDownloadTime]
	if !ok {
		return nil, nil
	}

	millis, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return nil, nil //nolint:nilerr // An unreadable timestamp means the pair is not intact.
	}

	return model.NewDownloadRecord(model.Document(doc), time.UnixMilli(millis)), nil
}

// Has reports whether a report is cached.
func (s *ReportStore) Has(ctx context.Context) (bool, error) {
	rec, err := s.Get(ctx)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// Set replaces the cached report and its download time in one atomic write.
func (s *ReportStore) Set(ctx context.Context, doc model.Document, downloadedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := keyvalue.NewBatch().
		Put(KeyAccountDataReport, doc).
		Put(KeyAccountDataReportDownloadTime, []byte(strconv.FormatInt(downloadedAt.UnixMilli(), 10)))

	if err := s.storage.Apply(ctx, batch); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Clear removes the cached report. Clearing an empty store is not an error.
func (s *ReportStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := keyvalue.NewBatch().
		Delete(KeyAccountDataReport).
		Delete(KeyAccountDataReportDownloadTime)

	if err := s.storage.Apply(ctx, batch); err != nil {
		return fmt.Errorf("failed to clear report: %w", err)
	}
	return nil
}
