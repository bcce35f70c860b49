package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/acctexport/internal/export"
	"github.com/nao1215/acctexport/internal/keyvalue"
	"github.com/nao1215/acctexport/internal/model"
	"github.com/nao1215/acctexport/internal/remote"
	"github.com/nao1215/acctexport/internal/store"
)

const testReport = `{"reportId":"abc","text":"hello","data":{"x":1}}`

var fixedNow = time.UnixMilli(1_700_000_000_000)

// fakeClient is a scripted ReportClient.
type fakeClient struct {
	mu    sync.Mutex
	calls int
	doc   model.Document
	err   error

	// gate, when set, holds FetchReport until it is closed or ctx is done.
	gate chan struct{}
}

func (f *fakeClient) FetchReport(ctx context.Context) (model.Document, error) {
	f.mu.Lock()
	f.calls++
	gate, doc, err := f.gate, f.doc, f.err
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (f *fakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// brokenSetStore fails every Set.
type brokenSetStore struct {
	*store.ReportStore
}

func (brokenSetStore) Set(context.Context, model.Document, time.Time) error {
	return errors.New("disk full")
}

func newStore(t *testing.T) *store.ReportStore {
	t.Helper()
	return store.New(keyvalue.NewMemory())
}

func newCoordinator(t *testing.T, client ReportClient, st ReportStore, opts ...Option) *Coordinator {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	c := New(context.Background(), client, st, opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("empty store starts idle", func(t *testing.T) {
		t.Parallel()

		c := newCoordinator(t, &fakeClient{}, newStore(t))
		state := c.State()
		if state.Phase() != model.PhaseIdle {
			t.Errorf("Phase() = %v, want idle", state.Phase())
		}
		if state.ExportFormat != model.ExportFormatJSON {
			t.Errorf("ExportFormat = %v, want json", state.ExportFormat)
		}
	})

	t.Run("cached report starts downloaded", func(t *testing.T) {
		t.Parallel()

		st := newStore(t)
		if err := st.Set(context.Background(), model.Document(testReport), fixedNow); err != nil {
			t.Fatal(err)
		}
		c := newCoordinator(t, &fakeClient{}, st, WithExportFormat(model.ExportFormatText))
		state := c.State()
		if !state.ReportDownloaded {
			t.Error("ReportDownloaded = false, want true")
		}
		if state.ExportFormat != model.ExportFormatText {
			t.Errorf("ExportFormat = %v, want text", state.ExportFormat)
		}
	})
}

func TestOnDownloadReport(t *testing.T) {
	t.Parallel()

	t.Run("success commits the document and timestamp", func(t *testing.T) {
		t.Parallel()

		st := newStore(t)
		client := &fakeClient{doc: model.Document(testReport)}
		c := newCoordinator(t, client, st)

		if err := c.OnDownloadReport(); err != nil {
			t.Fatalf("OnDownloadReport() error = %v", err)
		}
		c.Wait()

		state := c.State()
		if state.DownloadInProgress {
			t.Error("DownloadInProgress = true after completion")
		}
		if !state.ReportDownloaded {
			t.Error("ReportDownloaded = false after success")
		}
		if state.ShowDownloadFailedDialog {
			t.Error("ShowDownloadFailedDialog = true after success")
		}

		rec, err := st.Get(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if rec == nil {
			t.Fatal("store is empty after success")
		}
		if string(rec.Document) != testReport {
			t.Errorf("stored document = %s", rec.Document)
		}
		if !rec.DownloadedAt.Equal(fixedNow) {
			t.Errorf("DownloadedAt = %v, want %v", rec.DownloadedAt, fixedNow)
		}
	})

	t.Run("failure leaves the store unchanged and shows the dialog", func(t *testing.T) {
		t.Parallel()

		st := newStore(t)
		old := model.Document(`{"reportId":"old","text":"old"}`)
		oldTime := time.UnixMilli(1_600_000_000_000)
		if err := st.Set(context.Background(), old, oldTime); err != nil {
			t.Fatal(err)
		}

		client := &fakeClient{err: remote.ErrIO}
		c := newCoordinator(t, client, st)

		if err := c.OnDownloadReport(); err != nil {
			t.Fatal(err)
		}
		c.Wait()

		state := c.State()
		if state.DownloadInProgress {
			t.Error("DownloadInProgress = true after failure")
		}
		if !state.ShowDownloadFailedDialog {
			t.Error("ShowDownloadFailedDialog = false after failure")
		}
		if state.Phase() != model.PhaseFailed {
			t.Errorf("Phase() = %v, want failed", state.Phase())
		}
		if state.LastError == "" {
			t.Error("LastError is empty after failure")
		}

		rec, err := st.Get(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if rec == nil || string(rec.Document) != string(old) || !rec.DownloadedAt.Equal(oldTime) {
			t.Errorf("store changed after failed download: %+v", rec)
		}
	})

	t.Run("commit failure is reported as a download failure", func(t *testing.T) {
		t.Parallel()

		st := brokenSetStore{newStore(t)}
		c := newCoordinator(t, &fakeClient{doc: model.Document(testReport)}, st)

		if err := c.OnDownloadReport(); err != nil {
			t.Fatal(err)
		}
		c.Wait()

		state := c.State()
		if !state.ShowDownloadFailedDialog {
			t.Error("ShowDownloadFailedDialog = false after commit failure")
		}
		if state.ReportDownloaded {
			t.Error("ReportDownloaded = true after commit failure")
		}
	})

	t.Run("re-entrant calls start exactly one fetch", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{doc: model.Document(testReport), gate: make(chan struct{})}
		c := newCoordinator(t, client, newStore(t))

		if err := c.OnDownloadReport(); err != nil {
			t.Fatal(err)
		}
		if err := c.OnDownloadReport(); err != nil {
			t.Fatal(err)
		}
		if !c.State().DownloadInProgress {
			t.Error("DownloadInProgress = false while fetch is held")
		}

		close(client.gate)
		c.Wait()

		if got := client.Calls(); got != 1 {
			t.Errorf("FetchReport called %d times, want 1", got)
		}
	})

	t.Run("a new download is allowed after a failure", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{err: remote.ErrIO}
		c := newCoordinator(t, client, newStore(t))

		if err := c.OnDownloadReport(); err != nil {
			t.Fatal(err)
		}
		c.Wait()
		if err := c.DismissDownloadErrorDialog(); err != nil {
			t.Fatal(err)
		}

		client.mu.Lock()
		client.err = nil
		client.doc = model.Document(testReport)
		client.mu.Unlock()

		if err := c.OnDownloadReport(); err != nil {
			t.Fatal(err)
		}
		c.Wait()

		if got := c.State().Phase(); got != model.PhaseDownloaded {
			t.Errorf("Phase() = %v, want downloaded", got)
		}
		if client.Calls() != 2 {
			t.Errorf("FetchReport called %d times, want 2", client.Calls())
		}
	})
}

func TestDismissDownloadErrorDialog(t *testing.T) {
	t.Parallel()

	c := newCoordinator(t, &fakeClient{err: remote.ErrIO}, newStore(t))
	if err := c.OnDownloadReport(); err != nil {
		t.Fatal(err)
	}
	c.Wait()

	if err := c.DismissDownloadErrorDialog(); err != nil {
		t.Fatal(err)
	}
	once := c.State()
	if err := c.DismissDownloadErrorDialog(); err != nil {
		t.Fatal(err)
	}
	twice := c.State()

	if once != twice {
		t.Errorf("second dismiss changed state: %+v -> %+v", once, twice)
	}
	if twice.ShowDownloadFailedDialog {
		t.Error("ShowDownloadFailedDialog = true after dismiss")
	}
}

func TestDeleteReport(t *testing.T) {
	t.Parallel()

	t.Run("empty store is a no-op", func(t *testing.T) {
		t.Parallel()

		c := newCoordinator(t, &fakeClient{}, newStore(t))
		for range 2 {
			if err := c.DeleteReport(); err != nil {
				t.Fatalf("DeleteReport() error = %v", err)
			}
		}
		if c.State().ReportDownloaded {
			t.Error("ReportDownloaded = true on empty store")
		}
	})

	t.Run("generate after delete fails", func(t *testing.T) {
		t.Parallel()

		c := newCoordinator(t, &fakeClient{doc: model.Document(testReport)}, newStore(t))
		if err := c.OnDownloadReport(); err != nil {
			t.Fatal(err)
		}
		c.Wait()
		if _, err := c.GenerateReport(); err != nil {
			t.Fatalf("GenerateReport() before delete error = %v", err)
		}

		if err := c.DeleteReport(); err != nil {
			t.Fatal(err)
		}
		if c.State().ReportDownloaded {
			t.Error("ReportDownloaded = true after delete")
		}
		if _, err := c.GenerateReport(); !errors.Is(err, export.ErrNoReportAvailable) {
			t.Errorf("GenerateReport() after delete error = %v, want ErrNoReportAvailable", err)
		}
	})

	t.Run("result of a download running during delete is discarded", func(t *testing.T) {
		t.Parallel()

		st := newStore(t)
		if err := st.Set(context.Background(), model.Document(`{"text":"old"}`), fixedNow); err != nil {
			t.Fatal(err)
		}
		client := &fakeClient{doc: model.Document(testReport), gate: make(chan struct{})}
		c := newCoordinator(t, client, st)

		if err := c.OnDownloadReport(); err != nil {
			t.Fatal(err)
		}
		if err := c.DeleteReport(); err != nil {
			t.Fatal(err)
		}
		close(client.gate)
		c.Wait()

		state := c.State()
		if state.DownloadInProgress || state.ReportDownloaded || state.ShowDownloadFailedDialog {
			t.Errorf("unexpected state after discarded download: %+v", state)
		}
		has, err := st.Has(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if has {
			t.Error("discarded download was written to the store")
		}
	})
}

func TestGenerateReport(t *testing.T) {
	t.Parallel()

	t.Run("no report", func(t *testing.T) {
		t.Parallel()

		c := newCoordinator(t, &fakeClient{}, newStore(t))
		if _, err := c.GenerateReport(); !errors.Is(err, export.ErrNoReportAvailable) {
			t.Errorf("GenerateReport() error = %v, want ErrNoReportAvailable", err)
		}
	})

	t.Run("uses the selected format", func(t *testing.T) {
		t.Parallel()

		st := newStore(t)
		if err := st.Set(context.Background(), model.Document(testReport), fixedNow); err != nil {
			t.Fatal(err)
		}
		c := newCoordinator(t, &fakeClient{}, st)

		artifact, err := c.GenerateReport()
		if err != nil {
			t.Fatal(err)
		}
		if artifact.MIMEType != model.MIMETypeJSON {
			t.Errorf("MIMEType = %q, want %q", artifact.MIMEType, model.MIMETypeJSON)
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(artifact.Data, &obj); err != nil {
			t.Fatal(err)
		}
		if _, ok := obj["text"]; ok {
			t.Error("JSON export contains text")
		}
		if _, ok := obj["data"]; !ok {
			t.Error("JSON export lacks data")
		}

		if err := c.SetExportFormat(model.ExportFormatText); err != nil {
			t.Fatal(err)
		}
		artifact, err = c.GenerateReport()
		if err != nil {
			t.Fatal(err)
		}
		if string(artifact.Data) != "hello" || artifact.MIMEType != model.MIMETypeText {
			t.Errorf("text export = %q (%s)", artifact.Data, artifact.MIMEType)
		}
	})

	t.Run("malformed cached report", func(t *testing.T) {
		t.Parallel()

		st := newStore(t)
		if err := st.Set(context.Background(), model.Document(`{"reportId":"abc"}`), fixedNow); err != nil {
			t.Fatal(err)
		}
		c := newCoordinator(t, &fakeClient{}, st, WithExportFormat(model.ExportFormatText))
		if _, err := c.GenerateReport(); !errors.Is(err, export.ErrMalformedReport) {
			t.Errorf("GenerateReport() error = %v, want ErrMalformedReport", err)
		}
	})
}

func TestWatch(t *testing.T) {
	t.Parallel()

	client := &fakeClient{doc: model.Document(testReport), gate: make(chan struct{})}
	c := newCoordinator(t, client, newStore(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	states := c.Watch(ctx)

	if first := <-states; first.Phase() != model.PhaseIdle {
		t.Fatalf("first state = %v, want idle", first.Phase())
	}

	if err := c.OnDownloadReport(); err != nil {
		t.Fatal(err)
	}
	close(client.gate)

	timeout := time.After(5 * time.Second)
	for {
		select {
		case s, ok := <-states:
			if !ok {
				t.Fatal("watch channel closed early")
			}
			if s.Phase() == model.PhaseDownloaded {
				cancel()
				for range states {
				}
				return
			}
		case <-timeout:
			t.Fatal("did not observe downloaded state")
		}
	}
}

func TestClose(t *testing.T) {
	t.Parallel()

	client := &fakeClient{doc: model.Document(testReport), gate: make(chan struct{})}
	st := newStore(t)
	c := New(context.Background(), client, st)
	states := c.Watch(context.Background())

	if err := c.OnDownloadReport(); err != nil {
		t.Fatal(err)
	}

	// The held fetch is canceled by Close.
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	if err := c.OnDownloadReport(); !errors.Is(err, ErrClosed) {
		t.Errorf("OnDownloadReport() after Close error = %v, want ErrClosed", err)
	}
	if _, err := c.GenerateReport(); !errors.Is(err, ErrClosed) {
		t.Errorf("GenerateReport() after Close error = %v, want ErrClosed", err)
	}
	if has, _ := st.Has(context.Background()); has {
		t.Error("canceled download was written to the store")
	}

	for range states {
	}
}

func TestOfflineCoordinator(t *testing.T) {
	t.Parallel()

	st := newStore(t)
	if err := st.Set(context.Background(), model.Document(testReport), fixedNow); err != nil {
		t.Fatal(err)
	}
	c := newCoordinator(t, nil, st)

	if err := c.OnDownloadReport(); !errors.Is(err, ErrNoClient) {
		t.Errorf("OnDownloadReport() error = %v, want ErrNoClient", err)
	}
	if c.State().DownloadInProgress {
		t.Error("DownloadInProgress = true without a client")
	}
	if _, err := c.GenerateReport(); err != nil {
		t.Errorf("GenerateReport() error = %v", err)
	}
}

func TestRetryAfterFailure(t *testing.T) {
	t.Parallel()

	client := &fakeClient{err: remote.ErrIO}
	c := newCoordinator(t, client, newStore(t))

	if err := c.OnDownloadReport(); err != nil {
		t.Fatal(err)
	}
	c.Wait()
	if got := c.State().Phase(); got != model.PhaseFailed {
		t.Fatalf("Phase() = %v, want failed", got)
	}

	client.mu.Lock()
	client.err = nil
	client.doc = model.Document(testReport)
	client.mu.Unlock()

	// Retry without dismissing the dialog first.
	if err := c.OnDownloadReport(); err != nil {
		t.Fatal(err)
	}
	c.Wait()

	state := c.State()
	if got := state.Phase(); got != model.PhaseDownloaded {
		t.Errorf("Phase() = %v, want downloaded", got)
	}
	if state.ShowDownloadFailedDialog {
		t.Error("ShowDownloadFailedDialog = true after a successful retry")
	}
	if state.LastError != "" {
		t.Errorf("LastError = %q, want empty", state.LastError)
	}

	t.Run("a failed retry shows the new error", func(t *testing.T) {
		client.mu.Lock()
		client.err = errors.New("service unavailable")
		client.mu.Unlock()

		if err := c.OnDownloadReport(); err != nil {
			t.Fatal(err)
		}
		c.Wait()

		state := c.State()
		if got := state.Phase(); got != model.PhaseFailed {
			t.Errorf("Phase() = %v, want failed", got)
		}
		if state.LastError != "service unavailable" {
			t.Errorf("LastError = %q, want %q", state.LastError, "service unavailable")
		}
		if !state.ReportDownloaded {
			t.Error("earlier report should still be cached")
		}
	})
}

func TestWaitConcurrentWithDownloads(t *testing.T) {
	t.Parallel()

	client := &fakeClient{doc: model.Document(testReport)}
	c := newCoordinator(t, client, newStore(t))

	const workers = 4
	const rounds = 200

	var wg sync.WaitGroup
	for range workers {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range rounds {
				if err := c.OnDownloadReport(); err != nil {
					t.Errorf("OnDownloadReport() error = %v", err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for range rounds {
				c.Wait()
			}
		}()
	}
	wg.Wait()

	c.Wait()
	state := c.State()
	if state.DownloadInProgress {
		t.Error("DownloadInProgress = true after Wait")
	}
	if got := state.Phase(); got != model.PhaseDownloaded {
		t.Errorf("Phase() = %v, want downloaded", got)
	}

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	// Wait after Close returns immediately.
	c.Wait()
}
