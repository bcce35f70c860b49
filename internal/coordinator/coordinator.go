package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/acctexport/internal/export"
	"github.com/nao1215/acctexport/internal/model"
)

// ReportClient fetches the report from the account service.
// Implementations must not touch local state.
type ReportClient interface {
	FetchReport(ctx context.Context) (model.Document, error)
}

// ReportStore is the single source of truth for the cached report.
type ReportStore interface {
	Get(ctx context.Context) (*model.DownloadRecord, error)
	Set(ctx context.Context, doc model.Document, downloadedAt time.Time) error
	Clear(ctx context.Context) error
	Has(ctx context.Context) (bool, error)
}

// Coordinator is the export screen state machine.
// All methods are safe for concurrent use.
//
// Design decision: We use an event loop that owns the state rather than a
// mutex around it. A download finishes on a goroutine the caller does not
// control, and posting the result back to the loop orders it against
// DeleteReport and Close without any lock ordering rules. The mutex that
// remains only guards the published snapshot, so State never waits for a
// transition to finish.
//
// The coordinator never caches the report itself. ReportDownloaded and
// GenerateReport always go back to the ReportStore, which is the only
// source of truth.
type Coordinator struct {
	client ReportClient
	store  ReportStore
	clock  func() time.Time
	logger *slog.Logger

	// ctx is canceled by Close; in-flight fetches run under it.
	ctx    context.Context
	cancel context.CancelFunc

	ops  chan func()
	quit chan struct{}
	done chan struct{}

	// fetches tracks fetch goroutines until their result has been applied.
	// Only Close waits on it; Wait uses inflight.
	fetches errgroup.Group

	closeOnce sync.Once

	// Owned by the loop goroutine.
	state      model.UIState
	generation uint64
	closing    bool
	// inflight is closed once the latest download has applied its result.
	inflight chan struct{}

	// mu guards the published snapshot and the watchers.
	mu          sync.RWMutex
	snapshot    model.UIState
	watchers    map[int]chan model.UIState
	nextWatcher int
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock sets the clock used to timestamp downloads.
func WithClock(clock func() time.Time) Option {
	return func(c *Coordinator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithExportFormat sets the initial export format.
func WithExportFormat(format model.ExportFormat) Option {
	return func(c *Coordinator) {
		c.state.ExportFormat = format
	}
}

// New creates a coordinator and starts its event loop. The initial
// ReportDownloaded flag is read from store before New returns.
// client may be nil when only cached data is needed.
// Call Close to release the loop.
func New(ctx context.Context, client ReportClient, store ReportStore, opts ...Option) *Coordinator {
	loopCtx, cancel := context.WithCancel(ctx)
	c := &Coordinator{
		client:   client,
		store:    store,
		clock:    time.Now,
		logger:   slog.Default(),
		ctx:      loopCtx,
		cancel:   cancel,
		ops:      make(chan func()),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		watchers: make(map[int]chan model.UIState),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.refreshDownloaded()
	c.snapshot = c.state

	go c.loop()
	return c
}

// loop applies posted closures one at a time.
func (c *Coordinator) loop() {
	defer close(c.done)
	for {
		select {
		case op := <-c.ops:
			op()
		case <-c.quit:
			return
		}
	}
}

// call runs fn on the loop and returns its error.
// It fails with ErrClosed once Close has started.
func (c *Coordinator) call(fn func() error) error {
	reply := make(chan error, 1)
	op := func() {
		if c.closing {
			reply <- ErrClosed
			return
		}
		reply <- fn()
	}
	select {
	case c.ops <- op:
		return <-reply
	case <-c.done:
		return ErrClosed
	}
}

// post runs fn on the loop even while closing, and waits for it.
func (c *Coordinator) post(fn func()) {
	applied := make(chan struct{})
	op := func() {
		fn()
		close(applied)
	}
	select {
	case c.ops <- op:
		<-applied
	case <-c.done:
	}
}

// OnDownloadReport starts a download unless one is already running.
// It returns as soon as DownloadInProgress is set; use Watch or Wait to
// observe the outcome.
func (c *Coordinator) OnDownloadReport() error {
	return c.call(func() error {
		if c.client == nil {
			return ErrNoClient
		}
		if c.state.DownloadInProgress {
			c.logger.Debug("download already in progress, ignoring request")
			return nil
		}

		// A retry replaces the previous failure.
		c.state.DownloadInProgress = true
		c.state.ShowDownloadFailedDialog = false
		c.state.LastError = ""
		c.publish()

		gen := c.generation
		done := make(chan struct{})
		c.inflight = done
		c.fetches.Go(func() error {
			defer close(done)
			doc, err := c.client.FetchReport(c.ctx)
			c.post(func() { c.finishDownload(gen, doc, err) })
			// Failures are reflected in the state, not in the group.
			return nil
		})
		return nil
	})
}

// finishDownload applies a fetch result. Runs on the loop.
func (c *Coordinator) finishDownload(gen uint64, doc model.Document, fetchErr error) {
	defer c.publish()
	c.state.DownloadInProgress = false

	if c.closing {
		return
	}

	if gen != c.generation {
		// The report was deleted while this download was running.
		c.logger.Info("discarding download result after delete")
		c.refreshDownloaded()
		return
	}

	if fetchErr != nil {
		c.logger.Warn("report download failed", "error", fetchErr)
		c.fail(fetchErr)
		return
	}

	if err := c.store.Set(c.ctx, doc, c.clock()); err != nil {
		c.logger.Warn("failed to save downloaded report", "error", err)
		c.fail(err)
		c.refreshDownloaded()
		return
	}

	c.state.LastError = ""
	c.refreshDownloaded()
	c.logger.Info("report downloaded", "bytes", len(doc))
}

func (c *Coordinator) fail(err error) {
	c.state.ShowDownloadFailedDialog = true
	c.state.LastError = err.Error()
}

// DismissDownloadErrorDialog clears the failure flag. It is idempotent.
func (c *Coordinator) DismissDownloadErrorDialog() error {
	return c.call(func() error {
		if !c.state.ShowDownloadFailedDialog {
			return nil
		}
		c.state.ShowDownloadFailedDialog = false
		c.publish()
		return nil
	})
}

// DeleteReport clears the cached report. Deleting when nothing is cached
// is not an error. A download that is still running when DeleteReport is
// called has its result discarded.
func (c *Coordinator) DeleteReport() error {
	return c.call(func() error {
		defer c.publish()

		if err := c.store.Clear(c.ctx); err != nil {
			c.refreshDownloaded()
			return err
		}
		c.generation++
		c.state.ReportDownloaded = false
		return nil
	})
}

// SetExportFormat selects the format of the next export.
func (c *Coordinator) SetExportFormat(format model.ExportFormat) error {
	return c.call(func() error {
		if c.state.ExportFormat == format {
			return nil
		}
		c.state.ExportFormat = format
		c.publish()
		return nil
	})
}

// GenerateReport exports the report currently in the store using the
// selected format. It fails with export.ErrNoReportAvailable when nothing
// is cached and export.ErrMalformedReport when the cached document does not
// have the expected shape.
func (c *Coordinator) GenerateReport() (*model.Artifact, error) {
	var artifact *model.Artifact
	err := c.call(func() error {
		rec, err := c.store.Get(c.ctx)
		if err != nil {
			return err
		}
		if rec == nil {
			return export.ErrNoReportAvailable
		}
		artifact, err = export.Generate(rec.Document, c.state.ExportFormat)
		return err
	})
	if err != nil {
		return nil, err
	}
	return artifact, nil
}

// refreshDownloaded re-reads ReportDownloaded from the store.
// A read error leaves the flag unchanged.
func (c *Coordinator) refreshDownloaded() {
	has, err := c.store.Has(c.ctx)
	if err != nil {
		c.logger.Warn("failed to read report store", "error", err)
		return
	}
	c.state.ReportDownloaded = has
}

// publish makes the loop's state visible to State and watchers.
func (c *Coordinator) publish() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot == c.state {
		return
	}
	c.snapshot = c.state
	for _, ch := range c.watchers {
		offer(ch, c.state)
	}
}

// offer replaces any unread value in ch with s.
func offer(ch chan model.UIState, s model.UIState) {
	select {
	case <-ch:
	default:
	}
	ch <- s
}

// State returns the current snapshot.
func (c *Coordinator) State() model.UIState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Watch returns a channel that yields the current state immediately and
// then the latest state after each change. Intermediate states may be
// skipped when the reader is slow. The channel is closed when ctx is done
// or the coordinator is closed.
func (c *Coordinator) Watch(ctx context.Context) <-chan model.UIState {
	ch := make(chan model.UIState, 1)

	c.mu.Lock()
	id := c.nextWatcher
	c.nextWatcher++
	ch <- c.snapshot
	select {
	case <-c.done:
		c.mu.Unlock()
		close(ch)
		return ch
	default:
	}
	c.watchers[id] = ch
	c.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-c.done:
		}
		c.mu.Lock()
		if _, ok := c.watchers[id]; ok {
			delete(c.watchers, id)
			close(ch)
		}
		c.mu.Unlock()
	}()

	return ch
}

// Wait blocks until the download running at the time of the call, if any,
// has applied its result. It may be called from any goroutine, including
// concurrently with OnDownloadReport. After Close it returns immediately.
func (c *Coordinator) Wait() {
	var inflight chan struct{}
	c.post(func() { inflight = c.inflight })
	if inflight != nil {
		<-inflight
	}
}

// Close cancels any running download, stops the event loop and closes all
// watch channels. Subsequent calls return ErrClosed from every method.
// Close is safe to call more than once.
func (c *Coordinator) Close() error {
	c.closeOnce.Do(func() {
		c.post(func() { c.closing = true })
		c.cancel()
		// No fetch can start once closing is set. Fetch goroutines always
		// return nil.
		_ = c.fetches.Wait()
		close(c.quit)
		<-c.done
	})
	return nil
}
