package model

// Phase is the coarse state of the download/export state machine.
type Phase int

const (
	// PhaseIdle means no download is running and nothing is cached.
	PhaseIdle Phase = iota

	// PhaseDownloading means a fetch is in flight.
	PhaseDownloading

	// PhaseDownloaded means no download is running and a report is cached.
	PhaseDownloaded

	// PhaseFailed means the last download failed and the failure has been
	// neither dismissed nor retried.
	PhaseFailed
)

// String returns a human-readable name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDownloading:
		return "downloading"
	case PhaseDownloaded:
		return "downloaded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// UIState is a read-only snapshot of the export screen.
// It is only ever mutated by the coordinator; consumers receive copies.
type UIState struct {
	// DownloadInProgress is true while a fetch is in flight.
	DownloadInProgress bool `json:"download_in_progress"`

	// ReportDownloaded mirrors whether the report store currently holds a
	// document. It is recomputed from the store after every transition.
	ReportDownloaded bool `json:"report_downloaded"`

	// ShowDownloadFailedDialog is set when a download fails and cleared when
	// the failure is dismissed or a new download starts.
	ShowDownloadFailedDialog bool `json:"show_download_failed_dialog"`

	// ExportFormat is the format used by the next export.
	ExportFormat ExportFormat `json:"export_format"`

	// LastError describes the most recent download failure, if any.
	LastError string `json:"last_error,omitempty"`
}

// Phase derives the state machine phase from the snapshot.
func (s UIState) Phase() Phase {
	switch {
	case s.DownloadInProgress:
		return PhaseDownloading
	case s.ShowDownloadFailedDialog:
		return PhaseFailed
	case s.ReportDownloaded:
		return PhaseDownloaded
	default:
		return PhaseIdle
	}
}
