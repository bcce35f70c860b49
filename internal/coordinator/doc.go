// Package coordinator drives the download/export state machine.
//
// A Coordinator owns the model.UIState snapshot. Every transition runs on a
// single event-loop goroutine: public methods post closures to the loop and
// wait for them, and the one asynchronous operation, the report fetch, runs
// in its own goroutine and posts its result back to the loop when done.
// Consumers observe the state through State or Watch.
//
//	Idle ──OnDownloadReport──▶ Downloading ──success──▶ Downloaded
//	  ▲                            │
//	  │                          failure
//	  │                            ▼
//	  └──DismissDownloadErrorDialog── Failed
//
// OnDownloadReport is also accepted from Failed; it clears the dialog and
// moves straight to Downloading.
//
// ReportDownloaded is never tracked on its own; it is re-read from the
// report store after every transition.
package coordinator
