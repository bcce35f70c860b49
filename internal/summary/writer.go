package summary

import "io"

// Writer renders a Status.
//
// Implementations return the number of bytes written, like io.Writer, so
// callers can tell an empty rendering from a failed one.
type Writer interface {
	Write(status *Status) (int, error)
}

// baseWriter holds the output destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
