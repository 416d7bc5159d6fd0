// internal/event/event.go
package event

import "time"

// Type identifies the kind of event.
type Type int

// Run events, fired by the pipeline runner.
const (
	TypeUnknown Type = iota

	TypeFileTransformed // A file had at least one call site rewritten
	TypeFileUnchanged   // A file was read but had nothing to rewrite
	TypeFileSkipped     // A file was excluded by the include/exclude filter
	TypeFileFailed      // Reading or writing a file failed
	TypeWarning         // The transformer emitted a warning
	TypeRunFinished     // Every file of a run has been processed
)

func (t Type) String() string {
	switch t {
	case TypeFileTransformed:
		return "file-transformed"
	case TypeFileUnchanged:
		return "file-unchanged"
	case TypeFileSkipped:
		return "file-skipped"
	case TypeFileFailed:
		return "file-failed"
	case TypeWarning:
		return "warning"
	case TypeRunFinished:
		return "run-finished"
	default:
		return "unknown"
	}
}

// Event is the structure passed through the event bus.
type Event struct {
	Type Type
	Data interface{}
}

// FileTransformedData describes a rewritten file.
type FileTransformedData struct {
	Path     string
	Output   string // destination path, empty for dry runs and stdout
	MapPath  string // empty when the map is inlined or disabled
	Rewrites int
}

// FileData names a file for unchanged and skipped events.
type FileData struct {
	Path string
}

// FileFailedData carries the error for a file.
type FileFailedData struct {
	Path string
	Err  error
}

// WarningData is a transformer warning.
type WarningData struct {
	Message string
}

// RunFinishedData summarizes a run.
type RunFinishedData struct {
	Transformed int
	Unchanged   int
	Skipped     int
	Failed      int
	Rewrites    int
	Elapsed     time.Duration
}
