package messages

import "time"

// SourceOutput carries a batch of raw bytes read from the line source.
type SourceOutput struct {
	Source string
	Data   []byte
}

// SourceStopped is sent once when the line source ends. Err is nil for a
// clean end of input.
type SourceStopped struct {
	Source string
	Err    error
}

// SourceRestarted is sent when the source starts over. A truncated file
// discards the viewer's history; a rotated one Continues it.
type SourceRestarted struct {
	Source    string
	Reason    string
	Continues bool
}

// Frame fires the redraws queued for the next frame.
type Frame struct {
	At time.Time
}

// CopyWindow requests copying the materialized window to the clipboard.
type CopyWindow struct{}

// ToastLevel identifies the type of toast notification to display.
type ToastLevel string

const (
	ToastInfo    ToastLevel = "info"
	ToastSuccess ToastLevel = "success"
	ToastError   ToastLevel = "error"
	ToastWarning ToastLevel = "warning"
)

// Toast requests a toast notification in the status bar.
type Toast struct {
	Message string
	Level   ToastLevel
}

// ToastExpired clears the toast with the matching sequence number.
type ToastExpired struct {
	Seq int
}

// Error reports an error to display.
type Error struct {
	Err     error
	Context string
}

func (e Error) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e Error) Unwrap() error { return e.Err }
