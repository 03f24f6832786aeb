// Package source produces the byte stream the viewer follows: a file being
// appended to, a command's terminal output, or any reader such as stdin.
//
// Every source delivers messages.SourceOutput batches on the frame interval,
// and a final messages.SourceStopped once it can produce nothing more.
package source

import (
	"context"
	"io"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/andyrewlee/scrollwin/internal/messages"
	"github.com/andyrewlee/scrollwin/internal/perf"
	"github.com/andyrewlee/scrollwin/internal/safego"
)

// Source is a line producer.
type Source interface {
	Name() string
	// Start begins producing on out and returns once the source is running.
	// Production stops when ctx is canceled or Close is called.
	Start(ctx context.Context, out chan<- tea.Msg) error
	Close() error
}

// ReaderConfig configures the shared read loop.
type ReaderConfig struct {
	Label           string // safego goroutine label
	ReadBufferSize  int
	ReadQueueSize   int
	FrameInterval   time.Duration
	MaxPendingBytes int
}

// DefaultReaderConfig returns the read loop settings used by all sources.
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Label:           "source.read",
		ReadBufferSize:  32 * 1024,
		ReadQueueSize:   64,
		FrameInterval:   16 * time.Millisecond,
		MaxPendingBytes: 256 * 1024,
	}
}

func (c ReaderConfig) withDefaults() ReaderConfig {
	d := DefaultReaderConfig()
	if c.Label == "" {
		c.Label = d.Label
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.ReadQueueSize <= 0 {
		c.ReadQueueSize = d.ReadQueueSize
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = d.FrameInterval
	}
	if c.MaxPendingBytes <= 0 {
		c.MaxPendingBytes = d.MaxPendingBytes
	}
	return c
}

// RunReader reads from r until it fails or ctx is canceled, sending buffered
// bytes as SourceOutput on every frame tick or once MaxPendingBytes is hit.
// It returns the read error, with io.EOF reported as nil. Pending bytes are
// always sent before returning unless ctx was canceled.
func RunReader(ctx context.Context, r io.Reader, out chan<- tea.Msg, name string, cfg ReaderConfig) error {
	if r == nil {
		return nil
	}
	cfg = cfg.withDefaults()

	dataCh := make(chan []byte, cfg.ReadQueueSize)
	errCh := make(chan error, 1)

	safego.Go(cfg.Label, func() {
		buf := make([]byte, cfg.ReadBufferSize)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case dataCh <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				errCh <- err
				close(dataCh)
				return
			}
		}
	})

	ticker := time.NewTicker(cfg.FrameInterval)
	defer ticker.Stop()

	b := newBatcher(name, out, cfg.MaxPendingBytes)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data, ok := <-dataCh:
			if !ok {
				if !b.flush(ctx) {
					return ctx.Err()
				}
				err := <-errCh
				if err == io.EOF {
					return nil
				}
				return err
			}
			if !b.add(ctx, data) {
				return ctx.Err()
			}
		case <-ticker.C:
			if !b.flush(ctx) {
				return ctx.Err()
			}
		}
	}
}

// batcher accumulates bytes between frame ticks.
type batcher struct {
	name    string
	out     chan<- tea.Msg
	pending []byte
	max     int
}

func newBatcher(name string, out chan<- tea.Msg, maxPending int) *batcher {
	return &batcher{name: name, out: out, max: maxPending}
}

// add buffers data and flushes early once the buffer is full.
func (b *batcher) add(ctx context.Context, data []byte) bool {
	b.pending = append(b.pending, data...)
	if len(b.pending) >= b.max {
		return b.flush(ctx)
	}
	return true
}

// flush sends buffered bytes, returning false if ctx ended first.
func (b *batcher) flush(ctx context.Context) bool {
	if len(b.pending) == 0 {
		return true
	}
	perf.Count("source_bytes", int64(len(b.pending)))
	msg := messages.SourceOutput{Source: b.name, Data: b.pending}
	b.pending = nil
	return send(ctx, b.out, msg)
}

// send delivers msg on out, returning false if ctx ends first.
func send(ctx context.Context, out chan<- tea.Msg, msg tea.Msg) bool {
	if out == nil {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case out <- msg:
		return true
	}
}

// stopped sends the final SourceStopped for name. A canceled context is a
// normal shutdown and is reported without an error.
func stopped(ctx context.Context, out chan<- tea.Msg, name string, err error) {
	if ctx.Err() != nil {
		return
	}
	send(ctx, out, messages.SourceStopped{Source: name, Err: err})
}
