package source

import (
	"context"
	"io"
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/andyrewlee/scrollwin/internal/safego"
)

// Reader follows an arbitrary reader, typically a piped stdin.
type Reader struct {
	name string
	r    io.Reader
	cfg  ReaderConfig

	mu     sync.Mutex
	cancel context.CancelFunc
	done   <-chan struct{}
}

// NewReader wraps r. The reader is never closed by the source.
func NewReader(name string, r io.Reader, cfg ReaderConfig) *Reader {
	if name == "" {
		name = "stdin"
	}
	cfg.Label = "source.reader"
	return &Reader{name: name, r: r, cfg: cfg}
}

func (s *Reader) Name() string { return s.name }

func (s *Reader) Start(ctx context.Context, out chan<- tea.Msg) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return ErrStarted
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = safego.GoDone("source.reader.run", func() {
		err := RunReader(ctx, s.r, out, s.name, s.cfg)
		stopped(ctx, out, s.name, err)
	})
	return nil
}

// Close stops delivery. A read already blocked on the underlying reader is
// abandoned rather than interrupted.
func (s *Reader) Close() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}
