package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/fsnotify/fsnotify"

	"github.com/andyrewlee/scrollwin/internal/logging"
	"github.com/andyrewlee/scrollwin/internal/messages"
	"github.com/andyrewlee/scrollwin/internal/safego"
)

// DefaultPollInterval is how often a followed file is checked when no
// filesystem event arrived.
const DefaultPollInterval = time.Second

// File follows a file the way tail -F does: it keeps reading appended data,
// starts over when the file is truncated, and reopens the path when the file
// is replaced.
type File struct {
	path         string
	tailBytes    int64
	pollInterval time.Duration
	cfg          ReaderConfig

	mu     sync.Mutex
	cancel context.CancelFunc
	done   <-chan struct{}
}

// NewFile prepares to follow path. When tailBytes is positive only the last
// tailBytes of existing content are read.
func NewFile(path string, tailBytes int64, cfg ReaderConfig) *File {
	return &File{
		path:         filepath.Clean(path),
		tailBytes:    tailBytes,
		pollInterval: DefaultPollInterval,
		cfg:          cfg.withDefaults(),
	}
}

// SetPollInterval overrides the fallback poll interval. Must be called before
// Start.
func (f *File) SetPollInterval(d time.Duration) {
	if d > 0 {
		f.pollInterval = d
	}
}

func (f *File) Name() string { return f.path }

func (f *File) Start(ctx context.Context, out chan<- tea.Msg) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done != nil {
		return ErrStarted
	}

	fh, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.path, err)
	}
	info, err := fh.Stat()
	if err != nil {
		_ = fh.Close()
		return fmt.Errorf("stat %s: %w", f.path, err)
	}
	if info.IsDir() {
		_ = fh.Close()
		return fmt.Errorf("%s is a directory", f.path)
	}
	var pos int64
	tailing := f.tailBytes > 0 && info.Size() > f.tailBytes
	if tailing {
		// Start one byte early: the tail begins after the first newline at or
		// past that byte, so a line cut by the seek is never shown.
		pos = info.Size() - f.tailBytes - 1
		if _, err := fh.Seek(pos, io.SeekStart); err != nil {
			_ = fh.Close()
			return fmt.Errorf("seek %s: %w", f.path, err)
		}
	}

	// The directory is watched rather than the file so that a replaced file
	// is still seen.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("file source: fsnotify unavailable, polling %s: %v", f.path, err)
		watcher = nil
	} else if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		logging.Warn("file source: watch %s failed, polling: %v", filepath.Dir(f.path), err)
		_ = watcher.Close()
		watcher = nil
	}

	t := &tailer{
		path:  f.path,
		file:  fh,
		info:  info,
		pos:   pos,
		skip:  tailing,
		out:   out,
		batch: newBatcher(f.path, out, f.cfg.MaxPendingBytes),
		buf:   make([]byte, f.cfg.ReadBufferSize),
	}
	ctx, f.cancel = context.WithCancel(ctx)
	f.done = safego.GoDone("source.file.run", func() {
		defer t.close()
		if watcher != nil {
			defer watcher.Close()
		}
		err := t.run(ctx, watcher, f.cfg.FrameInterval, f.pollInterval)
		stopped(ctx, out, f.path, err)
	})
	return nil
}

// Close stops following and releases the file.
func (f *File) Close() error {
	f.mu.Lock()
	cancel, done := f.cancel, f.done
	f.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

// tailer is the state owned by the follow goroutine.
type tailer struct {
	path  string
	file  *os.File
	info  os.FileInfo
	pos   int64
	skip  bool // discard through the next newline
	out   chan<- tea.Msg
	batch *batcher
	buf   []byte
}

func (t *tailer) run(ctx context.Context, watcher *fsnotify.Watcher, frame, poll time.Duration) error {
	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if watcher != nil {
		events = watcher.Events
		errs = watcher.Errors
	}

	frameTicker := time.NewTicker(frame)
	defer frameTicker.Stop()
	pollTicker := time.NewTicker(poll)
	defer pollTicker.Stop()

	if err := t.readAvailable(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(event.Name) != t.path {
				continue
			}
			if err := t.sync(ctx); err != nil {
				return err
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logging.Warn("file source: watcher error for %s: %v", t.path, err)
		case <-pollTicker.C:
			if err := t.sync(ctx); err != nil {
				return err
			}
		case <-frameTicker.C:
			if !t.batch.flush(ctx) {
				return ctx.Err()
			}
		}
	}
}

// sync detects rotation and truncation, then reads whatever is new.
func (t *tailer) sync(ctx context.Context) error {
	current, err := os.Stat(t.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Removed or mid-rotation; keep draining the open handle.
		return t.readAvailable(ctx)
	case err != nil:
		return fmt.Errorf("stat %s: %w", t.path, err)
	}

	if !os.SameFile(t.info, current) {
		if err := t.readAvailable(ctx); err != nil {
			return err
		}
		fh, err := os.Open(t.path)
		if err != nil {
			// Replaced again before we got to it; the next event retries.
			logging.Warn("file source: reopen %s: %v", t.path, err)
			return nil
		}
		_ = t.file.Close()
		t.file = fh
		t.info = current
		t.pos = 0
		t.skip = false
		if err := t.restarted(ctx, "rotated", true); err != nil {
			return err
		}
		return t.readAvailable(ctx)
	}

	if current.Size() < t.pos {
		if _, err := t.file.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("seek %s: %w", t.path, err)
		}
		t.pos = 0
		t.skip = false
		if err := t.restarted(ctx, "truncated", false); err != nil {
			return err
		}
	}
	return t.readAvailable(ctx)
}

func (t *tailer) restarted(ctx context.Context, reason string, continues bool) error {
	logging.Info("file source: %s %s", t.path, reason)
	if !t.batch.flush(ctx) {
		return ctx.Err()
	}
	if !send(ctx, t.out, messages.SourceRestarted{Source: t.path, Reason: reason, Continues: continues}) {
		return ctx.Err()
	}
	return nil
}

// readAvailable reads up to the current end of file.
func (t *tailer) readAvailable(ctx context.Context) error {
	for {
		n, err := t.file.Read(t.buf)
		if n > 0 {
			t.pos += int64(n)
			data := t.buf[:n]
			if t.skip {
				data = t.skipCutLine(data)
			}
			if len(data) > 0 {
				chunk := make([]byte, len(data))
				copy(chunk, data)
				if !t.batch.add(ctx, chunk) {
					return ctx.Err()
				}
			}
		}
		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", t.path, err)
		}
	}
}

// skipCutLine drops the bytes of a line the initial seek landed inside.
func (t *tailer) skipCutLine(data []byte) []byte {
	idx := bytes.IndexByte(data, '\n')
	if idx < 0 {
		return nil
	}
	t.skip = false
	return data[idx+1:]
}

func (t *tailer) close() {
	if t.file != nil {
		_ = t.file.Close()
	}
}
