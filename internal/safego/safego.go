// Package safego runs background work (source readers, watchers) so that a
// panic is logged instead of taking down the terminal UI.
package safego

import (
	"runtime/debug"
	"sync"

	"github.com/andyrewlee/scrollwin/internal/logging"
)

// PanicHandler receives panic details from recovered goroutines.
type PanicHandler func(name string, recovered any, stack []byte)

var (
	panicHandlerMu sync.RWMutex
	panicHandler   PanicHandler
)

// SetPanicHandler registers a global handler for recovered panics.
func SetPanicHandler(handler PanicHandler) {
	panicHandlerMu.Lock()
	panicHandler = handler
	panicHandlerMu.Unlock()
}

// Run executes fn and reports whether it panicked. The panic is logged and
// forwarded to the registered handler. Runtime-fatal errors (e.g. concurrent
// map writes) are not recoverable.
func Run(name string, fn func()) (panicked bool) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		panicked = true
		if name == "" {
			name = "goroutine"
		}
		stack := debug.Stack()
		logging.Error("panic in %s: %v\n%s", name, r, stack)

		panicHandlerMu.RLock()
		handler := panicHandler
		panicHandlerMu.RUnlock()
		if handler != nil {
			func() {
				defer func() { _ = recover() }()
				handler(name, r, stack)
			}()
		}
	}()
	fn()
	return false
}

// Go runs fn in a new goroutine with panic recovery.
func Go(name string, fn func()) {
	go Run(name, fn)
}

// GoDone is Go with a channel that is closed once fn has returned or panicked.
func GoDone(name string, fn func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		Run(name, fn)
	}()
	return done
}
