package common

import (
	"fmt"
	"runtime/debug"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/andyrewlee/scrollwin/internal/logging"
	"github.com/andyrewlee/scrollwin/internal/messages"
)

// SafeCmd wraps a command so that a panic surfaces as messages.Error
// instead of taking the program down.
func SafeCmd(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		return recoverMsg("command", cmd)
	}
}

// SafeTick wraps tea.Tick with panic recovery in the callback.
func SafeTick(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	if fn == nil {
		return nil
	}
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return recoverMsg("tick", func() tea.Msg { return fn(t) })
	})
}

func recoverMsg(context string, fn func() tea.Msg) (msg tea.Msg) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("panic in %s: %v\n%s", context, r, debug.Stack())
			msg = messages.Error{Err: fmt.Errorf("%s panic: %v", context, r), Context: context}
		}
	}()
	return fn()
}

// ReportError logs err and returns a command delivering it as messages.Error.
func ReportError(context string, err error) tea.Cmd {
	if err == nil {
		return nil
	}
	logging.Error("Error in %s: %v", context, err)
	return func() tea.Msg {
		return messages.Error{Err: err, Context: context}
	}
}
