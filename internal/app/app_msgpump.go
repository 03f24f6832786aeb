package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/andyrewlee/scrollwin/internal/safego"
)

// SetMsgSender starts forwarding source messages to the program. Until it is
// called, messages queue in the source channel and the source blocks once it
// is full.
func (a *App) SetMsgSender(send func(tea.Msg)) {
	if send == nil {
		return
	}
	a.externalOnce.Do(func() {
		a.externalSender = send
		safego.Go("app.msgpump", a.drainSourceMsgs)
	})
}

func (a *App) drainSourceMsgs() {
	for {
		select {
		case <-a.ctx.Done():
			return
		case msg := <-a.sourceMsgs:
			if msg == nil {
				continue
			}
			a.externalSender(msg)
		}
	}
}
