// Package app is the bubbletea program that ties a line source to the
// virtualized log window.
package app

import (
	"context"
	"sync"

	"charm.land/bubbles/v2/help"
	tea "charm.land/bubbletea/v2"
	zone "github.com/lrstanley/bubblezone"

	"github.com/andyrewlee/scrollwin/internal/config"
	"github.com/andyrewlee/scrollwin/internal/history"
	"github.com/andyrewlee/scrollwin/internal/keymap"
	"github.com/andyrewlee/scrollwin/internal/logging"
	"github.com/andyrewlee/scrollwin/internal/perf"
	"github.com/andyrewlee/scrollwin/internal/scroller"
	"github.com/andyrewlee/scrollwin/internal/source"
	"github.com/andyrewlee/scrollwin/internal/ui/common"
	"github.com/andyrewlee/scrollwin/internal/ui/logview"
)

const (
	wheelRows    = 3
	followZoneID = "follow"
)

// resizer is implemented by sources that own a terminal.
type resizer interface {
	SetSize(rows, cols uint16) error
}

// App is the root model.
type App struct {
	cfg    *config.Config
	keymap keymap.KeyMap
	styles common.Styles
	help   help.Model
	toast  *common.ToastModel
	zone   *zone.Manager

	history  *history.History
	scroller *scroller.Scroller
	surface  *logview.Surface
	frames   *logview.FrameScheduler

	source  source.Source
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
	stopErr error

	width    int
	height   int
	ready    bool
	quitting bool
	err      error

	sourceMsgs     chan tea.Msg
	externalSender func(tea.Msg)
	externalOnce   sync.Once
	shutdownOnce   sync.Once
}

// New creates the app for src. The viewport is attached once the terminal
// size is known; lines read before that are held by the scroller.
func New(cfg *config.Config, src source.Source) *App {
	opts := scroller.DefaultOptions()
	opts.VisibleCount = cfg.Window.VisibleCount
	opts.ExpandDistance = cfg.Window.ExpandDistance
	opts.StickyThreshold = cfg.Window.StickyThreshold
	opts.Sticky = cfg.Window.Follow

	frames := logview.NewFrameScheduler(cfg.FrameInterval)
	surface := logview.NewSurface(cfg.Window.RowHeight)
	s := scroller.New(nil, frames, opts)
	surface.OnScroll(s.OnScroll)

	h := help.New()
	h.ShowAll = true

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		cfg:        cfg,
		keymap:     keymap.New(cfg.KeyMap),
		styles:     common.DefaultStyles(),
		help:       h,
		toast:      common.NewToastModel(),
		zone:       zone.New(),
		history:    history.New(cfg.History.MaxLines),
		scroller:   s,
		surface:    surface,
		frames:     frames,
		source:     src,
		ctx:        ctx,
		cancel:     cancel,
		sourceMsgs: make(chan tea.Msg, 1024),
	}
}

// Init starts the source.
func (a *App) Init() tea.Cmd {
	if a.source == nil {
		return nil
	}
	logging.Info("starting source %q", a.source.Name())
	if err := a.source.Start(a.ctx, a.sourceMsgs); err != nil {
		a.stopped = true
		a.stopErr = err
		return common.ReportError("start "+a.source.Name(), err)
	}
	return nil
}

// Shutdown releases resources that may outlive the Bubble Tea program.
func (a *App) Shutdown() {
	a.shutdownOnce.Do(func() {
		a.cancel()
		if a.source != nil {
			if err := a.source.Close(); err != nil {
				logging.Warn("closing source: %v", err)
			}
		}
		perf.Flush("shutdown")
	})
}

// Scroller exposes the line window for diagnostics.
func (a *App) Scroller() *scroller.Scroller { return a.scroller }
