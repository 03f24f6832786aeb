package scroller

import (
	"strings"

	"github.com/andyrewlee/scrollwin/internal/perf"
)

// blankLine stands in for empty lines so the surface never collapses a
// trailing empty row. U+2009 keeps the visual width close to zero.
const blankLine = "\u2009"

const (
	DefaultVisibleCount    = 50
	DefaultExpandDistance  = 200
	DefaultStickyThreshold = 10
	DefaultJumpSentinel    = 1 << 30
)

// FrameHandle identifies a scheduled redraw. Zero means none is pending.
type FrameHandle uint64

// Viewport is the rendering surface the window is materialized into.
// Geometry is in opaque units; only differences and comparisons matter.
type Viewport interface {
	SetContent(text string)
	ScrollOffset() int
	SetScrollOffset(n int)
	ScrollExtent() int
	ClientHeight() int
}

// Scheduler coalesces redraws onto the next frame.
// Returned handles must be non-zero.
type Scheduler interface {
	ScheduleOnNextFrame(fn func()) FrameHandle
}

// Options configures a Scroller at construction time.
type Options struct {
	Lines      []string
	LineOffset int

	// VisibleCount is the steady state window size. The window may grow to
	// twice this while the viewer scrolls.
	VisibleCount int

	StartPosition int
	EndPosition   int

	// ExpandDistance is how close (in viewport units) the viewer must get to
	// a window edge before that edge grows.
	ExpandDistance int

	// StickyThreshold is how close to the true bottom counts as "at the tail".
	StickyThreshold int

	// JumpSentinel is the scroll offset written to force the viewport to its
	// maximum; the viewport is expected to clamp it.
	JumpSentinel int

	Sticky bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		VisibleCount:    DefaultVisibleCount,
		ExpandDistance:  DefaultExpandDistance,
		StickyThreshold: DefaultStickyThreshold,
		JumpSentinel:    DefaultJumpSentinel,
		Sticky:          true,
	}
}

// Scroller keeps a bounded window of an unbounded line sequence materialized
// in a Viewport, anchoring the scroll position whenever the window changes.
//
// Scroller is not safe for concurrent use; every method must be called from
// the goroutine that owns the viewport.
//
// Callers must keep lineOffset non-negative and non-decreasing between Reset
// calls, and StartPosition <= EndPosition. Behavior is undefined otherwise.
type Scroller struct {
	lines      []string
	lineOffset int

	visibleCount    int
	startPosition   int
	endPosition     int
	expandDistance  int
	stickyThreshold int
	jumpSentinel    int

	sticky       bool
	jumpToBottom bool
	dirty        bool

	viewport       Viewport
	scheduler      Scheduler
	animateRequest FrameHandle
}

// New creates a scroller. vp may be nil until the surface exists; see
// SetViewport. A nil scheduler renders synchronously instead of on a frame.
func New(vp Viewport, sched Scheduler, opts Options) *Scroller {
	defaults := DefaultOptions()
	if opts.VisibleCount <= 0 {
		opts.VisibleCount = defaults.VisibleCount
	}
	if opts.ExpandDistance <= 0 {
		opts.ExpandDistance = defaults.ExpandDistance
	}
	if opts.StickyThreshold <= 0 {
		opts.StickyThreshold = defaults.StickyThreshold
	}
	if opts.JumpSentinel <= 0 {
		opts.JumpSentinel = defaults.JumpSentinel
	}
	return &Scroller{
		lines:           opts.Lines,
		lineOffset:      opts.LineOffset,
		visibleCount:    opts.VisibleCount,
		startPosition:   opts.StartPosition,
		endPosition:     opts.EndPosition,
		expandDistance:  opts.ExpandDistance,
		stickyThreshold: opts.StickyThreshold,
		jumpSentinel:    opts.JumpSentinel,
		sticky:          opts.Sticky,
		jumpToBottom:    opts.Sticky,
		dirty:           true,
		viewport:        vp,
		scheduler:       sched,
	}
}

// SetViewport attaches (or replaces) the rendering surface.
func (s *Scroller) SetViewport(vp Viewport) {
	s.viewport = vp
	s.dirty = true
}

// SetVisibleCount changes the steady state window size. A following window
// takes the new size on the next redraw and jumps back to the bottom; a
// detached one keeps its range until it next expands.
func (s *Scroller) SetVisibleCount(n int) {
	if n <= 0 || n == s.visibleCount {
		return
	}
	s.visibleCount = n
	if s.sticky {
		s.jumpToBottom = true
	}
	s.dirty = true
}

// LineCount returns the absolute number of lines seen so far.
func (s *Scroller) LineCount() int {
	return len(s.lines) + s.lineOffset
}

// SetLines replaces the retained lines and the count of lines discarded
// before them.
func (s *Scroller) SetLines(lines []string, offset int) {
	s.lines = lines
	s.lineOffset = offset
	if s.sticky {
		s.followTail()
		if s.endPosition <= s.visibleCount*2 {
			// Early on the window can hold everything; keep following.
			s.jumpToBottom = true
		}
	} else if s.lineOffset > s.startPosition {
		// The window's head was trimmed away: move down by the same amount.
		diff := s.lineOffset - s.startPosition
		s.startPosition += diff
		s.endPosition += diff
		if total := s.LineCount(); s.endPosition > total {
			s.endPosition = total
		}
	}
	s.dirty = true
}

// Reset discards window history and resumes following the tail.
func (s *Scroller) Reset() {
	s.endPosition = max(0, s.LineCount())
	s.startPosition = max(0, s.endPosition-s.visibleCount)
	s.lineOffset = 0
	s.jumpToBottom = true
	s.sticky = true
	s.dirty = true
}

// Follow re-enters sticky mode and jumps to the tail on the next redraw.
func (s *Scroller) Follow() {
	s.jumpToBottom = true
	s.sticky = true
	s.dirty = true
	if s.viewport != nil {
		s.schedule()
	}
}

// RequestRefresh schedules a redraw if a viewport is attached.
func (s *Scroller) RequestRefresh() {
	if s.viewport == nil {
		return
	}
	s.schedule()
}

// Refresh materializes the window into the viewport if a redraw is owed.
func (s *Scroller) Refresh() {
	s.animateRequest = 0
	if !s.dirty || s.viewport == nil {
		return
	}
	defer perf.Time("scroller_render")()

	if s.sticky {
		s.followTail()
	}
	s.viewport.SetContent(s.Content())
	if s.jumpToBottom {
		s.viewport.SetScrollOffset(s.jumpSentinel)
		s.jumpToBottom = false
	}
	s.dirty = false
}

// OnScroll classifies the viewport's current geometry and grows the window,
// leaves follow mode, or re-enters it.
func (s *Scroller) OnScroll() {
	if s.jumpToBottom || s.viewport == nil {
		// A jump is about to override the scroll position.
		return
	}

	height := s.viewport.ClientHeight()
	extent := s.viewport.ScrollExtent()
	offset := s.viewport.ScrollOffset()
	nearTop := offset < s.expandDistance
	nearBottom := offset+height > extent-s.expandDistance
	nearSticky := offset+height > extent-s.stickyThreshold

	if s.sticky {
		if !nearSticky {
			s.sticky = false
		}
	} else if nearTop && s.startPosition > s.lineOffset {
		s.expandTop()
	} else if nearBottom {
		if s.endPosition < s.LineCount()-2 {
			s.expandBottom()
		} else if nearSticky {
			s.jumpToBottom = true
			s.sticky = true
			s.dirty = true
		}
	}

	if s.dirty {
		s.schedule()
	}
}

// expandTop reveals up to one more page of older lines, keeping the line at
// the top of the viewport in place. Trimming the bottom edge back to the cap
// is left to the next frame.
func (s *Scroller) expandTop() {
	s.startPosition = max(s.lineOffset, s.startPosition-s.visibleCount)
	if s.viewport == nil {
		return
	}
	defer perf.Time("scroller_expand_top")()

	s.sticky = false
	extent := s.viewport.ScrollExtent()
	offset := s.viewport.ScrollOffset()

	s.viewport.SetContent(s.Content())
	s.viewport.SetScrollOffset(offset + s.viewport.ScrollExtent() - extent)

	oldEnd := s.endPosition
	s.endPosition = min(s.endPosition, s.startPosition+s.visibleCount*2)

	s.dirty = oldEnd != s.endPosition
	if s.dirty {
		s.schedule()
	}
}

// expandBottom reveals up to one more page of newer lines and trims the top
// edge back to the cap in the same step.
func (s *Scroller) expandBottom() {
	s.endPosition = min(s.LineCount(), s.endPosition+s.visibleCount)
	if s.viewport == nil {
		return
	}
	defer perf.Time("scroller_expand_bottom")()

	s.viewport.SetContent(s.Content())
	extent := s.viewport.ScrollExtent()
	offset := s.viewport.ScrollOffset()

	limit := s.visibleCount * 2
	s.startPosition = max(s.lineOffset, min(s.LineCount()-limit, s.endPosition-limit))
	s.viewport.SetContent(s.Content())
	s.viewport.SetScrollOffset(offset - (extent - s.viewport.ScrollExtent()))

	s.dirty = false
}

func (s *Scroller) followTail() {
	s.endPosition = s.LineCount()
	s.startPosition = max(s.lineOffset, s.endPosition-s.visibleCount)
}

func (s *Scroller) schedule() {
	if s.animateRequest != 0 {
		return
	}
	if s.scheduler == nil {
		s.Refresh()
		return
	}
	s.animateRequest = s.scheduler.ScheduleOnNextFrame(s.Refresh)
}

// Content returns the window's lines joined by newlines, with empty lines
// replaced by a thin space.
func (s *Scroller) Content() string {
	from := clamp(s.startPosition-s.lineOffset, 0, len(s.lines))
	to := clamp(s.endPosition-s.lineOffset, from, len(s.lines))

	var b strings.Builder
	for i, line := range s.lines[from:to] {
		if i > 0 {
			b.WriteByte('\n')
		}
		if len(line) == 0 {
			line = blankLine
		}
		b.WriteString(line)
	}
	return b.String()
}

// Lines returns the raw lines of the window without blank substitution.
func (s *Scroller) Lines() []string {
	from := clamp(s.startPosition-s.lineOffset, 0, len(s.lines))
	to := clamp(s.endPosition-s.lineOffset, from, len(s.lines))
	return s.lines[from:to]
}

// Window returns the absolute half-open range currently materialized.
func (s *Scroller) Window() (start, end int) {
	return s.startPosition, s.endPosition
}

// LineOffset returns how many lines were discarded before the retained ones.
func (s *Scroller) LineOffset() int { return s.lineOffset }

// VisibleCount returns the steady state window size.
func (s *Scroller) VisibleCount() int { return s.visibleCount }

// Sticky reports whether the window follows the tail.
func (s *Scroller) Sticky() bool { return s.sticky }

// JumpPending reports whether the next redraw jumps to the bottom.
func (s *Scroller) JumpPending() bool { return s.jumpToBottom }

// Dirty reports whether a redraw is owed.
func (s *Scroller) Dirty() bool { return s.dirty }

// Pending reports whether a redraw is scheduled.
func (s *Scroller) Pending() bool { return s.animateRequest != 0 }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
