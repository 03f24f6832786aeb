// Package logview is the terminal rendering surface for the line window: a
// scroll container of fixed-height rows plus the frame scheduler that
// coalesces redraws onto bubbletea ticks.
package logview

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/andyrewlee/scrollwin/internal/scroller"
)

// DefaultRowHeight is the number of geometry units reported per row.
const DefaultRowHeight = 16

var _ scroller.Viewport = (*Surface)(nil)

// Surface holds materialized content as rows and a scroll offset, and
// renders the rows currently in view.
//
// Geometry is reported in units of rowHeight per row so that thresholds
// expressed in units keep sub-row precision. The offset is clamped to
// [0, extent-client] like a browser scroll container.
type Surface struct {
	rows      []string
	offset    int
	width     int
	height    int
	rowHeight int
	listeners []func()
}

// NewSurface creates an empty surface.
func NewSurface(rowHeight int) *Surface {
	if rowHeight <= 0 {
		rowHeight = DefaultRowHeight
	}
	return &Surface{rowHeight: rowHeight}
}

// SetSize sets the pane size in cells. A surface scrolled to the bottom stays
// there across resizes.
func (s *Surface) SetSize(width, height int) {
	atBottom := s.AtBottom()
	s.width = max(0, width)
	s.height = max(0, height)
	if atBottom {
		s.offset = s.maxOffset()
		return
	}
	s.SetScrollOffset(s.offset)
}

// Size returns the pane size in cells.
func (s *Surface) Size() (width, height int) { return s.width, s.height }

// SetContent replaces the rows. Newlines separate rows; empty text has none.
func (s *Surface) SetContent(text string) {
	if text == "" {
		s.rows = nil
	} else {
		s.rows = strings.Split(text, "\n")
	}
	s.SetScrollOffset(s.offset)
}

// ScrollOffset returns the offset of the top of the view, in units.
func (s *Surface) ScrollOffset() int { return s.offset }

// SetScrollOffset moves the view without notifying scroll subscribers.
func (s *Surface) SetScrollOffset(n int) {
	s.offset = max(0, min(n, s.maxOffset()))
}

// ScrollExtent returns the height of all rows, in units.
func (s *Surface) ScrollExtent() int { return len(s.rows) * s.rowHeight }

// ClientHeight returns the height of the pane, in units.
func (s *Surface) ClientHeight() int { return s.height * s.rowHeight }

// OnScroll subscribes fn to user-driven scroll changes.
func (s *Surface) OnScroll(fn func()) {
	if fn != nil {
		s.listeners = append(s.listeners, fn)
	}
}

// ScrollRows scrolls by delta rows (negative is up) and notifies subscribers
// if the offset changed. It reports whether the offset changed.
func (s *Surface) ScrollRows(delta int) bool {
	return s.scrollTo(s.offset + delta*s.rowHeight)
}

// ScrollHalfPages scrolls by delta half pages.
func (s *Surface) ScrollHalfPages(delta int) bool {
	return s.ScrollRows(delta * max(1, s.height/2))
}

// ScrollPages scrolls by delta pages, keeping one row of overlap.
func (s *Surface) ScrollPages(delta int) bool {
	return s.ScrollRows(delta * max(1, s.height-1))
}

// ScrollToTop scrolls to the first row.
func (s *Surface) ScrollToTop() bool { return s.scrollTo(0) }

// ScrollToBottom scrolls to the last row.
func (s *Surface) ScrollToBottom() bool { return s.scrollTo(s.maxOffset()) }

func (s *Surface) scrollTo(n int) bool {
	before := s.offset
	s.SetScrollOffset(n)
	if s.offset == before {
		return false
	}
	for _, fn := range s.listeners {
		fn()
	}
	return true
}

// AtBottom reports whether the last row is in view.
func (s *Surface) AtBottom() bool { return s.offset >= s.maxOffset() }

// TopRow returns the index of the first row in view.
func (s *Surface) TopRow() int { return s.offset / s.rowHeight }

// VisibleRows returns the index of the first row in view and the number of
// content rows shown.
func (s *Surface) VisibleRows() (first, count int) {
	first = s.TopRow()
	count = max(0, min(s.height, len(s.rows)-first))
	return first, count
}

// RowCount returns the number of materialized rows.
func (s *Surface) RowCount() int { return len(s.rows) }

// View renders exactly height rows, each cut and padded to width cells.
func (s *Surface) View() string {
	if s.height <= 0 || s.width <= 0 {
		return ""
	}
	top := s.TopRow()
	out := make([]string, s.height)
	for i := range out {
		row := ""
		if idx := top + i; idx < len(s.rows) {
			row = s.rows[idx]
		}
		out[i] = fitRow(row, s.width)
	}
	return strings.Join(out, "\n")
}

func fitRow(row string, width int) string {
	if ansi.StringWidth(row) > width {
		row = ansi.Truncate(row, width, "")
	}
	return runewidth.FillRight(row, width)
}

func (s *Surface) maxOffset() int {
	return max(0, s.ScrollExtent()-s.ClientHeight())
}
