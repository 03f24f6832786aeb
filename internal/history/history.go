// Package history turns a raw output stream into the bounded, offset-tracked
// line slice that the scroller windows over.
package history

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/andyrewlee/scrollwin/internal/perf"
)

const (
	tabWidth = 8

	// maxLineBytes forces a break in pathological output with no newlines.
	maxLineBytes = 64 * 1024
)

// History retains at most maxLines lines; older ones are discarded and
// counted in the offset. The zero value is not usable; call New.
//
// Snapshots share storage with the history but are never mutated by later
// writes, so they can be handed to the UI without copying.
type History struct {
	maxLines int
	lines    []string
	offset   int
	partial  []byte

	// broken is set when a forced break consumed the whole partial line; the
	// newline that would have ended it must not start an empty one.
	broken bool
}

// New creates a history that keeps at most maxLines lines (unbounded if <= 0).
func New(maxLines int) *History {
	return &History{maxLines: maxLines}
}

// Write appends raw output. An unterminated final line is held back until a
// later write completes it or Flush is called.
func (h *History) Write(p []byte) (int, error) {
	n := len(p)
	if h.broken && n > 0 {
		h.broken = false
		if p[0] == '\n' {
			p = p[1:]
		} else if len(p) > 1 && p[0] == '\r' && p[1] == '\n' {
			p = p[2:]
		}
	}
	added := 0
	for len(p) > 0 {
		idx := bytes.IndexByte(p, '\n')
		if idx < 0 {
			h.partial = append(h.partial, p...)
			for len(h.partial) >= maxLineBytes {
				h.appendLine(h.partial[:maxLineBytes])
				h.partial = h.partial[maxLineBytes:]
				added++
				h.broken = len(h.partial) == 0
			}
			break
		}
		if len(h.partial) > 0 {
			h.partial = append(h.partial, p[:idx]...)
			h.appendLine(h.partial)
			h.partial = h.partial[:0]
		} else {
			h.appendLine(p[:idx])
		}
		added++
		p = p[idx+1:]
	}
	if added > 0 {
		h.trim()
		perf.Count("history_lines", int64(added))
	}
	return n, nil
}

// Flush commits a pending unterminated line, if any.
func (h *History) Flush() {
	if len(h.partial) == 0 {
		return
	}
	h.appendLine(h.partial)
	h.partial = nil
	h.broken = false
	h.trim()
}

// Snapshot returns the retained lines and how many were discarded before them.
func (h *History) Snapshot() ([]string, int) {
	return h.lines[:len(h.lines):len(h.lines)], h.offset
}

// Clear discards all lines and resets the offset.
func (h *History) Clear() {
	h.lines = nil
	h.offset = 0
	h.partial = nil
	h.broken = false
}

// Total returns the absolute number of lines written since the last Clear.
func (h *History) Total() int { return len(h.lines) + h.offset }

// Len returns the number of retained lines.
func (h *History) Len() int { return len(h.lines) }

// Offset returns the number of discarded lines.
func (h *History) Offset() int { return h.offset }

// MaxLines returns the retention limit.
func (h *History) MaxLines() int { return h.maxLines }

func (h *History) appendLine(raw []byte) {
	h.lines = append(h.lines, cleanLine(raw))
}

func (h *History) trim() {
	if h.maxLines <= 0 || len(h.lines) <= h.maxLines {
		return
	}
	drop := len(h.lines) - h.maxLines
	h.offset += drop
	h.lines = h.lines[drop:]
	// Reallocate once the dropped prefix outweighs what is kept, so the
	// backing array does not grow without bound. Old snapshots keep theirs.
	if cap(h.lines) > 2*h.maxLines+1024 {
		compact := make([]string, len(h.lines), h.maxLines+h.maxLines/2)
		copy(compact, h.lines)
		h.lines = compact
	}
}

// cleanLine reduces one raw line to plain printable text: carriage-return
// overwrites keep only the final segment, escape sequences are stripped and
// tabs are expanded.
func cleanLine(raw []byte) string {
	raw = bytes.TrimSuffix(raw, []byte{'\r'})
	if idx := bytes.LastIndexByte(raw, '\r'); idx >= 0 {
		raw = raw[idx+1:]
	}
	line := strings.ToValidUTF8(string(raw), "\uFFFD")
	if strings.IndexByte(line, '\x1b') >= 0 {
		line = ansi.Strip(line)
	}
	if strings.IndexByte(line, '\t') >= 0 {
		line = expandTabs(line)
	}
	return line
}

func expandTabs(line string) string {
	var b strings.Builder
	col := 0
	for _, r := range line {
		if r == '\t' {
			pad := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", pad))
			col += pad
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}
