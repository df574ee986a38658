// Package outline assembles the numbered document tree for a report: prepend
// editorial blocks, grouped exam objects with their render sections and
// figures, and tail sections. Numbering is produced by a stateful hierarchical
// enumerator shared with the PDF renderer so figure labels stay continuous
// across the whole document.
package outline

import (
	"fmt"
	"strconv"
)

// Enumerator tracks three title levels plus a continuous figure caption
// counter. Zero value counters mean "not started".
type Enumerator struct {
	t1, t2, t3 int
	caption    int
	strict     bool
}

// NewEnumerator returns a non-strict enumerator: enumerating a deep level
// before its parent auto-initialises the parent to 1.
func NewEnumerator() *Enumerator { return &Enumerator{} }

// NewStrictEnumerator returns an enumerator that rejects deep levels whose
// parent level was never enumerated.
func NewStrictEnumerator() *Enumerator { return &Enumerator{strict: true} }

// Enumerate advances the counter for the given level and returns its label.
// Level 1..3 produce "t1", "t1.t2", "t1.t2.t3". Level 0 produces the next
// continuous "Figura N" caption.
func (e *Enumerator) Enumerate(level int) (string, error) {
	switch level {
	case 0:
		e.caption++
		return "Figura " + strconv.Itoa(e.caption), nil
	case 1:
		e.t1++
		e.t2, e.t3 = 0, 0
		return strconv.Itoa(e.t1), nil
	case 2:
		if e.t1 == 0 {
			if e.strict {
				return "", fmt.Errorf("enumerate level 2 before level 1")
			}
			e.t1 = 1
		}
		e.t2++
		e.t3 = 0
		return strconv.Itoa(e.t1) + "." + strconv.Itoa(e.t2), nil
	case 3:
		if e.t1 == 0 {
			if e.strict {
				return "", fmt.Errorf("enumerate level 3 before level 1")
			}
			e.t1 = 1
		}
		if e.t2 == 0 {
			if e.strict {
				return "", fmt.Errorf("enumerate level 3 before level 2")
			}
			e.t2 = 1
		}
		e.t3++
		return strconv.Itoa(e.t1) + "." + strconv.Itoa(e.t2) + "." + strconv.Itoa(e.t3), nil
	default:
		return "", fmt.Errorf("invalid enumeration level %d", level)
	}
}

// NextTop returns the top-level number the next Enumerate(1) call would yield.
func (e *Enumerator) NextTop() int { return e.t1 + 1 }

// FigureCount returns how many figure captions have been consumed.
func (e *Enumerator) FigureCount() int { return e.caption }

// ResetTitles zeroes the three title levels, keeping the figure counter.
func (e *Enumerator) ResetTitles() { e.t1, e.t2, e.t3 = 0, 0, 0 }

// ResetFigures zeroes the figure caption counter, keeping title levels.
func (e *Enumerator) ResetFigures() { e.caption = 0 }

// ResetAll zeroes every counter.
func (e *Enumerator) ResetAll() {
	e.ResetTitles()
	e.ResetFigures()
}
