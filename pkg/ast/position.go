package ast

import (
	"fmt"

	"github.com/sylva-dev/sylva/pkg/safeconv"
)

// Point is a single location in source text. Line and Column are 1-based,
// Offset is a 0-based byte offset.
type Point struct {
	Line   uint `json:"line"`
	Column uint `json:"column"`
	Offset uint `json:"offset"`
}

// IsBefore reports whether p comes strictly before other in the source text.
func (p Point) IsBefore(other Point) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}

	return p.Column < other.Column
}

// IsAfter reports whether p comes strictly after other in the source text.
func (p Point) IsAfter(other Point) bool {
	return other.IsBefore(p)
}

func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Position is a span of source text between two points, end exclusive.
type Position struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// NewPosition builds a Position from start and end line/column/offset values.
func NewPosition(startLine, startCol, startOffset, endLine, endCol, endOffset uint) *Position {
	return &Position{
		Start: Point{Line: startLine, Column: startCol, Offset: startOffset},
		End:   Point{Line: endLine, Column: endCol, Offset: endOffset},
	}
}

// ContainsPoint reports whether the point falls inside the span (end inclusive).
func (pos *Position) ContainsPoint(p Point) bool {
	if pos == nil {
		return false
	}

	return !p.IsBefore(pos.Start) && !p.IsAfter(pos.End)
}

// Contains reports whether other lies entirely within pos.
func (pos *Position) Contains(other *Position) bool {
	if pos == nil || other == nil {
		return false
	}

	return pos.ContainsPoint(other.Start) && pos.ContainsPoint(other.End)
}

// Overlaps reports whether the two spans share at least one point.
func (pos *Position) Overlaps(other *Position) bool {
	if pos == nil || other == nil {
		return false
	}

	return pos.ContainsPoint(other.Start) || pos.ContainsPoint(other.End) ||
		other.ContainsPoint(pos.Start) || other.ContainsPoint(pos.End)
}

// Text extracts the spanned text from the original source bytes using the
// byte offsets. Returns "" when the offsets fall outside the source.
func (pos *Position) Text(source []byte) string {
	if pos == nil {
		return ""
	}

	start := pos.Start.Offset
	end := pos.End.Offset

	if start > end || safeconv.MustUintToInt(end) > len(source) {
		return ""
	}

	return string(source[start:end])
}

func (pos *Position) String() string {
	if pos == nil {
		return "<no position>"
	}

	return fmt.Sprintf("%s-%s", pos.Start, pos.End)
}

// SpanningPositions returns the smallest position covering all the given
// positions, ignoring nils. Returns nil when none carry a position.
func SpanningPositions(positions ...*Position) *Position {
	var span *Position

	for _, pos := range positions {
		if pos == nil {
			continue
		}

		if span == nil {
			copied := *pos
			span = &copied

			continue
		}

		if pos.Start.IsBefore(span.Start) {
			span.Start = pos.Start
		}

		if pos.End.IsAfter(span.End) {
			span.End = pos.End
		}
	}

	return span
}
