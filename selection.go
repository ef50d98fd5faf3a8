package richer

import "golang.org/x/net/html"

// Point is a boundary point in the tree. For text nodes Offset is a
// byte offset into Data; for elements it is a child index.
type Point struct {
	Node   *html.Node
	Offset int
}

// Range is a pair of boundary points in document order.
type Range struct {
	Start Point
	End   Point
}

// Collapsed reports whether the range start and end are the same point.
func (r Range) Collapsed() bool {
	return r.Start == r.End
}

// Selection is the user's selection inside an editable region. It holds
// at most one range. Every tree mutation made by this package adjusts
// the points of the Selection it is given, the way a browser keeps live
// ranges in step with the DOM.
//
// A Selection is a handle owned by the caller: pass it to every call
// that may disturb it. A nil *Selection is valid and means "no
// selection".
type Selection struct {
	rng *Range
}

// NewSelection returns an empty Selection.
func NewSelection() *Selection {
	return &Selection{}
}

// Caret returns a Selection collapsed at (node, offset).
func Caret(node *html.Node, offset int) *Selection {
	s := NewSelection()
	s.Collapse(node, offset)
	return s
}

// RangeCount returns 0 or 1.
func (s *Selection) RangeCount() int {
	if s == nil || s.rng == nil {
		return 0
	}
	return 1
}

// Range returns a copy of the current range and whether one is set.
func (s *Selection) Range() (Range, bool) {
	if s == nil || s.rng == nil {
		return Range{}, false
	}
	return *s.rng, true
}

// SetRange replaces the current range.
func (s *Selection) SetRange(r Range) {
	if s == nil {
		return
	}
	s.rng = &r
}

// Collapse sets a caret at (node, offset). A nil node clears the
// selection.
func (s *Selection) Collapse(node *html.Node, offset int) {
	if node == nil {
		s.RemoveAllRanges()
		return
	}
	s.SetRange(Range{Start: Point{node, offset}, End: Point{node, offset}})
}

// RemoveAllRanges clears the selection.
func (s *Selection) RemoveAllRanges() {
	if s == nil {
		return
	}
	s.rng = nil
}

// IsCollapsed reports whether the selection is a caret. An empty
// selection is collapsed.
func (s *Selection) IsCollapsed() bool {
	r, ok := s.Range()
	return !ok || r.Collapsed()
}

// Valid reports whether both points of the selection resolve to
// positions attached under region.
func (s *Selection) Valid(region *html.Node) bool {
	r, ok := s.Range()
	if !ok {
		return false
	}
	return pointValid(r.Start, region) && pointValid(r.End, region)
}

func pointValid(p Point, region *html.Node) bool {
	if p.Node != region && !attached(p.Node, region) {
		return false
	}
	if p.Offset < 0 {
		return false
	}
	if p.Node.Type == html.TextNode {
		return p.Offset <= len(p.Node.Data)
	}
	return p.Offset <= childCount(p.Node)
}

// each calls fn with a pointer to every live point of the selection.
func (s *Selection) each(fn func(p *Point)) {
	if s == nil || s.rng == nil {
		return
	}
	fn(&s.rng.Start)
	fn(&s.rng.End)
}
