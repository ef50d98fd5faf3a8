package richer

import (
	"fmt"

	"github.com/antchfx/htmlquery"
	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// Marker elements pin the two ends of a selection while the tree
// around them is rebuilt. They are ordinary nodes, so wrapping,
// unwrapping and replacing carry them along.
const (
	MarkerStartClass = "richer__selection-start"
	MarkerEndClass   = "richer__selection-end"
	markerAttr       = "data-richer-marker"
)

// Bookmark identifies the pair of markers placed by one call to Save.
// The zero Bookmark means there was no selection to save.
type Bookmark struct {
	id string
}

// IsZero reports whether b refers to no markers.
func (b Bookmark) IsZero() bool {
	return b.id == ""
}

// Save replaces the current range of sel with a pair of marker
// elements and clears sel. It returns the zero Bookmark when sel has no
// range or its points cannot hold a marker.
func Save(sel *Selection) Bookmark {
	r, ok := sel.Range()
	if !ok || r.Start.Node == nil || r.End.Node == nil {
		return Bookmark{}
	}
	sel.RemoveAllRanges()

	bm := Bookmark{id: uuid.NewString()}
	start := newMarker(MarkerStartClass, bm.id)
	end := newMarker(MarkerEndClass, bm.id)

	// End first: inserting at the end never shifts the start point.
	if !insertAt(r.End, end) {
		return Bookmark{}
	}
	if r.Collapsed() {
		end.Parent.InsertBefore(start, end)
		return bm
	}
	if !insertAt(r.Start, start) {
		end.Parent.RemoveChild(end)
		return Bookmark{}
	}
	return bm
}

// Restore turns the markers of bm found under container back into a
// range on sel and removes them. It returns false, leaving sel empty,
// when either marker is gone; any marker still present is removed.
func Restore(container *html.Node, sel *Selection, bm Bookmark) bool {
	if bm.IsZero() || container == nil {
		return false
	}
	start, end := findMarkers(container, bm)
	if start == nil || end == nil {
		for _, m := range []*html.Node{start, end} {
			if m != nil {
				dropMarker(nil, m)
			}
		}
		return false
	}

	collapsed := start.NextSibling == end
	sp := dropMarker(nil, start)
	sel.SetRange(Range{Start: sp, End: sp})
	ep := dropMarker(sel, end)
	r, _ := sel.Range()
	r.End = ep
	if collapsed {
		r.Start = ep
	}
	sel.SetRange(r)
	return true
}

// Guard saves sel, runs fn and restores sel on every exit path,
// including when fn fails or panics. Content changes made by fn are
// never rolled back.
func Guard(container *html.Node, sel *Selection, fn func() error) error {
	bm := Save(sel)
	defer Restore(container, sel, bm)
	return fn()
}

// IsMarker reports whether n is a selection marker element.
func IsMarker(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode || n.Data != "span" {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == markerAttr {
			return true
		}
	}
	return false
}

func newMarker(class, id string) *html.Node {
	m := newElement("span")
	SetAttr(m, "class", class)
	SetAttr(m, "contenteditable", "false")
	SetAttr(m, markerAttr, id)
	return m
}

// insertAt places n at boundary point p, splitting a text node when p
// falls inside it.
func insertAt(p Point, n *html.Node) bool {
	if p.Node.Type != html.TextNode {
		p.Node.InsertBefore(n, childAt(p.Node, p.Offset))
		return true
	}
	t := p.Node
	if t.Parent == nil {
		return false
	}
	switch off := p.Offset; {
	case off <= 0:
		t.Parent.InsertBefore(n, t)
	case off >= len(t.Data):
		t.Parent.InsertBefore(n, t.NextSibling)
	default:
		tail := splitText(nil, t, off)
		t.Parent.InsertBefore(n, tail)
	}
	return true
}

func findMarkers(container *html.Node, bm Bookmark) (start, end *html.Node) {
	nodes, err := htmlquery.QueryAll(container, fmt.Sprintf("//span[@%s='%s']", markerAttr, bm.id))
	if err != nil {
		return nil, nil
	}
	for _, n := range nodes {
		switch {
		case HasClass(n, MarkerStartClass):
			start = n
		case HasClass(n, MarkerEndClass):
			end = n
		}
	}
	return start, end
}

// dropMarker removes m and returns the boundary point it occupied,
// re-joining a text node that Save split around it.
func dropMarker(sel *Selection, m *html.Node) Point {
	parent := m.Parent
	prev, next := m.PrevSibling, m.NextSibling
	i := index(m)
	remove(sel, m)

	switch {
	case isText(prev) && isText(next):
		off := len(prev.Data)
		mergeText(sel, prev, next)
		return Point{prev, off}
	case isText(prev):
		return Point{prev, len(prev.Data)}
	case isText(next):
		return Point{next, 0}
	}
	return Point{parent, i}
}

func isText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}
