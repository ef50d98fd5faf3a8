package richer

import (
	"fmt"

	"golang.org/x/net/html"
)

// Wrap makes a new tag element the parent of node, in node's place.
// Any text split off node while its selection is pinned goes into the
// wrapper with it. The selection is saved before and restored after.
func Wrap(region *html.Node, sel *Selection, node *html.Node, tag string) (*html.Node, error) {
	if !attached(node, region) {
		return nil, fmt.Errorf("wrap in <%s>: %w", tag, ErrDetachedNode)
	}
	next := node.NextSibling
	var w *html.Node
	err := Guard(region, sel, func() error {
		w = wrapRange(sel, node, next, tag)
		return nil
	})
	return w, err
}

// Unwrap replaces node with its children, in order. A node without
// children is simply removed.
func Unwrap(sel *Selection, node *html.Node) error {
	if node == nil || node.Parent == nil {
		return fmt.Errorf("unwrap: %w", ErrDetachedNode)
	}
	unwrap(sel, node)
	return nil
}

// ReplaceTag swaps the element node for a new tag element holding the
// same content, keeping the selection. Wrapping and unwrapping happen under
// one guard so no intermediate restore takes place.
func ReplaceTag(region *html.Node, sel *Selection, node *html.Node, tag string) (*html.Node, error) {
	if !attached(node, region) {
		return nil, fmt.Errorf("replace with <%s>: %w", tag, ErrDetachedNode)
	}
	if node.Type != html.ElementNode {
		return nil, fmt.Errorf("replace with <%s>: %w", tag, ErrNotElement)
	}
	next := node.NextSibling
	var w *html.Node
	err := Guard(region, sel, func() error {
		w = wrapRange(sel, node, next, tag)
		unwrap(sel, node)
		return nil
	})
	return w, err
}

// InsertBefore creates an empty tag element just before ref.
func InsertBefore(sel *Selection, ref *html.Node, tag string) (*html.Node, error) {
	if ref == nil || ref.Parent == nil {
		return nil, fmt.Errorf("insert <%s>: %w", tag, ErrDetachedNode)
	}
	n := newElement(tag)
	insertBefore(sel, ref.Parent, n, ref)
	return n, nil
}

// NearestBlock returns the closest block element around the boundary
// point (node, offset) using the default block vocabulary. See
// Editor.NearestBlock.
func NearestBlock(node *html.Node, offset int, region *html.Node) *html.Node {
	return nearestBlock(node, offset, region, defaultBlocks)
}

var defaultBlocks = sliceToSet(DefaultRules().BlockTags)

func nearestBlock(node *html.Node, offset int, region *html.Node, blocks map[string]bool) *html.Node {
	if node == nil {
		return nil
	}
	if node.Type == html.TextNode {
		if node.Parent == region {
			return nil
		}
		node = node.Parent
	}
	if node == region {
		// Caret sits between top-level children.
		if c := childAt(region, offset); c != nil && c.Type == html.ElementNode && blocks[c.Data] {
			return c
		}
		return nil
	}
	if !attached(node, region) {
		return nil
	}
	for n := node; n != nil && n != region; n = n.Parent {
		if n.Type == html.ElementNode && blocks[n.Data] {
			return n
		}
	}
	return nil
}

// Surround moves the contents of the selection's range into a new tag
// element inserted at the range start, then selects that element. Text
// boundaries are split as needed. Ranges whose ends have different
// parents once text is split fail with ErrPartialSelection and leave
// the tree untouched.
func Surround(region *html.Node, sel *Selection, tag string) (*html.Node, error) {
	return surround(region, sel, newElement(tag))
}

func surround(region *html.Node, sel *Selection, w *html.Node) (*html.Node, error) {
	if sel.RangeCount() == 0 {
		return nil, ErrNoSelection
	}
	if !sel.Valid(region) {
		return nil, fmt.Errorf("surround with <%s>: %w", w.Data, ErrDetachedNode)
	}
	parent, from, to, err := siblingSpan(sel)
	if err != nil {
		return nil, fmt.Errorf("surround with <%s>: %w", w.Data, err)
	}

	moved := children(parent)[from:to]
	insertBefore(sel, parent, w, childAt(parent, from))
	for _, n := range moved {
		move(sel, w, n, nil)
	}
	i := index(w)
	sel.SetRange(Range{Start: Point{parent, i}, End: Point{parent, i + 1}})
	return w, nil
}

// siblingSpan turns the selection's range into a run of whole children
// [from, to) of one parent, splitting text at the boundaries. It fails
// with ErrPartialSelection when the ends do not share a parent.
func siblingSpan(sel *Selection) (parent *html.Node, from, to int, err error) {
	r, _ := sel.Range()
	sp, ep := boundaryParent(r.Start), boundaryParent(r.End)
	if sp == nil || ep == nil {
		return nil, 0, 0, ErrDetachedNode
	}
	if sp != ep {
		return nil, 0, 0, ErrPartialSelection
	}
	end, err := elementBoundary(sel, r.End)
	if err != nil {
		return nil, 0, 0, err
	}
	r, _ = sel.Range()
	sel.SetRange(Range{Start: r.Start, End: end})
	start, err := elementBoundary(sel, r.Start)
	if err != nil {
		return nil, 0, 0, err
	}
	r, _ = sel.Range()
	r.Start = start
	sel.SetRange(r)
	if start.Node != r.End.Node || start.Offset > r.End.Offset {
		return nil, 0, 0, ErrPartialSelection
	}
	return start.Node, start.Offset, r.End.Offset, nil
}

// boundaryParent returns the element a point lies in once text is
// split at it.
func boundaryParent(p Point) *html.Node {
	if p.Node.Type == html.TextNode {
		return p.Node.Parent
	}
	return p.Node
}

// elementBoundary converts a point inside a text node into the
// equivalent point in the text's parent, splitting the text if needed.
func elementBoundary(sel *Selection, p Point) (Point, error) {
	if p.Node.Type != html.TextNode {
		return p, nil
	}
	t := p.Node
	if t.Parent == nil {
		return Point{}, ErrDetachedNode
	}
	switch {
	case p.Offset <= 0:
		return Point{t.Parent, index(t)}, nil
	case p.Offset >= len(t.Data):
		return Point{t.Parent, index(t) + 1}, nil
	}
	splitText(sel, t, p.Offset)
	return Point{t.Parent, index(t) + 1}, nil
}

// isolate splits n at the ends of the selection that fall inside it,
// so that the selected part of n is an element of its own, and returns
// that element. Without a range, or when the selection covers n
// whole, n itself is returned.
func isolate(sel *Selection, n *html.Node) (*html.Node, error) {
	r, ok := sel.Range()
	if !ok {
		return n, nil
	}
	if contains(n, r.End.Node) {
		p, err := elementBoundary(sel, r.End)
		if err != nil {
			return nil, err
		}
		splitUpTo(sel, p, n)
	}
	r, _ = sel.Range()
	if !contains(n, r.Start.Node) {
		return n, nil
	}
	p, err := elementBoundary(sel, r.Start)
	if err != nil {
		return nil, err
	}
	at := splitUpTo(sel, p, n)
	if c := childAt(at.Node, at.Offset); c != nil && c.Type == html.ElementNode && c.Data == n.Data {
		return c, nil
	}
	return n, nil
}

// splitUpTo splits every element from the one holding p up to and
// including top, and returns p as a point in top's parent. No empty
// copies are made when p already sits at an edge.
func splitUpTo(sel *Selection, p Point, top *html.Node) Point {
	node, off := p.Node, p.Offset
	for node != top.Parent {
		parent, i := node.Parent, index(node)
		switch {
		case off <= 0:
			off = i
		case off >= childCount(node):
			off = i + 1
		default:
			splitElement(sel, node, off)
			off = i + 1
		}
		node = parent
	}
	return Point{node, off}
}

// wrapRange moves the siblings from first up to (not including) stop
// into a new tag element placed where first was.
func wrapRange(sel *Selection, first, stop *html.Node, tag string) *html.Node {
	w := newElement(tag)
	insertBefore(sel, first.Parent, w, first)
	for n := first; n != nil && n != stop; {
		next := n.NextSibling
		move(sel, w, n, nil)
		n = next
	}
	return w
}

func unwrap(sel *Selection, node *html.Node) {
	parent := node.Parent
	base := index(node)
	rebase := pin(sel, node)
	for _, c := range children(node) {
		move(sel, parent, c, node)
	}
	rebase(parent, base)
	remove(sel, node)
}
