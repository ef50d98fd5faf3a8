package richer

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Tree primitives. Each one keeps the points of sel consistent with the
// mutation it performs, following the DOM live range rules:
// insertions shift later offsets, removals collapse points inside the
// removed subtree to the removal position, and text splits and merges
// re-target points into the surviving text node. Moves are the one
// departure: points inside a moved subtree travel with it.

func newElement(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

func index(n *html.Node) int {
	i := 0
	for c := n.PrevSibling; c != nil; c = c.PrevSibling {
		i++
	}
	return i
}

func childCount(n *html.Node) int {
	i := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		i++
	}
	return i
}

func childAt(n *html.Node, i int) *html.Node {
	if i < 0 {
		return nil
	}
	c := n.FirstChild
	for ; c != nil && i > 0; c = c.NextSibling {
		i--
	}
	return c
}

// children returns a snapshot of n's children.
func children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// contains reports whether n is a or a descendant of a.
func contains(a, n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == a {
			return true
		}
	}
	return false
}

// attached reports whether n is a strict descendant of region.
func attached(n, region *html.Node) bool {
	if n == nil || region == nil || n == region {
		return false
	}
	return contains(region, n.Parent)
}

// insertBefore inserts the detached child into parent before ref, or
// at the end when ref is nil.
func insertBefore(sel *Selection, parent, child, ref *html.Node) {
	i := childCount(parent)
	if ref != nil {
		i = index(ref)
	}
	sel.each(func(p *Point) {
		if p.Node == parent && p.Offset > i {
			p.Offset++
		}
	})
	parent.InsertBefore(child, ref)
}

// remove detaches child from its parent.
func remove(sel *Selection, child *html.Node) {
	parent := child.Parent
	if parent == nil {
		return
	}
	i := index(child)
	sel.each(func(p *Point) {
		switch {
		case contains(child, p.Node):
			*p = Point{parent, i}
		case p.Node == parent && p.Offset > i:
			p.Offset--
		}
	})
	parent.RemoveChild(child)
}

// move re-parents child under newParent before ref. Points inside
// child are left alone.
func move(sel *Selection, newParent, child, ref *html.Node) {
	if old := child.Parent; old != nil {
		i := index(child)
		sel.each(func(p *Point) {
			if p.Node == old && p.Offset > i {
				p.Offset--
			}
		})
		old.RemoveChild(child)
	}
	insertBefore(sel, newParent, child, ref)
}

// splitText splits t at off and returns the new text node holding the
// tail, inserted right after t.
func splitText(sel *Selection, t *html.Node, off int) *html.Node {
	tail := &html.Node{Type: html.TextNode, Data: t.Data[off:]}
	t.Data = t.Data[:off]
	parent := t.Parent
	if parent == nil {
		return tail
	}
	i := index(t)
	sel.each(func(p *Point) {
		switch {
		case p.Node == t && p.Offset > off:
			*p = Point{tail, p.Offset - off}
		case p.Node == parent && p.Offset > i:
			p.Offset++
		}
	})
	parent.InsertBefore(tail, t.NextSibling)
	return tail
}

// mergeText appends the text of b, the next sibling of a, to a and
// removes b.
func mergeText(sel *Selection, a, b *html.Node) {
	n := len(a.Data)
	bi := index(b)
	sel.each(func(p *Point) {
		switch {
		case p.Node == b:
			*p = Point{a, n + p.Offset}
		case p.Node == a.Parent && p.Offset == bi:
			*p = Point{a, n}
		}
	})
	a.Data += b.Data
	remove(sel, b)
}

// splitElement moves the children of n from index off onwards into a
// shallow copy of n inserted right after it and returns the copy.
// Points after off in n follow the children into the copy.
func splitElement(sel *Selection, n *html.Node, off int) *html.Node {
	c := &html.Node{
		Type:      html.ElementNode,
		Data:      n.Data,
		DataAtom:  n.DataAtom,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	insertBefore(sel, n.Parent, c, n.NextSibling)

	var pts []*Point
	var offs []int
	sel.each(func(p *Point) {
		if p.Node == n && p.Offset > off {
			pts = append(pts, p)
			offs = append(offs, p.Offset-off)
		}
	})
	for _, k := range children(n)[off:] {
		move(sel, c, k, nil)
	}
	for i, p := range pts {
		*p = Point{c, offs[i]}
	}
	return c
}

// pin records the points addressing n itself, so they can be re-based
// onto another parent after n's children have moved there.
func pin(sel *Selection, n *html.Node) func(parent *html.Node, base int) {
	var pts []*Point
	var offs []int
	sel.each(func(p *Point) {
		if p.Node == n {
			pts = append(pts, p)
			offs = append(offs, p.Offset)
		}
	})
	return func(parent *html.Node, base int) {
		for i, p := range pts {
			*p = Point{parent, base + offs[i]}
		}
	}
}

// SetAttr sets (or adds) the attribute key=val on node n.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// GetAttr returns the value of the named attribute on n, or "" if not
// present.
func GetAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// RemoveAttr removes the named attribute from n if present.
func RemoveAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			attrs = append(attrs, a)
		}
	}
	n.Attr = attrs
}

// HasClass reports whether n carries the class name c.
func HasClass(n *html.Node, c string) bool {
	for _, f := range strings.Fields(GetAttr(n, "class")) {
		if f == c {
			return true
		}
	}
	return false
}

// AddClass adds c to n's class list unless already present.
func AddClass(n *html.Node, c string) {
	if HasClass(n, c) {
		return
	}
	SetAttr(n, "class", strings.TrimSpace(GetAttr(n, "class")+" "+c))
}

// RemoveClass removes every class of n for which drop returns true.
// The class attribute is removed once empty.
func RemoveClass(n *html.Node, drop func(c string) bool) {
	var keep []string
	for _, f := range strings.Fields(GetAttr(n, "class")) {
		if !drop(f) {
			keep = append(keep, f)
		}
	}
	if len(keep) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(keep, " "))
}
