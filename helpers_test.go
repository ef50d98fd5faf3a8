package richer_test

import (
	"testing"

	"github.com/njchilds90/richer"
	"golang.org/x/net/html"
)

func mustRegion(t *testing.T, markup string) *html.Node {
	t.Helper()
	region, err := richer.ParseRegion(markup)
	if err != nil {
		t.Fatalf("ParseRegion(%q): %v", markup, err)
	}
	return region
}

func mustEditor(t *testing.T, opts ...richer.Option) *richer.Editor {
	t.Helper()
	ed, err := richer.New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ed
}

// findText returns the first text node under n whose data is s.
func findText(n *html.Node, s string) *html.Node {
	if n.Type == html.TextNode && n.Data == s {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := findText(c, s); f != nil {
			return f
		}
	}
	return nil
}

// findElement returns the first element under n named tag.
func findElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if f := findElement(c, tag); f != nil {
			return f
		}
	}
	return nil
}

// countMarkers counts selection marker elements under n.
func countMarkers(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if richer.IsMarker(c) {
			count++
		}
		count += countMarkers(c)
	}
	return count
}

func selectText(t *html.Node, from, to int) *richer.Selection {
	sel := richer.NewSelection()
	sel.SetRange(richer.Range{
		Start: richer.Point{Node: t, Offset: from},
		End:   richer.Point{Node: t, Offset: to},
	})
	return sel
}
