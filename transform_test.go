package richer_test

import (
	"errors"
	"testing"

	"github.com/njchilds90/richer"
	"golang.org/x/net/html"
)

func TestWrapUnwrap_RoundTrip(t *testing.T) {
	region := mustRegion(t, `<p>hello</p>`)
	text := findText(region, "hello")
	sel := richer.Caret(text, 3)
	caret := richer.Point{Node: text, Offset: 3}

	w, err := richer.Wrap(region, sel, text, "strong")
	if err != nil {
		t.Fatal(err)
	}
	if got := richer.Render(region); got != `<p><strong>hello</strong></p>` {
		t.Errorf("after Wrap: %s", got)
	}
	if r, _ := sel.Range(); r.Start != caret || !r.Collapsed() {
		t.Errorf("caret after Wrap = %+v", r)
	}

	if err := richer.Unwrap(sel, w); err != nil {
		t.Fatal(err)
	}
	if got := richer.Render(region); got != `<p>hello</p>` {
		t.Errorf("after Unwrap: %s", got)
	}
	if r, _ := sel.Range(); r.Start != caret || !r.Collapsed() {
		t.Errorf("caret after Unwrap = %+v", r)
	}
}

func TestWrap_Detached(t *testing.T) {
	region := mustRegion(t, `<p>a</p>`)
	other := mustRegion(t, `<p>b</p>`)

	for _, n := range []*html.Node{
		{Type: html.TextNode, Data: "loose"},
		findText(other, "b"),
		region,
	} {
		if _, err := richer.Wrap(region, nil, n, "em"); !errors.Is(err, richer.ErrDetachedNode) {
			t.Errorf("Wrap(%q) error = %v, want ErrDetachedNode", n.Data, err)
		}
	}
	if _, err := richer.ReplaceTag(region, nil, findText(other, "b"), "em"); !errors.Is(err, richer.ErrDetachedNode) {
		t.Errorf("ReplaceTag error = %v, want ErrDetachedNode", err)
	}
	if err := richer.Unwrap(nil, &html.Node{Type: html.ElementNode, Data: "em"}); !errors.Is(err, richer.ErrDetachedNode) {
		t.Errorf("Unwrap error = %v, want ErrDetachedNode", err)
	}
}

func TestUnwrap_Childless(t *testing.T) {
	region := mustRegion(t, `<p>a<span></span>b</p>`)
	if err := richer.Unwrap(nil, findElement(region, "span")); err != nil {
		t.Fatal(err)
	}
	if got := richer.Render(region); got != `<p>ab</p>` {
		t.Errorf("got %s", got)
	}
}

func TestReplaceTag(t *testing.T) {
	region := mustRegion(t, `<p>ab<em>c</em></p>`)
	text := findText(region, "ab")
	sel := richer.Caret(text, 1)

	w, err := richer.ReplaceTag(region, sel, region.FirstChild, "h2")
	if err != nil {
		t.Fatal(err)
	}
	if w.Data != "h2" || region.FirstChild != w {
		t.Errorf("replacement not in place: %s", richer.Render(region))
	}
	if got := richer.Render(region); got != `<h2>ab<em>c</em></h2>` {
		t.Errorf("got %s", got)
	}
	if r, _ := sel.Range(); r.Start != (richer.Point{Node: text, Offset: 1}) {
		t.Errorf("caret = %+v", r.Start)
	}
}

func TestInsertBefore(t *testing.T) {
	region := mustRegion(t, `<p>a</p>`)
	sel := richer.Caret(region, 1)

	if _, err := richer.InsertBefore(sel, region.FirstChild, "h1"); err != nil {
		t.Fatal(err)
	}
	if got := richer.Render(region); got != `<h1></h1><p>a</p>` {
		t.Errorf("got %s", got)
	}
	if r, _ := sel.Range(); r.Start.Offset != 2 {
		t.Errorf("caret offset = %d, want 2", r.Start.Offset)
	}
	if _, err := richer.InsertBefore(nil, &html.Node{Type: html.ElementNode, Data: "p"}, "h1"); !errors.Is(err, richer.ErrDetachedNode) {
		t.Errorf("error = %v, want ErrDetachedNode", err)
	}
}

func TestNearestBlock(t *testing.T) {
	region := mustRegion(t, `<p>a<strong>b</strong></p><ul><li>c</li></ul>`)
	p, ul := region.FirstChild, region.LastChild

	tests := []struct {
		name   string
		node   *html.Node
		offset int
		want   *html.Node
	}{
		{"text in inline", findText(region, "b"), 0, p},
		{"text in paragraph", findText(region, "a"), 1, p},
		{"between blocks", region, 1, ul},
		{"list item", findText(region, "c"), 0, ul},
		{"past the end", region, 5, nil},
		{"nil node", nil, 0, nil},
		{"detached", &html.Node{Type: html.ElementNode, Data: "p"}, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := richer.NearestBlock(tt.node, tt.offset, region); got != tt.want {
				t.Errorf("NearestBlock = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNearestBlock_NoBlock(t *testing.T) {
	region := mustRegion(t, `<span>x</span>tail<p>y</p>`)
	tests := []struct {
		name   string
		node   *html.Node
		offset int
	}{
		{"inside inline", findText(region, "x"), 0},
		{"text under region", findText(region, "tail"), 2},
		{"inline child of region", region, 0},
		{"text child of region", region, 1},
	}
	for _, tt := range tests {
		if got := richer.NearestBlock(tt.node, tt.offset, region); got != nil {
			t.Errorf("%s: NearestBlock = %v, want nil", tt.name, got)
		}
	}
	if got := richer.NearestBlock(region, 2, region); got != region.LastChild {
		t.Errorf("block child of region: NearestBlock = %v", got)
	}
}

func TestSurround(t *testing.T) {
	region := mustRegion(t, `<p>one two three</p>`)
	sel := selectText(findText(region, "one two three"), 4, 7)

	w, err := richer.Surround(region, sel, "em")
	if err != nil {
		t.Fatal(err)
	}
	if got := richer.Render(region); got != `<p>one <em>two</em> three</p>` {
		t.Errorf("got %s", got)
	}
	r, _ := sel.Range()
	if r.Start.Node != region.FirstChild || r.Start.Offset != 1 || r.End.Offset != 2 {
		t.Errorf("selection does not cover the new element: %+v", r)
	}
	if w.Parent != region.FirstChild {
		t.Errorf("wrapper not under the paragraph")
	}
}

func TestSurround_Caret(t *testing.T) {
	region := mustRegion(t, `<p>hello</p>`)
	sel := richer.Caret(findText(region, "hello"), 2)

	if _, err := richer.Surround(region, sel, "em"); err != nil {
		t.Fatal(err)
	}
	if got := richer.Render(region); got != `<p>he<em></em>llo</p>` {
		t.Errorf("got %s", got)
	}
}

func TestSurround_PartialSelection(t *testing.T) {
	region := mustRegion(t, `<p>a<strong>bc</strong>d</p>`)
	sel := richer.NewSelection()
	sel.SetRange(richer.Range{
		Start: richer.Point{Node: findText(region, "a"), Offset: 0},
		End:   richer.Point{Node: findText(region, "bc"), Offset: 1},
	})

	_, err := richer.Surround(region, sel, "td")
	if !errors.Is(err, richer.ErrPartialSelection) {
		t.Fatalf("error = %v, want ErrPartialSelection", err)
	}
	if findElement(region, "td") != nil {
		t.Errorf("element inserted on failure: %s", richer.Render(region))
	}
	if strong := findElement(region, "strong"); strong.FirstChild != strong.LastChild {
		t.Errorf("text split on failure: %q, %q", strong.FirstChild.Data, strong.LastChild.Data)
	}
}

func TestPaste_PartialSelectionUntouched(t *testing.T) {
	ed := mustEditor(t)
	region := mustRegion(t, `<p>a<strong>bc</strong>d</p>`)
	sel := richer.NewSelection()
	sel.SetRange(richer.Range{
		Start: richer.Point{Node: findText(region, "a"), Offset: 0},
		End:   richer.Point{Node: findText(region, "bc"), Offset: 1},
	})

	if _, err := ed.Paste(region, sel, `x`); !errors.Is(err, richer.ErrPartialSelection) {
		t.Fatalf("error = %v, want ErrPartialSelection", err)
	}
	if strong := findElement(region, "strong"); strong.FirstChild != strong.LastChild {
		t.Errorf("text split on failure: %s", richer.Render(region))
	}
}

func TestReplaceTag_NotElement(t *testing.T) {
	region := mustRegion(t, `hello`)
	if _, err := richer.ReplaceTag(region, nil, region.FirstChild, "p"); !errors.Is(err, richer.ErrNotElement) {
		t.Errorf("error = %v, want ErrNotElement", err)
	}
	if got := richer.Render(region); got != `hello` {
		t.Errorf("region changed: %s", got)
	}
}

func TestSurround_NoSelection(t *testing.T) {
	region := mustRegion(t, `<p>a</p>`)
	if _, err := richer.Surround(region, nil, "em"); !errors.Is(err, richer.ErrNoSelection) {
		t.Errorf("error = %v, want ErrNoSelection", err)
	}
}
