package richer_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/njchilds90/richer"
	"golang.org/x/net/html"
)

func TestSaveRestore_Caret(t *testing.T) {
	region := mustRegion(t, `<p>hello</p>`)
	text := findText(region, "hello")
	sel := richer.Caret(text, 2)

	bm := richer.Save(sel)
	if bm.IsZero() {
		t.Fatal("Save returned the zero bookmark")
	}
	if sel.RangeCount() != 0 {
		t.Error("Save did not clear the selection")
	}
	out := richer.Render(region)
	if !strings.HasPrefix(out, `<p>he<span class="`+richer.MarkerStartClass) {
		t.Errorf("start marker not at the caret: %s", out)
	}
	if got := countMarkers(region); got != 2 {
		t.Errorf("found %d markers, want 2", got)
	}

	if !richer.Restore(region, sel, bm) {
		t.Fatal("Restore failed")
	}
	if got := richer.Render(region); got != `<p>hello</p>` {
		t.Errorf("got %s after restore", got)
	}
	r, _ := sel.Range()
	want := richer.Point{Node: text, Offset: 2}
	if r.Start != want || r.End != want {
		t.Errorf("restored %+v, want caret at %+v", r, want)
	}
}

func TestSaveRestore_RangeAcrossElements(t *testing.T) {
	region := mustRegion(t, `<p>ab<strong>cd</strong>ef</p>`)
	ab, cd := findText(region, "ab"), findText(region, "cd")
	sel := richer.NewSelection()
	sel.SetRange(richer.Range{
		Start: richer.Point{Node: ab, Offset: 1},
		End:   richer.Point{Node: cd, Offset: 1},
	})

	bm := richer.Save(sel)
	if !richer.Restore(region, sel, bm) {
		t.Fatal("Restore failed")
	}
	if got := richer.Render(region); got != `<p>ab<strong>cd</strong>ef</p>` {
		t.Errorf("got %s", got)
	}
	r, _ := sel.Range()
	if r.Start != (richer.Point{Node: ab, Offset: 1}) {
		t.Errorf("start = %+v", r.Start)
	}
	if r.End != (richer.Point{Node: cd, Offset: 1}) {
		t.Errorf("end = %+v", r.End)
	}
}

func TestSaveRestore_BetweenBlocks(t *testing.T) {
	region := mustRegion(t, `<p>a</p><p>b</p>`)
	sel := richer.Caret(region, 1)

	bm := richer.Save(sel)
	if !richer.Restore(region, sel, bm) {
		t.Fatal("Restore failed")
	}
	r, _ := sel.Range()
	want := richer.Point{Node: region, Offset: 1}
	if r.Start != want || r.End != want {
		t.Errorf("restored %+v, want %+v", r, want)
	}
}

func TestSave_NoSelection(t *testing.T) {
	region := mustRegion(t, `<p>a</p>`)
	for _, sel := range []*richer.Selection{nil, richer.NewSelection()} {
		bm := richer.Save(sel)
		if !bm.IsZero() {
			t.Error("expected the zero bookmark")
		}
		if richer.Restore(region, sel, bm) {
			t.Error("Restore of the zero bookmark succeeded")
		}
	}
	if got := richer.Render(region); got != `<p>a</p>` {
		t.Errorf("region changed: %s", got)
	}
}

func TestRestore_MissingMarker(t *testing.T) {
	region := mustRegion(t, `<p>hello</p>`)
	sel := selectText(findText(region, "hello"), 1, 3)

	bm := richer.Save(sel)
	var end *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if richer.IsMarker(c) && strings.Contains(richer.GetAttr(c, "class"), richer.MarkerEndClass) {
				end = c
			}
			walk(c)
		}
	}
	walk(region)
	if end == nil {
		t.Fatal("end marker not found")
	}
	end.Parent.RemoveChild(end)

	if richer.Restore(region, sel, bm) {
		t.Error("Restore succeeded with a missing marker")
	}
	if sel.RangeCount() != 0 {
		t.Error("selection set after failed restore")
	}
	if got := countMarkers(region); got != 0 {
		t.Errorf("%d markers left behind", got)
	}
}

func TestGuard_RestoresOnError(t *testing.T) {
	region := mustRegion(t, `<p>hello</p>`)
	text := findText(region, "hello")
	sel := richer.Caret(text, 3)
	errBoom := errors.New("boom")

	err := richer.Guard(region, sel, func() error {
		if sel.RangeCount() != 0 {
			t.Error("selection visible inside the guard")
		}
		region.AppendChild(&html.Node{Type: html.ElementNode, Data: "hr"})
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("Guard returned %v, want %v", err, errBoom)
	}
	if got := richer.Render(region); got != `<p>hello</p><hr/>` {
		t.Errorf("content change rolled back or markers left: %s", got)
	}
	r, ok := sel.Range()
	if !ok || r.Start != (richer.Point{Node: text, Offset: 3}) {
		t.Errorf("selection not restored: %+v", r)
	}
}

func TestGuard_RestoresOnPanic(t *testing.T) {
	region := mustRegion(t, `<p>hello</p>`)
	sel := richer.Caret(findText(region, "hello"), 5)

	func() {
		defer func() { _ = recover() }()
		_ = richer.Guard(region, sel, func() error {
			panic("boom")
		})
	}()

	if got := countMarkers(region); got != 0 {
		t.Errorf("%d markers left after panic", got)
	}
	if !sel.Valid(region) {
		t.Error("selection not restored after panic")
	}
}

func TestGuard_Nested(t *testing.T) {
	region := mustRegion(t, `<p>hello</p>`)
	text := findText(region, "hello")
	sel := richer.Caret(text, 4)

	err := richer.Guard(region, sel, func() error {
		return richer.Guard(region, sel, func() error {
			if got := countMarkers(region); got != 2 {
				t.Errorf("inner guard placed markers: %d", got)
			}
			return nil
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	r, _ := sel.Range()
	if r.Start != (richer.Point{Node: text, Offset: 4}) {
		t.Errorf("selection = %+v", r)
	}
}
