package richer

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Class names written by the block actions.
const (
	alignClassPrefix  = "r-align-"
	indentClassPrefix = "r-indent-"

	// MaxIndent is the deepest indent level.
	MaxIndent = 8
)

var alignments = map[string]bool{"left": true, "center": true, "right": true, "justify": true}

// inlineStyles maps the inline style buttons to the source tag whose
// replacement rule defines the styled element.
var inlineStyles = map[string]string{
	"bold":          "b",
	"italic":        "i",
	"underline":     "u",
	"strikethrough": "s",
}

// alignAction sets exactly one alignment class on the nearest block.
func alignAction(_ *Editor, ctx *ActionContext) error {
	blk := ctx.NearestBlock
	if blk == nil {
		return nil
	}
	_, value, _ := strings.Cut(ctx.Button.Name, "-")
	if !alignments[value] {
		return ErrUnknownAction
	}
	RemoveClass(blk, func(c string) bool { return strings.HasPrefix(c, alignClassPrefix) })
	AddClass(blk, alignClassPrefix+value)
	return nil
}

// listAction toggles a list of the button's kind at the nearest block.
func listAction(_ *Editor, ctx *ActionContext) error {
	blk := ctx.NearestBlock
	if blk == nil {
		return nil
	}
	_, kind, _ := strings.Cut(ctx.Button.Name, "-")
	if kind != "ul" && kind != "ol" {
		return ErrUnknownAction
	}

	switch blk.Data {
	case kind:
		// list -> one paragraph per item
		for _, c := range children(blk) {
			if c.Type != html.ElementNode {
				continue
			}
			if _, err := ReplaceTag(ctx.Region, ctx.Selection, c, "p"); err != nil {
				return err
			}
		}
		return Unwrap(ctx.Selection, blk)
	case "ul", "ol":
		_, err := ReplaceTag(ctx.Region, ctx.Selection, blk, kind)
		return err
	}

	li, err := ReplaceTag(ctx.Region, ctx.Selection, blk, "li")
	if err != nil {
		return err
	}
	_, err = Wrap(ctx.Region, ctx.Selection, li, kind)
	return err
}

// indentAction moves the nearest block one indent level in or out.
func indentAction(_ *Editor, ctx *ActionContext) error {
	blk := ctx.NearestBlock
	if blk == nil {
		return nil
	}
	current := IndentLevel(blk)
	next := max(current-1, 0)
	if ctx.Button.Name == "indent" {
		next = min(current+1, MaxIndent)
	}

	RemoveClass(blk, func(c string) bool { return strings.HasPrefix(c, indentClassPrefix) })
	if next > 0 {
		AddClass(blk, indentClassPrefix+strconv.Itoa(next))
	}
	return nil
}

// IndentLevel returns the indent level recorded on n, 0 when none.
func IndentLevel(n *html.Node) int {
	for _, c := range strings.Fields(GetAttr(n, "class")) {
		if v, ok := strings.CutPrefix(c, indentClassPrefix); ok {
			if lvl, err := strconv.Atoi(v); err == nil && lvl >= 0 && lvl <= MaxIndent {
				return lvl
			}
		}
	}
	return 0
}

// tableAction surrounds the selection with a cell, then a row, then a
// table, so the selected content ends up in a 1x1 table.
func tableAction(_ *Editor, ctx *ActionContext) error {
	if ctx.Selection.RangeCount() == 0 {
		return nil
	}
	for _, tag := range []string{"td", "tr", "table"} {
		if _, err := Surround(ctx.Region, ctx.Selection, tag); err != nil {
			return err
		}
	}
	return nil
}

// inlineAction toggles an inline style over the selection: inside a
// styled element the selected part of it is split off and unwrapped,
// otherwise the selected content is surrounded with a new one. A caret
// is left alone.
func inlineAction(e *Editor, ctx *ActionContext) error {
	rep, ok := e.rules.replacement(inlineStyles[ctx.Button.Name])
	if !ok {
		return ErrUnknownAction
	}
	r, ok := ctx.Selection.Range()
	if !ok || r.Collapsed() {
		return nil
	}

	start := r.Start.Node
	if c := childAt(start, r.Start.Offset); start.Type == html.ElementNode && c != nil {
		start = c
	}
	class := GetAttr(rep.build(), "class")
	for n := start; n != nil && n != ctx.Region; n = n.Parent {
		if n.Type == html.ElementNode && n.Data == rep.Tag && GetAttr(n, "class") == class {
			styled, err := isolate(ctx.Selection, n)
			if err != nil {
				return err
			}
			return Unwrap(ctx.Selection, styled)
		}
	}
	_, err := surround(ctx.Region, ctx.Selection, rep.build())
	return err
}
