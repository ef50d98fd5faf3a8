package richer

import (
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// emptyBlockRegexp matches markup made of a single empty paragraph.
var emptyBlockRegexp = regexp.MustCompile(`^\s*<p[^>]*>\s*</p>\s*$`)

// Process normalizes the content the user is typing into, in place.
// The selection is kept in step with every change.
func (e *Editor) Process(region *html.Node, sel *Selection) ContentResult {
	e.pipeline(region, sel)
	return e.result(region)
}

// ProcessExternal normalizes pasted or externally sourced content. The
// region's children are moved out, filtered through the editor's
// Policy and normalized off-tree, then moved back in one step so no
// intermediate state shows in the region.
func (e *Editor) ProcessExternal(region *html.Node, sel *Selection) ContentResult {
	scratch := newElement(region.Data)
	for _, c := range children(region) {
		move(sel, scratch, c, nil)
	}
	e.policy.apply(sel, scratch)
	e.pipeline(scratch, sel)
	for _, c := range children(scratch) {
		move(sel, region, c, nil)
	}
	return e.result(region)
}

// SetContent replaces the region's content with markup, treated as
// external content.
func (e *Editor) SetContent(region *html.Node, sel *Selection, markup string) (ContentResult, error) {
	nodes, err := parseFragment(e.markup.Sanitize(markup))
	if err != nil {
		return ContentResult{}, err
	}
	for _, c := range children(region) {
		remove(sel, c)
	}
	for _, n := range nodes {
		insertBefore(sel, region, n, nil)
	}
	return e.ProcessExternal(region, sel), nil
}

// Paste inserts markup at the selection, replacing the selected
// content, and normalizes the region as external content. The caret
// ends up after the pasted content. Without a selection the markup is
// appended to the region.
func (e *Editor) Paste(region *html.Node, sel *Selection, markup string) (ContentResult, error) {
	nodes, err := parseFragment(e.markup.Sanitize(markup))
	if err != nil {
		return ContentResult{}, err
	}

	parent, at := region, childCount(region)
	if sel.Valid(region) {
		p, from, to, err := siblingSpan(sel)
		if err != nil {
			return ContentResult{}, err
		}
		for _, c := range children(p)[from:to] {
			remove(sel, c)
		}
		parent, at = p, from
	}

	ref := childAt(parent, at)
	for _, n := range nodes {
		insertBefore(sel, parent, n, ref)
	}
	if sel != nil {
		sel.Collapse(parent, at+len(nodes))
	}
	return e.ProcessExternal(region, sel), nil
}

func (e *Editor) pipeline(region *html.Node, sel *Selection) {
	e.wrapBlocks(region, sel)
	if e.replaceTags(region, sel) {
		e.wrapBlocks(region, sel)
	}
	normalizeText(sel, region)
	e.prune(sel, region)
	ensureBlock(sel, region)
	e.mergeAdjacent(sel, region)
	normalizeText(sel, region)
	e.logger.Debug("normalized region", zap.Int("children", childCount(region)))
}

func (e *Editor) result(region *html.Node) ContentResult {
	processed := Render(region)
	return ContentResult{
		Processed:   processed,
		IsProcessed: true,
		IsEmpty:     strings.TrimSpace(processed) == "" || emptyBlockRegexp.MatchString(processed),
	}
}

// wrapBlocks makes every top-level child a block. A region without any
// block is wrapped whole in one paragraph under a selection guard.
// Otherwise inline wrappers around blocks are dissolved, each run of
// inline content becomes its own paragraph, and whitespace between
// blocks is dropped.
func (e *Editor) wrapBlocks(region *html.Node, sel *Selection) {
	if htmlquery.QuerySelector(region, e.blockExpr) == nil {
		_ = Guard(region, sel, func() error {
			p := newElement("p")
			for _, c := range children(region) {
				move(sel, p, c, nil)
			}
			insertBefore(sel, region, p, nil)
			return nil
		})
		return
	}

	for dissolved := true; dissolved; {
		dissolved = false
		for _, c := range children(region) {
			if c.Type == html.ElementNode && !e.blockLike[c.Data] && !IsMarker(c) &&
				htmlquery.QuerySelector(c, e.blockExpr) != nil {
				unwrap(sel, c)
				dissolved = true
			}
		}
	}

	var run []*html.Node
	flush := func(stop *html.Node) {
		defer func() { run = nil }()
		if len(run) == 0 {
			return
		}
		if blank(run) {
			for _, n := range run {
				remove(sel, n)
			}
			return
		}
		wrapRange(sel, run[0], stop, "p")
	}
	for _, c := range children(region) {
		if c.Type == html.ElementNode && e.blockLike[c.Data] {
			flush(c)
			continue
		}
		run = append(run, c)
	}
	flush(nil)
}

// blank reports whether a run of top-level nodes carries nothing but
// whitespace and comments.
func blank(run []*html.Node) bool {
	for _, n := range run {
		switch n.Type {
		case html.TextNode:
			if strings.TrimSpace(n.Data) != "" {
				return false
			}
		case html.CommentNode:
		default:
			return false
		}
	}
	return true
}

// replaceTags applies the replacement rules to a snapshot of the
// matching elements taken before anything is changed. An element whose
// replacement is a block is dissolved instead when it holds blocks or
// sits inside an element of the target tag, since the parser would not
// keep the nesting. It reports whether anything was dissolved.
func (e *Editor) replaceTags(region *html.Node, sel *Selection) bool {
	if e.replaceExpr == nil {
		return false
	}
	dissolved := false
	for _, n := range htmlquery.QuerySelectorAll(region, e.replaceExpr) {
		if !attached(n, region) {
			e.logger.Warn("skipping detached node", zap.String("tag", n.Data))
			continue
		}
		rep, ok := e.rules.replacement(n.Data)
		if !ok {
			continue
		}
		if e.blocks[rep.Tag] && (htmlquery.QuerySelector(n, e.blockExpr) != nil || insideTag(n, region, rep.Tag)) {
			unwrap(sel, n)
			dissolved = true
			continue
		}
		w := rep.build()
		insertBefore(sel, n.Parent, w, n)
		rebase := pin(sel, n)
		for _, c := range children(n) {
			move(sel, w, c, nil)
		}
		rebase(w, 0)
		remove(sel, n)
	}
	return dissolved
}

// insideTag reports whether n has an ancestor named tag below region.
func insideTag(n, region *html.Node, tag string) bool {
	for a := n.Parent; a != nil && a != region; a = a.Parent {
		if a.Type == html.ElementNode && a.Data == tag {
			return true
		}
	}
	return false
}

// ensureBlock gives a region emptied by pruning an empty paragraph,
// with the caret inside it when there is a selection.
func ensureBlock(sel *Selection, region *html.Node) {
	if region.FirstChild != nil {
		return
	}
	p := newElement("p")
	insertBefore(sel, region, p, nil)
	if sel.RangeCount() > 0 {
		sel.Collapse(p, 0)
	}
}

// normalizeText merges adjacent text nodes and deletes empty ones
// throughout the subtree.
func normalizeText(sel *Selection, n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type != html.TextNode {
			normalizeText(sel, c)
			c = next
			continue
		}
		for next != nil && next.Type == html.TextNode {
			after := next.NextSibling
			mergeText(sel, c, next)
			next = after
		}
		if c.Data == "" {
			remove(sel, c)
		}
		c = next
	}
}

// prune removes elements left without element or text children,
// children first so that emptied parents go too.
func (e *Editor) prune(sel *Selection, n *html.Node) {
	for _, c := range children(n) {
		if c.Type != html.ElementNode || IsMarker(c) {
			continue
		}
		e.prune(sel, c)
		if !e.keepEmpty[c.Data] && empty(c) {
			remove(sel, c)
		}
	}
}

func empty(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode || c.Type == html.TextNode {
			return false
		}
	}
	return true
}

// mergeAdjacent folds every element into its previous sibling when
// both share tag and class, at every level, deepest first. A merge can
// make the merged children adjacent to identical elements, so the
// absorbing element is cleaned again.
func (e *Editor) mergeAdjacent(sel *Selection, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			e.mergeAdjacent(sel, c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		merged := false
		for e.mergeable(c, c.NextSibling) {
			absorb(sel, c, c.NextSibling)
			merged = true
		}
		if merged {
			e.mergeAdjacent(sel, c)
		}
	}
}

func (e *Editor) mergeable(a, b *html.Node) bool {
	if a == nil || b == nil || a.Type != html.ElementNode || b.Type != html.ElementNode {
		return false
	}
	if a.Data != b.Data || GetAttr(a, "class") != GetAttr(b, "class") {
		return false
	}
	if IsMarker(a) || IsMarker(b) {
		return false
	}
	return !e.noMerge[a.Data]
}

// absorb moves the children of b, a's next sibling, to the end of a
// and removes b.
func absorb(sel *Selection, a, b *html.Node) {
	base := childCount(a)
	rebase := pin(sel, b)
	for _, c := range children(b) {
		move(sel, a, c, nil)
	}
	rebase(a, base)
	remove(sel, b)
}
