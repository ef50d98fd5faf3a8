package richer

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/antchfx/xpath"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Editor runs normalization and toolbar actions against editable
// regions. It holds configuration only; regions and selections are
// passed to every call and nothing about them is cached. An Editor is
// safe to share once built.
type Editor struct {
	rules  *Rules
	policy *Policy
	logger *zap.Logger

	blocks    map[string]bool
	blockLike map[string]bool
	keepEmpty map[string]bool
	noMerge   map[string]bool

	blockExpr   *xpath.Expr
	replaceExpr *xpath.Expr
	markup      *bluemonday.Policy

	actions *Dispatcher
}

// Option configures an Editor.
type Option func(*Editor)

// WithRules sets the tag vocabulary. Nil keeps DefaultRules.
func WithRules(r *Rules) Option {
	return func(e *Editor) {
		if r != nil {
			e.rules = r
		}
	}
}

// WithPolicy sets the filter applied to external content. Nil keeps
// DefaultPolicy.
func WithPolicy(p *Policy) Option {
	return func(e *Editor) {
		if p != nil {
			e.policy = p
		}
	}
}

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithAction registers a custom action handler under name, replacing
// any built-in handler of the same name.
func WithAction(name string, fn ActionFunc) Option {
	return func(e *Editor) {
		e.actions.Register(name, fn)
	}
}

// New builds an Editor. It fails when the rules do not validate.
func New(opts ...Option) (*Editor, error) {
	e := &Editor{
		rules:   DefaultRules(),
		policy:  DefaultPolicy(),
		logger:  zap.NewNop(),
		actions: NewDispatcher(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("richer")

	if err := e.rules.Validate(); err != nil {
		return nil, err
	}
	rules := &Rules{Replacements: make(map[string]Replacement, len(e.rules.Replacements))}
	for src, rep := range e.rules.Replacements {
		rep.Tag = strings.ToLower(rep.Tag)
		rules.Replacements[strings.ToLower(src)] = rep
	}
	rules.BlockTags = e.rules.BlockTags
	rules.KeepEmpty = e.rules.KeepEmpty
	rules.NoMerge = e.rules.NoMerge
	e.rules = rules

	e.blocks = sliceToSet(rules.BlockTags)
	e.keepEmpty = sliceToSet(rules.KeepEmpty)
	e.noMerge = sliceToSet(rules.NoMerge)
	e.blockLike = make(map[string]bool, len(e.blocks))
	for tag := range e.blocks {
		e.blockLike[tag] = true
	}
	for src, rep := range rules.Replacements {
		if e.blocks[rep.Tag] {
			e.blockLike[src] = true
		}
	}

	var err error
	if e.blockExpr, err = compileTags(keys(e.blockLike)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	if len(rules.Replacements) > 0 {
		if e.replaceExpr, err = compileTags(rules.sources()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
		}
	}
	e.markup = e.policy.markupPolicy()
	return e, nil
}

// Rules returns the editor's effective rules.
func (e *Editor) Rules() *Rules {
	return e.rules
}

// NearestBlock returns the closest block element around the boundary
// point (node, offset) in region. A text node resolves to its parent.
// A point on the region itself yields the child at offset when that
// child is a block. Otherwise ancestors are walked up to the region;
// nil means none was found, including for text directly under the
// region.
func (e *Editor) NearestBlock(node *html.Node, offset int, region *html.Node) *html.Node {
	return nearestBlock(node, offset, region, e.blocks)
}

// ContentResult is the snapshot a host binds after a normalization
// pass.
type ContentResult struct {
	Processed   string `json:"processed"`
	IsProcessed bool   `json:"isProcessed"`
	IsEmpty     bool   `json:"isEmpty"`
}

// Normalize parses markup as external content, normalizes it with the
// given rules and returns the result. If r is nil, DefaultRules is used.
func Normalize(markup string, r *Rules) (ContentResult, error) {
	e, err := New(WithRules(r))
	if err != nil {
		return ContentResult{}, err
	}
	return e.SetContent(NewRegion(), nil, markup)
}

// NormalizeReader reads markup from rd and normalizes it. See Normalize.
func NormalizeReader(rd io.Reader, r *Rules) (ContentResult, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return ContentResult{}, err
	}
	return Normalize(string(data), r)
}

// NewRegion returns an empty detached editable region element.
func NewRegion() *html.Node {
	r := newElement("div")
	SetAttr(r, "contenteditable", "true")
	return r
}

// ParseRegion parses markup verbatim into a new region. No filtering or
// normalization takes place.
func ParseRegion(markup string) (*html.Node, error) {
	region := NewRegion()
	nodes, err := parseFragment(markup)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		region.AppendChild(n)
	}
	return region, nil
}

// Render returns the serialized children of region.
func Render(region *html.Node) string {
	var buf bytes.Buffer
	for c := region.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

func parseFragment(markup string) ([]*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	return html.ParseFragment(strings.NewReader(markup), body)
}

func compileTags(tags []string) (*xpath.Expr, error) {
	return xpath.Compile("//" + strings.Join(tags, "|//"))
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
