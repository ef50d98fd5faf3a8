package richer

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

// Replacement is the target of a tag replacement rule.
type Replacement struct {
	// Tag is the element name the source tag is replaced with.
	Tag string `yaml:"tag"`

	// Class is assigned to the replacement element when Tag is the
	// generic inline container (span).
	Class string `yaml:"class,omitempty"`
}

// Rules defines the tag vocabulary the normalizer works with.
type Rules struct {
	// BlockTags are the structurally significant elements. Inline
	// content directly under the region is wrapped in a paragraph.
	BlockTags []string `yaml:"block_tags"`

	// Replacements maps a source tag name to its replacement. Applied
	// wherever the source tag occurs.
	Replacements map[string]Replacement `yaml:"replacements"`

	// KeepEmpty lists elements that are meaningful without content and
	// survive empty-element pruning.
	KeepEmpty []string `yaml:"keep_empty"`

	// NoMerge lists elements that are never merged with an identical
	// next sibling.
	NoMerge []string `yaml:"no_merge"`
}

// DefaultRules returns the editor's built-in vocabulary: paragraphs,
// lists, tables, headings and embedded frames as blocks; b, i, u, s and
// div folded into strong, em, span and p.
func DefaultRules() *Rules {
	return &Rules{
		BlockTags: []string{
			"p", "ul", "ol", "table",
			"h1", "h2", "h3", "h4", "h5", "h6",
			"iframe",
		},
		Replacements: map[string]Replacement{
			"b":   {Tag: "strong", Class: "bold"},
			"i":   {Tag: "em", Class: "italic"},
			"u":   {Tag: "span", Class: "underline"},
			"s":   {Tag: "span", Class: "strikethrough"},
			"div": {Tag: "p", Class: "paragraph"},
		},
		KeepEmpty: []string{
			"p", "br",
			"hr", "img", "iframe",
			"td", "th",
		},
		NoMerge: []string{
			"p", "h1", "h2", "h3", "h4", "h5", "h6",
			"br", "hr", "img", "iframe",
			"li", "tr", "td", "th",
		},
	}
}

// ParseRules reads YAML rules and overlays them on DefaultRules. Lists
// given in data replace the default lists; replacement entries are
// merged by source tag.
func ParseRules(data []byte) (*Rules, error) {
	var overlay Rules
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	r := DefaultRules()
	if overlay.BlockTags != nil {
		r.BlockTags = overlay.BlockTags
	}
	if overlay.KeepEmpty != nil {
		r.KeepEmpty = overlay.KeepEmpty
	}
	if overlay.NoMerge != nil {
		r.NoMerge = overlay.NoMerge
	}
	for src, rep := range overlay.Replacements {
		r.Replacements[strings.ToLower(src)] = rep
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadRules reads a YAML rules file. See ParseRules.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	return ParseRules(data)
}

// Validate checks that the rule set is usable and idempotent: no
// replacement target may itself be a replacement source.
func (r *Rules) Validate() error {
	if len(r.BlockTags) == 0 {
		return fmt.Errorf("%w: no block tags", ErrInvalidRules)
	}
	for _, src := range r.sources() {
		rep := r.Replacements[src]
		if rep.Tag == "" {
			return fmt.Errorf("%w: replacement for %q has no tag", ErrInvalidRules, src)
		}
		if _, chained := r.Replacements[strings.ToLower(rep.Tag)]; chained {
			return fmt.Errorf("%w: replacement %s -> %s is itself replaced", ErrInvalidRules, src, rep.Tag)
		}
	}
	return nil
}

// sources returns the replacement source tags in a stable order.
func (r *Rules) sources() []string {
	out := make([]string, 0, len(r.Replacements))
	for src := range r.Replacements {
		out = append(out, strings.ToLower(src))
	}
	sort.Strings(out)
	return out
}

// replacement returns the element that replaces tag, or nil when no
// rule applies.
func (r *Rules) replacement(tag string) (Replacement, bool) {
	rep, ok := r.Replacements[tag]
	return rep, ok
}

// build creates the element for rep.
func (rep Replacement) build() *html.Node {
	n := newElement(rep.Tag)
	if rep.Tag == "span" && rep.Class != "" {
		SetAttr(n, "class", rep.Class)
	}
	return n
}

func sliceToSet(s []string) map[string]bool {
	m := make(map[string]bool, len(s))
	for _, v := range s {
		m[strings.ToLower(v)] = true
	}
	return m
}
