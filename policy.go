package richer

import (
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// Transformer is a function that receives an allowed element of
// external content and may mutate it in place (e.g., adding or removing
// attributes). Returning nil removes the node entirely.
type Transformer func(n *html.Node) *html.Node

// Policy defines which externally sourced markup is let into the
// region before normalization. It is not a defence against adversarial
// input; it keeps pasted content inside the editor's vocabulary.
type Policy struct {
	// AllowedTags is the list of tag names that are kept. All other
	// elements are unwrapped (children promoted) or removed, depending
	// on StripDisallowed.
	AllowedTags []string

	// DropTags are removed together with their content whatever the
	// other settings say.
	DropTags []string

	// AllowedAttributes maps tag names to the list of attribute names
	// that are kept on that tag. Use "*" as a key to allow attributes
	// on every tag.
	AllowedAttributes map[string][]string

	// AllowedSchemes lists the URL schemes (e.g. "http", "https",
	// "mailto") permitted in href and src attributes. Any URL whose
	// scheme is not in this list is removed from the attribute.
	AllowedSchemes []string

	// StripDisallowed controls behavior for disallowed elements.
	// When true the element and all its descendants are removed.
	// When false (default) the element is unwrapped and its
	// descendants are still walked.
	StripDisallowed bool

	// Transformers is an optional slice of Transformer functions applied
	// in order to every allowed element after attribute filtering.
	Transformers []Transformer

	// MaxDepth limits how deeply nested elements may be. Elements at a
	// depth greater than MaxDepth are unwrapped. Zero means unlimited.
	MaxDepth int
}

// DefaultPolicy returns a Policy covering the editor's vocabulary and
// the tags that the default rules fold into it: headings, paragraphs,
// inline formatting, lists, tables, links, images and embedded frames.
func DefaultPolicy() *Policy {
	return &Policy{
		AllowedTags: []string{
			"h1", "h2", "h3", "h4", "h5", "h6",
			"p", "div", "br", "hr",
			"b", "i", "u", "s", "em", "strong", "span", "sup", "sub", "code",
			"a", "img", "iframe",
			"ul", "ol", "li",
			"table", "thead", "tbody", "tfoot", "tr", "th", "td",
		},
		DropTags: []string{
			"script", "style", "noscript", "template", "object", "embed",
			"head", "title", "meta", "link",
		},
		AllowedAttributes: map[string][]string{
			"a":      {"href", "title", "target", "rel"},
			"img":    {"src", "alt", "title", "width", "height"},
			"iframe": {"src", "width", "height", "allowfullscreen"},
			"td":     {"colspan", "rowspan"},
			"th":     {"colspan", "rowspan", "scope"},
			"*":      {"class"},
		},
		AllowedSchemes: []string{"http", "https", "mailto"},
	}
}

// apply filters the subtree under root in place.
func (p *Policy) apply(sel *Selection, root *html.Node) {
	allowedTags := sliceToSet(p.AllowedTags)
	dropTags := sliceToSet(p.DropTags)
	allowedSchemes := sliceToSet(p.AllowedSchemes)

	var walk func(n *html.Node, depth int)
	walk = func(n *html.Node, depth int) {
		for _, c := range children(n) {
			switch c.Type {
			case html.CommentNode, html.DoctypeNode:
				remove(sel, c)
				continue
			case html.ElementNode:
			default:
				continue
			}
			if IsMarker(c) {
				continue
			}

			tag := strings.ToLower(c.Data)
			tooDeep := p.MaxDepth > 0 && depth > p.MaxDepth
			allowed := allowedTags[tag] && !tooDeep

			if dropTags[tag] || (!allowed && p.StripDisallowed) {
				remove(sel, c)
				continue
			}
			if !allowed {
				walk(c, depth+1)
				unwrap(sel, c)
				continue
			}

			c.Attr = filterAttrs(c.Attr, tag, p.AllowedAttributes, allowedSchemes)
			kept := true
			for _, t := range p.Transformers {
				if t(c) == nil {
					kept = false
					break
				}
			}
			if !kept {
				remove(sel, c)
				continue
			}
			walk(c, depth+1)
		}
	}
	walk(root, 1)
}

// markupPolicy builds the bluemonday policy used on raw markup strings
// before they are parsed into the tree.
func (p *Policy) markupPolicy() *bluemonday.Policy {
	bm := bluemonday.NewPolicy()
	bm.AllowElements(p.AllowedTags...)
	bm.AllowNoAttrs().OnElements(p.AllowedTags...)
	for tag, attrs := range p.AllowedAttributes {
		if tag == "*" {
			bm.AllowAttrs(attrs...).Globally()
			continue
		}
		bm.AllowAttrs(attrs...).OnElements(tag)
	}
	bm.AllowURLSchemes(p.AllowedSchemes...)
	bm.AllowRelativeURLs(true)
	bm.RequireParseableURLs(true)
	return bm
}

func filterAttrs(attrs []html.Attribute, tag string, allowed map[string][]string, schemes map[string]bool) []html.Attribute {
	out := attrs[:0]
	for _, a := range attrs {
		if !attrAllowed(a.Key, tag, allowed) {
			continue
		}
		if a.Key == "href" || a.Key == "src" || a.Key == "action" {
			if !schemeAllowed(a.Val, schemes) {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

func attrAllowed(attr, tag string, allowed map[string][]string) bool {
	for _, key := range []string{"*", tag} {
		for _, a := range allowed[key] {
			if a == attr {
				return true
			}
		}
	}
	return false
}

func schemeAllowed(raw string, schemes map[string]bool) bool {
	// Decode entities to prevent &#106;avascript: bypasses.
	decoded := strings.ToLower(strings.TrimSpace(html.UnescapeString(raw)))

	// Strip control chars that can confuse parsers.
	decoded = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, decoded)

	u, err := url.Parse(decoded)
	if err != nil {
		return false
	}
	if u.Scheme == "" {
		// Relative URL, allow.
		return true
	}
	return schemes[strings.ToLower(u.Scheme)]
}
