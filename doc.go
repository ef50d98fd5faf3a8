// Package richer is the mutation engine behind a rich-text editing
// surface. It works on golang.org/x/net/html node trees: an editable
// region is any element whose children are the edited content.
//
// # Overview
//
// richer normalizes arbitrary markup into a small tag vocabulary and
// runs toolbar actions (align, list, indent, table, inline styles)
// against the region, keeping the user's [Selection] valid across every
// structural change. Three layers do the work:
//
//   - Tree primitives and the [Selection] model keep boundary points in
//     step with insertions, removals, moves and text splits, the way a
//     browser maintains live ranges.
//   - [Save], [Restore] and [Guard] pin a selection with two marker
//     elements while a node is wrapped, unwrapped or replaced.
//   - [Editor] runs the normalization pipeline ([Editor.Process],
//     [Editor.ProcessExternal]) and dispatches actions
//     ([Editor.Dispatch], [Editor.Apply]).
//
// # Rules
//
// A [Rules] value controls:
//   - Which elements count as blocks ([Rules.BlockTags])
//   - Which tags are replaced, and by what ([Rules.Replacements])
//   - Which elements survive being empty ([Rules.KeepEmpty])
//   - Which elements are never merged with an identical sibling ([Rules.NoMerge])
//
// [DefaultRules] folds b, i, u, s and div into strong, em, span and p.
// Rules can be loaded from YAML with [LoadRules].
//
// # External content
//
// Pasted markup is cleaned with a bluemonday policy before it is
// parsed, then filtered in the tree by a [Policy] and normalized off
// the live region. This keeps content inside the editor's vocabulary;
// it is not a defence against adversarial input.
//
// # Thread Safety
//
// An Editor is safe for concurrent use once built. Regions and
// selections are not: each belongs to one editing surface.
//
// # Example
//
//	ed, _ := richer.New()
//	res, err := ed.SetContent(region, sel, pasted)
package richer
