package richer

import "errors"

// Errors returned by editor operations.
var (
	// ErrDetachedNode indicates a node is no longer attached to the
	// editable region.
	ErrDetachedNode = errors.New("richer: node is detached from the region")

	// ErrNoSelection indicates an operation needed a selection and
	// none was set. Actions treat it as a no-op.
	ErrNoSelection = errors.New("richer: no selection")

	// ErrUnknownAction indicates no handler matches a button name.
	ErrUnknownAction = errors.New("richer: unknown action")

	// ErrNotElement indicates an element operation was given a text
	// or other non-element node.
	ErrNotElement = errors.New("richer: node is not an element")

	// ErrPartialSelection indicates a range cannot be surrounded
	// because it partially selects an element.
	ErrPartialSelection = errors.New("richer: range partially selects a node")

	// ErrInvalidRules indicates a rule set failed validation.
	ErrInvalidRules = errors.New("richer: invalid rules")
)
