package richer

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Button identifies the toolbar control that fired an action.
type Button struct {
	Name string `json:"name"`
}

// ActionContext is everything an action needs: the button, the region,
// the selection and the host event that triggered it. NearestBlock is
// derived from the selection start when left nil.
type ActionContext struct {
	Button       Button
	Region       *html.Node
	Selection    *Selection
	Event        any
	NearestBlock *html.Node
}

// ActionFunc performs one toolbar action.
type ActionFunc func(e *Editor, ctx *ActionContext) error

// Dispatcher routes button names to actions, first by exact name and
// then by namespace, the part of the name before the first '-'
// ("align-center" is handled by the "align" namespace).
type Dispatcher struct {
	exact     map[string]ActionFunc
	namespace map[string]ActionFunc
}

// NewDispatcher returns a Dispatcher with the built-in actions.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		exact:     make(map[string]ActionFunc),
		namespace: make(map[string]ActionFunc),
	}
	d.RegisterNamespace("align", alignAction)
	d.RegisterNamespace("list", listAction)
	d.Register("indent", indentAction)
	d.Register("outdent", indentAction)
	d.Register("table", tableAction)
	for name := range inlineStyles {
		d.Register(name, inlineAction)
	}
	return d
}

// Register binds fn to an exact button name.
func (d *Dispatcher) Register(name string, fn ActionFunc) {
	d.exact[name] = fn
}

// RegisterNamespace binds fn to every button name starting with ns
// followed by '-'.
func (d *Dispatcher) RegisterNamespace(ns string, fn ActionFunc) {
	d.namespace[ns] = fn
}

// Lookup returns the action for a button name.
func (d *Dispatcher) Lookup(name string) (ActionFunc, bool) {
	if fn, ok := d.exact[name]; ok {
		return fn, true
	}
	if ns, _, found := strings.Cut(name, "-"); found {
		if fn, ok := d.namespace[ns]; ok {
			return fn, true
		}
	}
	return nil, false
}

// Dispatch runs the action named by ctx.Button. A missing or stale
// selection is not an error: actions that need one do nothing.
func (e *Editor) Dispatch(ctx *ActionContext) error {
	name := ctx.Button.Name
	fn, ok := e.actions.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	if ctx.Region == nil {
		return fmt.Errorf("action %q: %w", name, ErrDetachedNode)
	}

	if ctx.Selection.RangeCount() > 0 && !ctx.Selection.Valid(ctx.Region) {
		e.logger.Debug("ignoring stale selection", zap.String("action", name))
		ctx.Selection = nil
	}
	if ctx.NearestBlock == nil {
		if r, ok := ctx.Selection.Range(); ok {
			ctx.NearestBlock = e.NearestBlock(r.Start.Node, r.Start.Offset, ctx.Region)
		}
	}

	e.logger.Debug("dispatch", zap.String("action", name))
	if err := fn(e, ctx); err != nil {
		e.logger.Debug("action failed", zap.String("action", name), zap.Error(err))
		return fmt.Errorf("action %q: %w", name, err)
	}
	return nil
}

// Apply dispatches the action and then normalizes the region, returning
// the result the host binds. The result reflects the region even when
// the action failed.
func (e *Editor) Apply(ctx *ActionContext) (ContentResult, error) {
	err := e.Dispatch(ctx)
	if ctx.Region == nil {
		return ContentResult{}, err
	}
	return e.Process(ctx.Region, ctx.Selection), err
}
