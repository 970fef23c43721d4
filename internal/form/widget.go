// internal/form/widget.go
//
// Forms subsystem: widget integration.
//
// Context
//   Page templates embed forms through the widget system:
//
//       {{ widget "auth/login" (dict "state" .Data.Form "token" .CSRF) }}
//
//   Every registered FormDef gets a widget under its own ID.  The widget is
//   stateless; the State and the freshly minted CSRF token travel in the
//   params, so pages never share tokens.
//
//------------------------------------------------------------------------------

package form

import (
	"html/template"

	"github.com/yanizio/nasabah/internal/widget"
)

// Ensure compile-time compliance with widget.Widget.
var _ widget.Widget = (*formWidget)(nil)

type formWidget struct{ id string }

// ID implements widget.Widget.
func (w *formWidget) ID() string { return w.id }

// Render draws the form.  params may include:
//
//   - "state" *form.State – values and errors of the last attempt
//   - "token" string      – CSRF token to embed
func (w *formWidget) Render(params map[string]any) (template.HTML, error) {
	var st *State
	var tok string
	if params != nil {
		st, _ = params["state"].(*State)
		tok, _ = params["token"].(string)
	}
	if st != nil && st.Def().ID != w.id {
		st = nil // another form's state; render blank
	}
	return RenderByID(w.id, st, RenderOptions{Token: tok})
}

// injectWidgetRegistration is called by definition.go after each FormDef loads.
func injectWidgetRegistration(fd *FormDef) { widget.Register(&formWidget{id: fd.ID}) }
