// internal/form/renderer.go
//
// Forms subsystem: HTML renderer.
//
// Context
//   Given a FormDef and (optionally) the State of a failed attempt, the
//   renderer writes a complete <form> element: one wrapped control per field
//   with HTML5 hints mirroring the server rules, the last attempt's error
//   beside each failing field, the hidden CSRF input, and the submit button.
//   The caller receives template.HTML so the surrounding page does not
//   double-escape the markup.
//
// Style
//   Output HTML is plain, with class hooks only.  Each input gets
//   id="fld-{form}-{name}" and is wrapped in <div class="form-field">.
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strconv"
	"strings"
)

// RenderOptions bundles per-render inputs.
type RenderOptions struct {
	// Token is the CSRF token to embed.  Required for a submittable form.
	Token string
}

// Render returns the markup for fd.  st may be nil for a blank form.
func Render(fd *FormDef, st *State, opts RenderOptions) (template.HTML, error) {
	if st == nil {
		st = NewState(fd)
	}
	prefix := "fld-" + strings.ReplaceAll(fd.ID, "/", "-") + "-"

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<form class="portal-form" id="form-%s" method="post" action="%s"`,
		html.EscapeString(strings.ReplaceAll(fd.ID, "/", "-")), html.EscapeString(fd.Action))
	if fd.Multipart() {
		buf.WriteString(` enctype="multipart/form-data"`)
	}
	buf.WriteString(">\n")

	if msg := st.Errors().Get(""); msg != "" {
		buf.WriteString(`<p class="form-error" role="alert">` + html.EscapeString(msg) + "</p>\n")
	}

	for i := range fd.Fields {
		if err := writeField(&buf, prefix, &fd.Fields[i], st); err != nil {
			return "", err
		}
	}

	fmt.Fprintf(&buf, `<input type="hidden" name="%s" value="%s">`+"\n", CSRFField, html.EscapeString(opts.Token))

	disabled := ""
	if st.Phase() == Submitting {
		disabled = " disabled"
	}
	buf.WriteString(`<button type="submit"` + disabled + `>` + html.EscapeString(fd.Submit) + "</button>\n")
	buf.WriteString("</form>")
	return template.HTML(buf.String()), nil
}

// RenderByID looks the form up in the registry first.
func RenderByID(id string, st *State, opts RenderOptions) (template.HTML, error) {
	fd, ok := GetFormDef(id)
	if !ok {
		return "", fmt.Errorf("RenderForm: unknown form %q", id)
	}
	return Render(fd, st, opts)
}

// writeField emits one control with its label and error slot.
func writeField(buf *bytes.Buffer, prefix string, f *FieldDef, st *State) error {
	val := st.Value(f.Name)
	errMsg := st.Errors().Get(f.Name)
	id := prefix + f.Name

	if f.Type == "hidden" {
		buf.WriteString(`<input type="hidden" id="` + attr(id) + `" name="` + attr(f.Name) + `" value="` + attr(val) + `">` + "\n")
		return nil
	}

	class := "form-field"
	if errMsg != "" {
		class += " has-error"
	}
	buf.WriteString(`<div class="` + class + `">` + "\n")
	if f.Type != "radio" {
		buf.WriteString(`<label for="` + attr(id) + `">` + html.EscapeString(f.Label) + "</label>\n")
	}

	common := ` id="` + attr(id) + `" name="` + attr(f.Name) + `"`
	if f.Required {
		common += " required"
	}
	if errMsg != "" {
		common += ` aria-invalid="true"`
	}

	switch f.Type {
	case "text", "password", "tel":
		buf.WriteString(`<input type="` + f.Type + `"` + common + lengthAttrs(f))
		if f.Placeholder != "" {
			buf.WriteString(` placeholder="` + attr(f.Placeholder) + `"`)
		}
		if f.Digits() {
			buf.WriteString(` inputmode="numeric" pattern="[0-9]*"`)
		}
		if val != "" && f.Type != "password" { // passwords are never echoed
			buf.WriteString(` value="` + attr(val) + `"`)
		}
		buf.WriteString(">\n")

	case "textarea":
		buf.WriteString(`<textarea` + common + lengthAttrs(f))
		if f.Placeholder != "" {
			buf.WriteString(` placeholder="` + attr(f.Placeholder) + `"`)
		}
		buf.WriteString(">" + html.EscapeString(val) + "</textarea>\n")

	case "select":
		buf.WriteString(`<select` + common + ">\n")
		buf.WriteString(`<option value="">-</option>` + "\n")
		for _, opt := range f.Options {
			sel := ""
			if selected(f, val, opt) {
				sel = " selected"
			}
			buf.WriteString(`<option value="` + attr(opt) + `"` + sel + `>` + html.EscapeString(opt) + "</option>\n")
		}
		buf.WriteString("</select>\n")

	case "radio":
		buf.WriteString(`<fieldset><legend>` + html.EscapeString(f.Label) + "</legend>\n")
		for i, opt := range f.Options {
			rid := id + "-" + strconv.Itoa(i)
			checked := ""
			if selected(f, val, opt) {
				checked = " checked"
			}
			req := ""
			if f.Required {
				req = " required"
			}
			buf.WriteString(`<label class="radio-option" for="` + attr(rid) + `">`)
			buf.WriteString(`<input type="radio" id="` + attr(rid) + `" name="` + attr(f.Name) + `" value="` + attr(opt) + `"` + checked + req + `> `)
			buf.WriteString(html.EscapeString(opt) + "</label>\n")
		}
		buf.WriteString("</fieldset>\n")

	case "file":
		buf.WriteString(`<input type="file"` + common)
		if len(f.Accept) > 0 {
			buf.WriteString(` accept="` + attr(strings.Join(f.Accept, ",")) + `"`)
		}
		buf.WriteString(">\n")

	default:
		return fmt.Errorf("writeField: unsupported field type %q in field %s", f.Type, f.Name)
	}

	buf.WriteString(`<span class="error" aria-live="polite">` + html.EscapeString(errMsg) + "</span>\n")
	buf.WriteString("</div>\n")
	return nil
}

func lengthAttrs(f *FieldDef) string {
	var s string
	if f.MinLength > 0 {
		s += ` minlength="` + strconv.Itoa(f.MinLength) + `"`
	}
	if f.MaxLength > 0 {
		s += ` maxlength="` + strconv.Itoa(f.MaxLength) + `"`
	}
	return s
}

func selected(f *FieldDef, val, opt string) bool {
	return val == opt || f.FoldCase && strings.EqualFold(val, opt)
}

func attr(s string) string { return html.EscapeString(s) }
