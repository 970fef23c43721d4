// internal/form/state.go
//
// Forms subsystem: per-screen form state.
//
// Context
//   A State holds what the user typed into one form: field values, uploaded
//   files, the errors of the last submit attempt, and the submission phase.
//   It is created for a request (or kept as screen-local session state),
//   mutated by Set, Bind, and the Controller, and thrown away on navigation.
//
//   State is not safe for concurrent use.  Overlapping submissions are
//   serialised by the Guard, not here.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"net/http"
	"net/url"
)

// CSRFField is the hidden input carrying the anti-forgery token.
const CSRFField = "csrf_token"

// maxMemory bounds multipart parsing held in RAM; larger parts spill to disk.
const maxMemory = 8 << 20

// State is the mutable side of one form.
type State struct {
	def    *FormDef
	values map[string]string
	files  map[string]*File
	errs   Errors
	phase  Phase
	token  string
}

// NewState returns a state with every declared field empty.
func NewState(fd *FormDef) *State {
	st := &State{def: fd}
	st.Reset()
	return st
}

// Def returns the form definition the state belongs to.
func (st *State) Def() *FormDef { return st.def }

// Set updates exactly one field.  Digit-only fields refuse any value holding
// a non-digit; the call then returns false and the old value stays.  Unknown
// fields are refused too.
func (st *State) Set(field, value string) bool {
	f, ok := st.def.Field(field)
	if !ok || f.Type == "file" {
		return false
	}
	if f.Digits() && !allDigits(value) {
		return false
	}
	st.values[field] = value
	return true
}

// SetFile stores an upload for a file field.
func (st *State) SetFile(field string, file *File) bool {
	f, ok := st.def.Field(field)
	if !ok || f.Type != "file" {
		return false
	}
	if file == nil {
		delete(st.files, field)
		return true
	}
	st.files[field] = file
	return true
}

// Value returns a field's current value.
func (st *State) Value(field string) string { return st.values[field] }

// File returns a field's upload, or nil.
func (st *State) File(field string) *File { return st.files[field] }

// Values returns a copy of all text values.
func (st *State) Values() map[string]string {
	out := make(map[string]string, len(st.values))
	for k, v := range st.values {
		out[k] = v
	}
	return out
}

// Errors returns the result of the last submit attempt.
func (st *State) Errors() Errors { return st.errs }

// Phase returns where the submission state machine currently is.
func (st *State) Phase() Phase { return st.phase }

// Token returns the CSRF token that arrived with the last Bind.
func (st *State) Token() string { return st.token }

// Reset restores every field to "", drops files, and clears errors.
func (st *State) Reset() {
	st.values = make(map[string]string, len(st.def.Fields))
	for _, f := range st.def.Fields {
		if f.Type != "file" {
			st.values[f.Name] = ""
		}
	}
	st.files = make(map[string]*File)
	st.errs = nil
}

// Bind copies posted values into the state as received.  No input filter
// runs, so validation sees and reports exactly what was sent.  Fields the
// form does not declare are ignored.
func (st *State) Bind(posted url.Values, files map[string]*File) {
	st.token = posted.Get(CSRFField)
	for _, f := range st.def.Fields {
		if f.Type == "file" {
			if file, ok := files[f.Name]; ok && file != nil {
				st.files[f.Name] = file
			}
			continue
		}
		if vs, ok := posted[f.Name]; ok && len(vs) > 0 {
			st.values[f.Name] = vs[0]
		}
	}
}

// BindRequest parses r (multipart when the form has a file field) and binds
// it.  At most Def().BodyLimit() bytes of the body are read; a larger body
// fails with an error wrapping *http.MaxBytesError.
func (st *State) BindRequest(r *http.Request) error {
	if r.Body != nil {
		r.Body = http.MaxBytesReader(nil, r.Body, st.def.BodyLimit())
	}
	if !st.def.Multipart() {
		if err := r.ParseForm(); err != nil {
			return err
		}
		st.Bind(r.PostForm, nil)
		return nil
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	files := make(map[string]*File)
	if r.MultipartForm != nil {
		for _, f := range st.def.Fields {
			if f.Type != "file" {
				continue
			}
			fhs := r.MultipartForm.File[f.Name]
			if len(fhs) == 0 || fhs[0].Size == 0 && fhs[0].Filename == "" {
				continue
			}
			file, err := FileFromHeader(fhs[0], f.MaxBytes)
			if err != nil {
				return err
			}
			files[f.Name] = file
		}
	}
	posted := r.PostForm
	if posted == nil {
		posted = url.Values{}
	}
	st.Bind(posted, files)
	return nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
