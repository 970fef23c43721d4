// internal/form/validate.go
//
// Forms subsystem: server-side validation.
//
// Context
//   Validation is a pure function from (FormDef, State) to Errors.  Each
//   field runs its checks in a fixed order (required, length, digits,
//   options, named rules, file type and size) and stops at its first
//   failure.  The form's policy then decides whether one failing field ends
//   the pass (failfast) or every field is reported (aggregate).
//
//   String checks run through go-playground/validator tags so the semantics
//   (rune counting for min/max, the digits-only `number` regex) match what
//   the config layer uses.  Messages come from a universal-translator
//   instance in English or Indonesian.  A field's `error:` overrides all of
//   them.
//
// Style
//   Full sentences, two space spacing, Oxford comma.
//
//------------------------------------------------------------------------------

package form

import (
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/id"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// -----------------------------------------------------------------------------
// Error types
// -----------------------------------------------------------------------------

// FieldError describes one failing field.  Field is "" for form-level
// problems such as a bad CSRF token.
type FieldError struct {
	Field   string
	Rule    string
	Message string
}

// Errors is the ordered outcome of one validation pass.  It is recomputed on
// every submit attempt, never merged.
type Errors []FieldError

func (e Errors) Error() string { return "form validation failed: " + e.Combined() }

// Get returns the message for field, or "".
func (e Errors) Get(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// Has reports whether field failed.
func (e Errors) Has(field string) bool { return e.Get(field) != "" }

// Combined joins every message into one notification text.
func (e Errors) Combined() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, " ")
}

// -----------------------------------------------------------------------------
// Rule set
// -----------------------------------------------------------------------------

// PasswordSymbols is the fixed punctuation set strong_password accepts.
const PasswordSymbols = "!@#$%^&*()-_=+[]{};:'\",.<>/?\\|`~"

var namedRules = map[string]validator.Func{
	"strong_password": func(fl validator.FieldLevel) bool { return StrongPassword(fl.Field().String()) },
}

func knownRule(name string) bool { _, ok := namedRules[name]; return ok }

// StrongPassword reports whether s has at least 8 characters including an
// ASCII uppercase letter, an ASCII lowercase letter, an ASCII digit, and one
// of PasswordSymbols.  Letters and digits from other scripts count toward
// the length only.
func StrongPassword(s string) bool {
	if len([]rune(s)) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case 'A' <= r && r <= 'Z':
			upper = true
		case 'a' <= r && r <= 'z':
			lower = true
		case '0' <= r && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// Rules validates form states in one locale.  Safe for concurrent use.
type Rules struct {
	v  *validator.Validate
	tr ut.Translator
}

var universal = ut.New(en.New(), en.New(), id.New())

// NewRules returns a rule set whose messages are in locale ("en" or "id").
// Unknown locales fall back to English.
func NewRules(locale string) (*Rules, error) {
	v := validator.New()
	for name, fn := range namedRules {
		if err := v.RegisterValidation(name, fn); err != nil {
			return nil, err
		}
	}

	tr, found := universal.GetTranslator(locale)
	if !found {
		tr, _ = universal.GetTranslator("en")
	}
	if err := addMessages(tr); err != nil {
		return nil, err
	}
	return &Rules{v: v, tr: tr}, nil
}

var defaultRules = func() *Rules {
	r, err := NewRules("en")
	if err != nil {
		panic(err)
	}
	return r
}()

// Validate runs fd's rules over st with English messages.
func Validate(fd *FormDef, st *State) Errors { return defaultRules.Validate(fd, st) }

// Validate runs fd's rules over st.  It has no side effects.
func (r *Rules) Validate(fd *FormDef, st *State) Errors {
	var errs Errors
	for i := range fd.Fields {
		f := &fd.Fields[i]
		if fe, bad := r.field(f, st); bad {
			errs = append(errs, fe)
			if fd.Policy == FailFast {
				break
			}
		}
	}
	return errs
}

// FormError builds a form-level error in this rule set's locale.
func (r *Rules) FormError(key string) FieldError {
	return FieldError{Rule: key, Message: r.msg(key)}
}

func (r *Rules) field(f *FieldDef, st *State) (FieldError, bool) {
	fail := func(rule string, params ...string) (FieldError, bool) {
		msg := f.ErrorMsg
		if msg == "" {
			msg = r.msg(rule, append([]string{f.Label}, params...)...)
		}
		return FieldError{Field: f.Name, Rule: rule, Message: msg}, true
	}

	if f.Type == "file" {
		file := st.File(f.Name)
		if file == nil || file.Size == 0 {
			if f.Required {
				return fail("required")
			}
			return FieldError{}, false
		}
		if len(f.Accept) > 0 && !containsFold(f.Accept, file.ContentType) {
			return fail("file_type", strings.Join(f.Accept, ", "))
		}
		if f.MaxBytes > 0 && file.Size > f.MaxBytes {
			return fail("file_size", humanBytes(f.MaxBytes))
		}
		return FieldError{}, false
	}

	val := st.Value(f.Name)
	if r.v.Var(strings.TrimSpace(val), "required") != nil {
		if f.Required {
			return fail("required")
		}
		return FieldError{}, false
	}
	if f.MinLength > 0 && r.v.Var(val, "min="+strconv.Itoa(f.MinLength)) != nil {
		return fail("min", strconv.Itoa(f.MinLength))
	}
	if f.MaxLength > 0 && r.v.Var(val, "max="+strconv.Itoa(f.MaxLength)) != nil {
		return fail("max", strconv.Itoa(f.MaxLength))
	}
	if f.Digits() && r.v.Var(val, "number") != nil {
		return fail("number")
	}
	if len(f.Options) > 0 {
		if _, ok := matchOption(f, val); !ok {
			return fail("oneof", strings.Join(f.Options, ", "))
		}
	}
	for _, rule := range f.Rules {
		if r.v.Var(val, rule) != nil {
			return fail(rule)
		}
	}
	return FieldError{}, false
}

// Canonical returns the state's values ready to send upstream: option
// fields are normalised to their declared spelling.
func Canonical(fd *FormDef, st *State) map[string]string {
	out := st.Values()
	for i := range fd.Fields {
		f := &fd.Fields[i]
		if len(f.Options) == 0 {
			continue
		}
		if opt, ok := matchOption(f, out[f.Name]); ok {
			out[f.Name] = opt
		}
	}
	return out
}

func matchOption(f *FieldDef, val string) (string, bool) {
	for _, o := range f.Options {
		if o == val || f.FoldCase && strings.EqualFold(o, val) {
			return o, true
		}
	}
	return "", false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func humanBytes(n int64) string {
	const mb = 1 << 20
	if n%mb == 0 {
		return strconv.FormatInt(n/mb, 10) + " MB"
	}
	if n%1024 == 0 {
		return strconv.FormatInt(n/1024, 10) + " KB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}

// -----------------------------------------------------------------------------
// Messages
// -----------------------------------------------------------------------------

var catalog = map[string]map[string]string{
	"en": {
		"required":        "{0} is required.",
		"min":             "{0} must be at least {1} characters.",
		"max":             "{0} must be at most {1} characters.",
		"number":          "{0} may contain digits only.",
		"oneof":           "{0} must be one of: {1}.",
		"strong_password": "{0} needs at least 8 characters with an uppercase letter, a lowercase letter, a digit, and a symbol.",
		"file_type":       "{0} must be one of: {1}.",
		"file_size":       "{0} must not be larger than {1}.",
		"csrf":            "Security token invalid.  Please refresh and try again.",
		"inflight":        "A submission is already in progress.",
	},
	"id": {
		"required":        "{0} wajib diisi.",
		"min":             "{0} minimal {1} karakter.",
		"max":             "{0} maksimal {1} karakter.",
		"number":          "{0} hanya boleh berisi angka.",
		"oneof":           "{0} harus salah satu dari: {1}.",
		"strong_password": "{0} minimal 8 karakter dan memuat huruf besar, huruf kecil, angka, dan simbol.",
		"file_type":       "{0} harus salah satu dari: {1}.",
		"file_size":       "{0} tidak boleh lebih dari {1}.",
		"csrf":            "Token keamanan tidak valid.  Muat ulang halaman lalu coba lagi.",
		"inflight":        "Pengiriman sebelumnya masih diproses.",
	},
}

func addMessages(tr ut.Translator) error {
	msgs, ok := catalog[tr.Locale()]
	if !ok {
		msgs = catalog["en"]
	}
	for key, text := range msgs {
		if err := tr.Add(key, text, true); err != nil {
			return err
		}
	}
	return nil
}

func (r *Rules) msg(key string, params ...string) string {
	s, err := r.tr.T(key, params...)
	if err != nil {
		return key
	}
	return s
}
