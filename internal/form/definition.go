// internal/form/definition.go
//
// Forms subsystem: YAML definition loader.
//
// Context
//   Every portal form is declared in a YAML file embedded next to the
//   component that serves it (`components/<comp>/forms/*.yaml`).  The file
//   names the form, the upstream-facing behaviour (validation policy, reset,
//   notice texts), and each field with its rules.  Components register their
//   embedded definitions at start-up; an optional override directory can
//   replace any of them without a rebuild.  Renderer, validator, controller,
//   and widget all fetch definitions from this registry by ID, so one file is
//   the single source of truth for a form.
//
// Workflow
//   •  Structs mirror the YAML schema: FormDef → FieldDef.
//   •  Parse decodes and checks one document.
//   •  RegisterFS loads every "*.yaml" in an fs.FS (component embeds).
//   •  RegisterForms walks override directories on disk.
//   •  GetFormDef and All offer read-only access.
//
// Style
//   Full sentences, two spaces after periods, Oxford commas.  Helper comments
//   use short noun phrases.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// Policy decides how many failing fields a submit attempt reports.
type Policy string

const (
	// Aggregate reports every failing field in one combined notice.
	Aggregate Policy = "aggregate"
	// FailFast stops at the first failing field.
	FailFast Policy = "failfast"
)

// Messages are the notice texts a form falls back to when the server says
// nothing useful.
type Messages struct {
	Loading string `yaml:"loading"` // shown while the upstream call is outstanding
	Success string `yaml:"success"` // when the reply carries no message
	Failure string `yaml:"failure"` // remote rejection without a message
	Network string `yaml:"network"` // transport failure
}

// FormDef represents one form definition loaded from YAML.
//
// ID is namespaced by component, e.g. "auth/login".  A form may declare no
// fields at all (logout, course submission); it still carries a CSRF token.
type FormDef struct {
	ID             string     `yaml:"id"`
	Title          string     `yaml:"title"`
	Action         string     `yaml:"action"`  // POST target, required
	Method         string     `yaml:"method"`  // always post today
	Submit         string     `yaml:"submit"`  // button label
	Policy         Policy     `yaml:"policy"`  // aggregate or failfast
	ResetOnSuccess bool       `yaml:"reset_on_success"`
	Messages       Messages   `yaml:"messages"`
	Fields         []FieldDef `yaml:"fields"`
}

// FieldDef describes a single input control.  Validation metadata lives
// inline so the server enforces exactly what the markup hints at.
type FieldDef struct {
	Name        string   `yaml:"name"`        // submission key, required
	Label       string   `yaml:"label"`       // human-readable label, required
	Type        string   `yaml:"type"`        // see fieldTypes
	Placeholder string   `yaml:"placeholder"` // optional
	Required    bool     `yaml:"required"`
	MinLength   int      `yaml:"minlength"` // runes, 0 means unset
	MaxLength   int      `yaml:"maxlength"` // runes, 0 means unset
	Input       string   `yaml:"input"`     // "digits" filters keystrokes and validates
	Options     []string `yaml:"options"`   // select and radio
	FoldCase    bool     `yaml:"fold_case"` // compare options case-insensitively
	Rules       []string `yaml:"rules"`     // named rules, e.g. strong_password
	Accept      []string `yaml:"accept"`    // file: allowed MIME types
	MaxBytes    int64    `yaml:"max_bytes"` // file: size ceiling
	ErrorMsg    string   `yaml:"error"`     // overrides every generated message
}

var fieldTypes = map[string]bool{
	"text": true, "textarea": true, "password": true, "tel": true,
	"select": true, "radio": true, "file": true, "hidden": true,
}

// Field returns the named field definition.
func (fd *FormDef) Field(name string) (*FieldDef, bool) {
	for i := range fd.Fields {
		if fd.Fields[i].Name == name {
			return &fd.Fields[i], true
		}
	}
	return nil, false
}

// Multipart reports whether the form carries a file input.
func (fd *FormDef) Multipart() bool {
	for _, f := range fd.Fields {
		if f.Type == "file" {
			return true
		}
	}
	return false
}

// Request body allowances used by BodyLimit.
const (
	bodyOverhead   = 64 << 10 // token, boundaries, part headers
	textAllowance  = 4 << 10  // a text field without maxlength
	fileAllowance  = maxMemory
	oversizeFactor = 2 // an oversize upload still reaches validation
)

// BodyLimit is the largest request body BindRequest reads for the form.  A
// file field contributes twice its max_bytes, so a moderately oversize photo
// is reported by validation rather than cut off; a text field contributes
// four bytes per rune of maxlength.
func (fd *FormDef) BodyLimit() int64 {
	n := int64(bodyOverhead)
	for _, f := range fd.Fields {
		switch {
		case f.Type == "file" && f.MaxBytes > 0:
			n += oversizeFactor * f.MaxBytes
		case f.Type == "file":
			n += fileAllowance
		case f.MaxLength > 0:
			n += 4 * int64(f.MaxLength)
		default:
			n += textAllowance
		}
	}
	return n
}

// Digits reports whether the field accepts only 0-9.
func (f *FieldDef) Digits() bool { return f.Input == "digits" }

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*FormDef)
)

// GetFormDef returns a parsed FormDef by composite ID ("component/form").
func GetFormDef(id string) (*FormDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fd, ok := registry[id]
	return fd, ok
}

// MustFormDef is GetFormDef for handlers that registered the form
// themselves.  Panics when the ID is unknown.
func MustFormDef(id string) *FormDef {
	fd, ok := GetFormDef(id)
	if !ok {
		panic("form: unknown form " + id)
	}
	return fd
}

// All returns every registered form sorted by ID.
func All() []*FormDef {
	registryMu.RLock()
	out := make([]*FormDef, 0, len(registry))
	for _, fd := range registry {
		out = append(out, fd)
	}
	registryMu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

// Parse decodes one YAML document and validates its structure.  It never
// touches the registry.  name is used in error messages only.
func Parse(raw []byte, name string) (*FormDef, error) {
	var fd FormDef
	if err := yaml.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", name, err)
	}
	if err := validateFormDef(&fd, name); err != nil {
		return nil, err
	}
	return &fd, nil
}

// LoadFormDef parses one YAML file from disk.
func LoadFormDef(path string) (*FormDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form file %s: %w", path, err)
	}
	return Parse(raw, path)
}

// RegisterFS loads every "*.yaml" found in fsys and registers it.  Components
// call it with their embedded forms directory.
func RegisterFS(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".yaml") {
			return nil
		}
		raw, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		fd, err := Parse(raw, path)
		if err != nil {
			return err // fail fast so issues surface loudly.
		}
		register(fd)
		return nil
	})
}

// RegisterForms walks override directories and loads every "*.yaml" under
// "components/*/forms/".  Later directories win.  Missing directories are
// skipped.
func RegisterForms(baseDirs []string) error {
	if len(baseDirs) == 0 {
		return errors.New("RegisterForms: no base directories provided")
	}
	for _, base := range baseDirs {
		root := filepath.Join(base, "components")
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".yaml") ||
				filepath.Base(filepath.Dir(path)) != "forms" {
				return nil
			}
			fd, err := LoadFormDef(path)
			if err != nil {
				return err
			}
			register(fd)
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// register inserts or overrides the form and its widget.
func register(fd *FormDef) {
	registryMu.Lock()
	registry[fd.ID] = fd
	registryMu.Unlock()
	injectWidgetRegistration(fd)
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

// validateFormDef enforces structural rules YAML tags cannot express and
// fills defaults.
func validateFormDef(fd *FormDef, name string) error {
	if fd.ID == "" {
		return fmt.Errorf("form definition %s: missing required 'id'", name)
	}
	if fd.Action == "" {
		return fmt.Errorf("form %s: missing 'action'", fd.ID)
	}
	if fd.Method == "" {
		fd.Method = "post"
	}
	if !strings.EqualFold(fd.Method, "post") {
		return fmt.Errorf("form %s: method must be post", fd.ID)
	}
	switch fd.Policy {
	case "":
		fd.Policy = FailFast
	case Aggregate, FailFast:
	default:
		return fmt.Errorf("form %s: unknown policy %q", fd.ID, fd.Policy)
	}
	if fd.Submit == "" {
		fd.Submit = "Submit"
	}

	seen := make(map[string]struct{}, len(fd.Fields))
	for i := range fd.Fields {
		f := &fd.Fields[i]
		if err := validateField(f, fd.ID); err != nil {
			return err
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("form %s: duplicate field name '%s'", fd.ID, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// validateField confirms that essential attributes are present and sane.
func validateField(f *FieldDef, formID string) error {
	if f.Name == "" {
		return fmt.Errorf("form %s: field missing 'name'", formID)
	}
	if f.Name == CSRFField {
		return fmt.Errorf("form %s: field name %q is reserved", formID, CSRFField)
	}
	if f.Label == "" {
		return fmt.Errorf("form %s: field '%s' missing 'label'", formID, f.Name)
	}
	if !fieldTypes[f.Type] {
		return fmt.Errorf("form %s: field '%s' has unsupported type %q", formID, f.Name, f.Type)
	}
	if f.MinLength < 0 || f.MaxLength < 0 {
		return fmt.Errorf("form %s: field '%s' minlength/maxlength cannot be negative", formID, f.Name)
	}
	if f.MaxLength > 0 && f.MinLength > f.MaxLength {
		return fmt.Errorf("form %s: field '%s' minlength greater than maxlength", formID, f.Name)
	}
	if f.Input != "" && f.Input != "digits" {
		return fmt.Errorf("form %s: field '%s' unknown input filter %q", formID, f.Name, f.Input)
	}
	if (f.Type == "select" || f.Type == "radio") && len(f.Options) == 0 {
		return fmt.Errorf("form %s: field '%s' needs options", formID, f.Name)
	}
	for _, r := range f.Rules {
		if !knownRule(r) {
			return fmt.Errorf("form %s: field '%s' unknown rule %q", formID, f.Name, r)
		}
	}
	if f.Type == "file" {
		if f.MaxBytes < 0 {
			return fmt.Errorf("form %s: field '%s' max_bytes cannot be negative", formID, f.Name)
		}
	} else if len(f.Accept) > 0 || f.MaxBytes != 0 {
		return fmt.Errorf("form %s: field '%s' accept/max_bytes only apply to files", formID, f.Name)
	}
	return nil
}
