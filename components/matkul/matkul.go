// components/matkul/matkul.go
//
// Course (matkul) selection component.
//
// Context
//   GET /matkul fetches the catalogue and keeps it in the session for the
//   rest of the visit.  Toggling a course works on that stored copy without
//   another upstream call and re-renders the page with the new count and SKS
//   total.  Submitting sends the selected records, not just their ids, as
//   {"list_matkul": [...]}, each record exactly as the catalogue sent it.
//   The security token is checked first; an empty selection is then refused
//   before anything leaves the portal.
//
//------------------------------------------------------------------------------

package matkul

import (
	"context"
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/nasabah/internal/api"
	"github.com/yanizio/nasabah/internal/component"
	"github.com/yanizio/nasabah/internal/form"
	"github.com/yanizio/nasabah/internal/session"
)

//go:embed forms/*.yaml
var formsFS embed.FS

//go:embed templates/*.html
var templatesFS embed.FS

const (
	formSelect = "matkul/select"

	keyCatalog   = "matkul.catalog"
	keySelection = "matkul.selection"

	loadFailed  = "Failed to load courses"
	emptySelect = "Please select at least one course"
	pageTitle   = "Matkul"
)

var _ component.Component = (*Component)(nil)

// Component serves /matkul.
type Component struct {
	d component.Deps
}

type row struct {
	api.Course
	Selected bool
}

type pageData struct {
	Rows  []row
	Count int
	Total int
	Form  *form.State
}

func (c *Component) Name() string { return "matkul" }

func (c *Component) Init(d component.Deps) error {
	forms, _ := fs.Sub(formsFS, "forms")
	if err := form.RegisterFS(forms); err != nil {
		return err
	}
	tpl, _ := fs.Sub(templatesFS, "templates")
	d.View.Mount(c.Name(), tpl)
	c.d = d
	return nil
}

func (c *Component) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(session.RequireLogin)
		r.Get("/matkul", c.get)
		r.Post("/matkul/toggle", c.toggle)
		r.Post("/matkul/select", c.submit)
	})
}

func init() { component.Register(&Component{}) }

func selection(s *session.Session) *Selection {
	return session.GetOrInit(s, keySelection, NewSelection)
}

func (c *Component) get(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())

	rep, err := c.d.API.Courses(r.Context(), s.Bearer())
	if err != nil {
		if component.Unauthorized(w, r, s, err) {
			return
		}
		c.d.Log.Warnw("course fetch failed", "user", s.Username(), "err", err)
		s.Delete(keyCatalog)
		s.Flash.Error(loadFailed)
		c.render(w, r, http.StatusBadGateway, nil, nil)
		return
	}

	s.Set(keyCatalog, rep.Data)
	c.render(w, r, http.StatusOK, rep.Data, nil)
}

func (c *Component) toggle(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form submission", http.StatusBadRequest)
		return
	}
	catalog, ok := session.Get[[]api.Course](s, keyCatalog)
	if !ok {
		component.Redirect(w, r, "/matkul")
		return
	}
	if !form.VerifyToken(r.PostFormValue(form.CSRFField), s.ID) {
		s.Flash.Error(c.d.Forms.Rules().FormError("csrf").Message)
		c.render(w, r, http.StatusForbidden, catalog, nil)
		return
	}

	id := api.ID(r.PostFormValue("id"))
	if !inCatalog(catalog, id) {
		http.Error(w, "unknown course", http.StatusBadRequest)
		return
	}
	selection(s).Toggle(id)
	c.render(w, r, http.StatusOK, catalog, nil)
}

func (c *Component) submit(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	catalog, ok := session.Get[[]api.Course](s, keyCatalog)
	if !ok {
		s.Flash.Error(loadFailed)
		component.Redirect(w, r, "/matkul")
		return
	}

	fd := form.MustFormDef(formSelect)
	st := form.NewState(fd)
	if err := st.BindRequest(r); err != nil {
		component.BadForm(w, err)
		return
	}

	if !form.VerifyToken(st.Token(), s.ID) {
		s.Flash.Error(c.d.Forms.Rules().FormError("csrf").Message)
		c.render(w, r, http.StatusForbidden, catalog, st)
		return
	}

	sel := selection(s)
	picked := sel.Pick(catalog)
	if len(picked) == 0 {
		s.Flash.Error(emptySelect)
		c.render(w, r, http.StatusUnprocessableEntity, catalog, st)
		return
	}

	res := c.d.Forms.Submit(r.Context(), component.Key(s, fd), s.ID, st, &s.Flash,
		func(ctx context.Context) (string, error) {
			rep, err := c.d.API.SelectCourses(ctx, s.Bearer(), picked)
			return rep.Message, err
		})

	switch {
	case res.OK():
		sel.Clear()
		c.d.Log.Infow("courses selected", "user", s.Username(), "count", len(picked))
		component.Redirect(w, r, "/matkul")
	case component.Unauthorized(w, r, s, res.Err):
	default:
		c.render(w, r, component.Status(res), catalog, st)
	}
}

func inCatalog(catalog []api.Course, id api.ID) bool {
	for _, c := range catalog {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (c *Component) render(w http.ResponseWriter, r *http.Request, status int, catalog []api.Course, st *form.State) {
	s := session.FromContext(r.Context())
	sel := selection(s)

	data := pageData{Count: sel.Count(catalog), Total: sel.Total(catalog), Form: st}
	for _, course := range catalog {
		data.Rows = append(data.Rows, row{Course: course, Selected: sel.Has(course.ID)})
	}
	p := c.d.View.NewPage(r, pageTitle, data)
	c.d.View.RenderStatus(w, r, status, c.Name(), "matkul", p)
}
