// components/profile/profile.go
//
// Profile component: view and edit the logged-in nasabah's record.
//
// Context
//   GET /profile fetches the record and keeps it in the session, so the
//   following POST knows which id to update without trusting the browser.
//   POST /profile validates fail-fast and sends PUT /update/{id} with the id
//   in both the path and the body.  An upstream 401 anywhere logs the
//   browser out and sends it to /login.
//
//------------------------------------------------------------------------------

package profile

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"net/url"

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
	formEdit = "profile/edit"

	// keyRecord holds the last fetched api.Profile.
	keyRecord = "profile.record"

	loadFailed = "Failed to load profile"
)

var _ component.Component = (*Component)(nil)

// Component serves /profile.
type Component struct {
	d component.Deps
}

type pageData struct {
	Record *api.Profile
	Form   *form.State
}

func (c *Component) Name() string { return "profile" }

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
		r.Get("/profile", c.get)
		r.Post("/profile", c.post)
	})
}

func init() { component.Register(&Component{}) }

func (c *Component) get(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())

	rep, err := c.d.API.Profile(r.Context(), s.Bearer())
	if err != nil {
		if component.Unauthorized(w, r, s, err) {
			return
		}
		c.d.Log.Warnw("profile fetch failed", "user", s.Username(), "err", err)
		s.Delete(keyRecord)
		s.Flash.Error(loadFailed)
		c.render(w, r, http.StatusBadGateway, pageData{})
		return
	}

	rec := rep.Data
	s.Set(keyRecord, rec)
	c.render(w, r, http.StatusOK, pageData{Record: &rec, Form: prefill(rec)})
}

func (c *Component) post(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	rec, ok := session.Get[api.Profile](s, keyRecord)
	if !ok {
		s.Flash.Error(loadFailed)
		component.Redirect(w, r, "/profile")
		return
	}

	fd := form.MustFormDef(formEdit)
	st := form.NewState(fd)
	if err := st.BindRequest(r); err != nil {
		component.BadForm(w, err)
		return
	}

	res := c.d.Forms.Submit(r.Context(), component.Key(s, fd), s.ID, st, &s.Flash,
		func(ctx context.Context) (string, error) {
			v := form.Canonical(fd, st)
			rep, err := c.d.API.UpdateProfile(ctx, s.Bearer(), api.Profile{
				ID:      rec.ID,
				Name:    v["nama_pelanggan"],
				Address: v["alamat"],
				Gender:  v["gender"],
				Phone:   v["telepon"],
			})
			return rep.Message, err
		})

	switch {
	case res.OK():
		component.Redirect(w, r, "/profile")
	case component.Unauthorized(w, r, s, res.Err):
	default:
		c.render(w, r, component.Status(res), pageData{Record: &rec, Form: st})
	}
}

// prefill copies rec into a fresh edit state as stored upstream.  The record
// is bound rather than typed in, so a value the keystroke filter would refuse
// (a "+62" phone, say) still shows and is reported by validation on submit.
func prefill(rec api.Profile) *form.State {
	st := form.NewState(form.MustFormDef(formEdit))
	st.Bind(url.Values{
		"nama_pelanggan": {rec.Name},
		"alamat":         {rec.Address},
		"gender":         {rec.Gender},
		"telepon":        {rec.Phone},
	}, nil)
	return st
}

func (c *Component) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	p := c.d.View.NewPage(r, "Profile", data)
	c.d.View.RenderStatus(w, r, status, c.Name(), "profile", p)
}
