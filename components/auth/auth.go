// components/auth/auth.go
//
// Authentication component: registration, login, and logout screens.
//
// Context
//   Registration is a multipart POST carrying the photo, validated with
//   every error reported at once.  Login and logout stop at the first
//   problem.  A successful login writes the session flag (and the token,
//   when the API issues one) and moves the browser to the dashboard; a
//   rejected login re-renders the page with the server's message and
//   persists nothing.
//
//------------------------------------------------------------------------------

package auth

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
	formRegister = "auth/register"
	formLogin    = "auth/login"
	formLogout   = "auth/logout"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component encapsulates the account screens.
type Component struct {
	d component.Deps
}

// pageData is what the register and login templates receive as .Data.
type pageData struct {
	Form *form.State
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "auth" }

// Init registers the forms and templates.
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

// Routes adds the account endpoints.
func (c *Component) Routes(r chi.Router) {
	r.Get("/", c.getRegister)
	r.Get("/register", c.getRegister)
	r.Post("/register", c.postRegister)
	r.Get("/login", c.getLogin)
	r.Post("/login", c.postLogin)
	r.Post("/logout", c.postLogout)
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── Registration ─────────────────────────────────*/

func (c *Component) getRegister(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, "register", form.MustFormDef(formRegister), nil)
}

func (c *Component) postRegister(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	fd := form.MustFormDef(formRegister)
	st := form.NewState(fd)
	if err := st.BindRequest(r); err != nil {
		component.BadForm(w, err)
		return
	}

	res := c.d.Forms.Submit(r.Context(), component.Key(s, fd), s.ID, st, &s.Flash,
		func(ctx context.Context) (string, error) {
			v := form.Canonical(fd, st)
			in := api.Registration{
				Name:     v["nama_nasabah"],
				Gender:   v["gender"],
				Address:  v["alamat"],
				Phone:    v["telepon"],
				Username: v["username"],
				Password: v["password"],
			}
			if f := st.File("foto"); f != nil {
				in.Photo = &api.Upload{Filename: f.Filename, ContentType: f.ContentType, Data: f.Data}
			}
			rep, err := c.d.API.Register(ctx, in)
			return rep.Message, err
		})

	if res.OK() {
		component.Redirect(w, r, "/login")
		return
	}
	c.render(w, r, component.Status(res), "register", fd, st)
}

/*──────────────────────────── Login / logout ───────────────────────────────*/

func (c *Component) getLogin(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, "login", form.MustFormDef(formLogin), nil)
}

func (c *Component) postLogin(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	fd := form.MustFormDef(formLogin)
	st := form.NewState(fd)
	if err := st.BindRequest(r); err != nil {
		component.BadForm(w, err)
		return
	}

	res := c.d.Forms.Submit(r.Context(), component.Key(s, fd), s.ID, st, &s.Flash,
		func(ctx context.Context) (string, error) {
			v := form.Canonical(fd, st)
			rep, err := c.d.API.Login(ctx, api.Credentials{Username: v["username"], Password: v["password"]})
			if err != nil {
				return "", err
			}
			token := rep.Data.Token
			if token == "" {
				token = session.FlagOnly
			}
			s.SetToken(v["username"], token)
			return rep.Message, nil
		})

	if res.OK() {
		s = c.d.Sessions.Renew(w, r, s)
		c.d.Log.Infow("login", "user", s.Username())
		component.Redirect(w, r, "/dashboard")
		return
	}
	c.render(w, r, component.Status(res), "login", fd, st)
}

func (c *Component) postLogout(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	fd := form.MustFormDef(formLogout)
	st := form.NewState(fd)
	if err := st.BindRequest(r); err != nil {
		component.BadForm(w, err)
		return
	}

	user := s.Username()
	res := c.d.Forms.Submit(r.Context(), component.Key(s, fd), s.ID, st, &s.Flash,
		func(context.Context) (string, error) {
			s.Clear()
			return "", nil
		})
	if !res.OK() {
		component.Redirect(w, r, "/dashboard")
		return
	}
	c.d.Sessions.Renew(w, r, s)
	c.d.Log.Infow("logout", "user", user)
	component.Redirect(w, r, "/login")
}

func (c *Component) render(w http.ResponseWriter, r *http.Request, status int, name string, fd *form.FormDef, st *form.State) {
	p := c.d.View.NewPage(r, fd.Title, pageData{Form: st})
	c.d.View.RenderStatus(w, r, status, c.Name(), name, p)
}
