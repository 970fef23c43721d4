// components/dashboard/dashboard.go
//
// Dashboard component: the landing page after login.  It greets the user
// and links to the profile and course screens.  Logging out happens through
// the logout form in the layout.
package dashboard

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/nasabah/internal/component"
	"github.com/yanizio/nasabah/internal/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

var _ component.Component = (*Component)(nil)

// Component serves /dashboard.
type Component struct {
	d component.Deps
}

type menuItem struct {
	Href, Label, Hint string
}

var menu = []menuItem{
	{"/profile", "Profile", "View and edit your data."},
	{"/matkul", "Matkul", "Pick this semester's courses."},
}

func (c *Component) Name() string { return "dashboard" }

func (c *Component) Init(d component.Deps) error {
	tpl, _ := fs.Sub(templatesFS, "templates")
	d.View.Mount(c.Name(), tpl)
	c.d = d
	return nil
}

func (c *Component) Routes(r chi.Router) {
	r.With(session.RequireLogin).Get("/dashboard", c.get)
}

func init() { component.Register(&Component{}) }

func (c *Component) get(w http.ResponseWriter, r *http.Request) {
	p := c.d.View.NewPage(r, "Dashboard", map[string]any{"Menu": menu})
	c.d.View.Render(w, r, c.Name(), "dashboard", p)
}
