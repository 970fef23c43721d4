// internal/view/page.go
//
// Page is the single value every layout and page template receives.

package view

import (
	"net/http"

	"github.com/yanizio/nasabah/internal/form"
	"github.com/yanizio/nasabah/internal/head"
	"github.com/yanizio/nasabah/internal/logger"
	"github.com/yanizio/nasabah/internal/message"
	"github.com/yanizio/nasabah/internal/requestinfo"
	"github.com/yanizio/nasabah/internal/session"
)

// Page carries the layout fields plus the screen's own Data.
type Page struct {
	Head     *head.Builder
	Username string
	LoggedIn bool
	Notices  []message.Notice
	CSRF     string // token bound to the current session
	Info     *requestinfo.Info
	Data     any
}

// NewPage builds the page model for r.  Pending flash notices are drained
// into the page, so each notice is shown exactly once.
func (e *Engine) NewPage(r *http.Request, title string, data any) *Page {
	h := head.New(e.opts.Title)
	h.SetTitle(title)
	h.Meta(`<meta charset="utf-8">`)
	h.Meta(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	h.Stylesheet("/static/portal.css")

	p := &Page{
		Head: h,
		Info: requestinfo.FromContext(r.Context()),
		Data: data,
	}
	if s := session.FromContext(r.Context()); s != nil {
		p.Username = s.Username()
		p.LoggedIn = s.LoggedIn()
		p.Notices = s.Flash.Drain()
		tok, err := form.GenerateToken(s.ID)
		if err != nil {
			logger.FromContext(r.Context()).Errorw("csrf token", "err", err)
		}
		p.CSRF = tok
	}
	return p
}
