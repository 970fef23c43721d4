// internal/component/helpers.go
//
// Small handler helpers shared by the page components.

package component

import (
	"errors"
	"net/http"

	"github.com/yanizio/nasabah/internal/api"
	"github.com/yanizio/nasabah/internal/form"
	"github.com/yanizio/nasabah/internal/logger"
	"github.com/yanizio/nasabah/internal/session"
)

// ExpiredText is shown when the upstream API rejects the stored token.
const ExpiredText = "Your session has expired.  Please log in again."

// Key is the in-flight slot of fd for the browser behind s.
func Key(s *session.Session, fd *form.FormDef) string { return s.ID + ":" + fd.ID }

// Status picks the response code for a page re-rendered after res.
func Status(res form.Result) int {
	switch {
	case errors.Is(res.Err, form.ErrInFlight):
		return http.StatusConflict
	case len(res.Errors) > 0:
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}

// Unauthorized handles an upstream 401.  It logs the browser out, replaces
// pending notices with ExpiredText, redirects to /login, and reports true.
// Any other error is left to the caller.
func Unauthorized(w http.ResponseWriter, r *http.Request, s *session.Session, err error) bool {
	if !api.IsUnauthorized(err) {
		return false
	}
	logger.FromContext(r.Context()).Infow("upstream rejected token, logging out", "user", s.Username())
	s.Clear()
	s.Flash.Drain()
	s.Flash.Error(ExpiredText)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return true
}

// BadForm answers a submission BindRequest could not read: 413 when the
// body was over the form's limit, 400 otherwise.
func BadForm(w http.ResponseWriter, err error) {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		http.Error(w, "form submission too large", http.StatusRequestEntityTooLarge)
		return
	}
	http.Error(w, "malformed form submission", http.StatusBadRequest)
}

// Redirect is a 303 See Other, the only redirect the portal issues after a
// POST.
func Redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}
