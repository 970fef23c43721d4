// Package componenttest runs page components against a fake upstream API.
//
// A Harness wires real Deps (api client, session manager, controller, view
// engine) the way the server does, serves the given components over
// httptest, and drives them with a cookie-keeping client that does not
// follow redirects.
package componenttest

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/nasabah/internal/api"
	"github.com/yanizio/nasabah/internal/component"
	"github.com/yanizio/nasabah/internal/form"
	"github.com/yanizio/nasabah/internal/logger"
	"github.com/yanizio/nasabah/internal/session"
	"github.com/yanizio/nasabah/internal/view"
)

// Harness is one portal instance plus its fake upstream.
type Harness struct {
	Portal   *httptest.Server
	Upstream *httptest.Server
	Sessions *session.Manager
	Client   *http.Client
}

// New serves cs with upstream standing in for the remote API.
func New(t testing.TB, upstream http.Handler, cs ...component.Component) *Harness {
	t.Helper()

	up := httptest.NewServer(upstream)
	t.Cleanup(up.Close)

	cli, err := api.New(api.Options{BaseURL: up.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	h := &Harness{Upstream: up, Sessions: session.NewManager(session.Options{})}
	deps := component.Deps{
		API:      cli,
		Sessions: h.Sessions,
		Forms:    form.NewController(nil),
		View:     view.New(view.Options{Title: "Test Portal"}),
		Log:      logger.Nop(),
	}

	r := chi.NewRouter()
	r.Use(h.Sessions.Middleware)
	require.NoError(t, component.MountAll(r, deps, cs...))

	h.Portal = httptest.NewServer(r)
	t.Cleanup(h.Portal.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	h.Client = &http.Client{
		Jar:           jar,
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	return h
}

// Get fetches path and returns the response with its body read.
func (h *Harness) Get(t testing.TB, path string) (*http.Response, string) {
	t.Helper()
	resp, err := h.Client.Get(h.Portal.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

// Post sends vals urlencoded.  The CSRF token is taken from a GET of
// tokenFrom first, unless vals already has one.
func (h *Harness) Post(t testing.TB, tokenFrom, path string, vals url.Values) (*http.Response, string) {
	t.Helper()
	if vals == nil {
		vals = url.Values{}
	}
	if vals.Get(form.CSRFField) == "" {
		vals.Set(form.CSRFField, h.Token(t, tokenFrom))
	}
	resp, err := h.Client.PostForm(h.Portal.URL+path, vals)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

// Do sends a prepared request through the cookie-keeping client.
func (h *Harness) Do(t testing.TB, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := h.Client.Do(req)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

var tokenRe = regexp.MustCompile(`name="` + form.CSRFField + `" value="([^"]+)"`)

// Token GETs page and extracts the first CSRF token in it.
func (h *Harness) Token(t testing.TB, page string) string {
	t.Helper()
	_, body := h.Get(t, page)
	m := tokenRe.FindStringSubmatch(body)
	require.NotNil(t, m, "no csrf token on %s", page)
	return m[1]
}

// Session returns the server-side session the client's cookie points at.
func (h *Harness) Session(t testing.TB) *session.Session {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, h.Portal.URL+"/", nil)
	u, _ := url.Parse(h.Portal.URL)
	for _, c := range h.Client.Jar.Cookies(u) {
		req.AddCookie(c)
	}
	return h.Sessions.Load(httptest.NewRecorder(), req)
}

// Login marks the client's session as logged in without calling upstream.
func (h *Harness) Login(t testing.TB, username, token string) *session.Session {
	t.Helper()
	h.Get(t, "/_") // any request issues the cookie
	s := h.Session(t)
	s.SetToken(username, token)
	return s
}

func readBody(t testing.TB, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

// Envelope writes a {status, message, data} reply.
func Envelope(w http.ResponseWriter, code int, status bool, message, data string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data == "" {
		data = "null"
	}
	_, _ = io.WriteString(w, `{"status":`+boolText(status)+`,"message":`+quote(message)+`,"data":`+data+`}`)
}

func boolText(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}
