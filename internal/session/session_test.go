package session

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_TokenLifecycle(t *testing.T) {
	s := newSession("id", time.Now())
	assert.False(t, s.LoggedIn())

	s.SetToken("budi", "tok")
	s.Set("profile_id", 7)
	assert.True(t, s.LoggedIn())
	assert.Equal(t, "budi", s.Username())
	assert.Equal(t, "tok", s.Token())

	s.Flash.Success("bye")
	s.Clear()
	assert.False(t, s.LoggedIn())
	assert.Empty(t, s.Username())
	_, ok := Get[int](s, "profile_id")
	assert.False(t, ok, "attributes must be cleared")
	assert.Len(t, s.Flash.Pending(), 1, "flash survives Clear")
}

func TestSession_FlagOnlySendsNoBearer(t *testing.T) {
	s := newSession("id", time.Now())
	s.SetToken("budi", FlagOnly)
	assert.True(t, s.LoggedIn())
	assert.Empty(t, s.Bearer())

	s.SetToken("budi", "jwt")
	assert.Equal(t, "jwt", s.Bearer())
}

func TestGet_TypeMismatch(t *testing.T) {
	s := newSession("id", time.Now())
	s.Set("k", "string")
	_, ok := Get[int](s, "k")
	assert.False(t, ok)

	v := GetOrInit(s, "n", func() int { return 3 })
	assert.Equal(t, 3, v)
	v = GetOrInit(s, "n", func() int { return 9 })
	assert.Equal(t, 3, v)
}

func TestSession_ConcurrentUse(t *testing.T) {
	s := newSession("id", time.Now())
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.SetToken("u", "t")
			s.Set("k", i)
			_ = s.LoggedIn()
			_, _ = Get[int](s, "k")
		}(i)
	}
	wg.Wait()
	assert.True(t, s.LoggedIn())
}

func TestManager_ReusesCookieSession(t *testing.T) {
	m := NewManager(Options{})

	rec := httptest.NewRecorder()
	first := m.Load(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec2 := httptest.NewRecorder()
	second := m.Load(rec2, req)

	assert.Same(t, first, second)
	assert.Empty(t, rec2.Result().Cookies(), "known session must not reissue cookie")
}

func TestManager_ExpiresIdleSession(t *testing.T) {
	m := NewManager(Options{IdleTTL: time.Minute})
	clock := time.Now()
	m.now = func() time.Time { return clock }

	rec := httptest.NewRecorder()
	first := m.Load(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	first.SetToken("u", "t")
	cookie := rec.Result().Cookies()[0]

	clock = clock.Add(2 * time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	second := m.Load(httptest.NewRecorder(), req)

	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, second.LoggedIn())
}

func TestManager_RenewRotatesID(t *testing.T) {
	m := NewManager(Options{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	old := m.Load(rec, req)
	old.SetToken("budi", "jwt")
	old.Set("matkul.catalog", []int{1})
	old.Flash.Success("Login berhasil")

	rec = httptest.NewRecorder()
	s := m.Renew(rec, req, old)
	require.NotEqual(t, old.ID, s.ID)
	assert.Equal(t, 1, m.Len(), "old id dropped")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, s.ID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	assert.Equal(t, "budi", s.Username())
	assert.Equal(t, "jwt", s.Token())
	_, ok := Get[[]int](s, "matkul.catalog")
	assert.False(t, ok, "screen-local attributes stay behind")
	assert.Len(t, s.Flash.Pending(), 1)
	assert.Empty(t, old.Flash.Pending())

	stale := httptest.NewRequest(http.MethodGet, "/", nil)
	stale.AddCookie(&http.Cookie{Name: defaultCookie, Value: old.ID})
	assert.NotEqual(t, old.ID, m.Load(httptest.NewRecorder(), stale).ID)
}

func TestRequireLogin(t *testing.T) {
	m := NewManager(Options{})
	h := m.Middleware(RequireLogin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// log the same browser in and retry
	cookie := rec.Result().Cookies()[0]
	s, _ := m.store.Peek(cookie.Value)
	s.SetToken("u", "t")

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
