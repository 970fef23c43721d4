package component

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/nasabah/internal/logger"
)

type stub struct {
	name    string
	initErr error
	inited  bool
}

func (s *stub) Name() string       { return s.name }
func (s *stub) Init(Deps) error    { s.inited = true; return s.initErr }
func (s *stub) Routes(r chi.Router) {
	r.Get("/"+s.name, func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(s.name)) })
}

func TestRegisterAndAllSorted(t *testing.T) {
	Register(&stub{name: "zeta"})
	Register(&stub{name: "alpha"})
	var names []string
	for _, c := range All() {
		names = append(names, c.Name())
	}
	require.GreaterOrEqual(t, len(names), 2)
	assert.IsNonDecreasing(t, names)
}

func TestMountAll(t *testing.T) {
	a, b := &stub{name: "a"}, &stub{name: "b"}
	r := chi.NewRouter()
	require.NoError(t, MountAll(r, Deps{Log: logger.Nop()}, a, b))
	assert.True(t, a.inited)

	for _, p := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/"+p, nil))
		assert.Equal(t, p, w.Body.String())
	}
}

func TestMountAll_InitError(t *testing.T) {
	boom := errors.New("boom")
	err := MountAll(chi.NewRouter(), Deps{Log: logger.Nop()}, &stub{name: "x", initErr: boom})
	assert.ErrorIs(t, err, boom)
}
