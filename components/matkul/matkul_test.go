package matkul

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/nasabah/internal/component/componenttest"
)

const catalogJSON = `[
  {"id":1,"nama_matkul":"Algoritma","sks":"3"},
  {"id":2,"nama_matkul":"Basis Data","sks":2},
  {"id":3,"nama_matkul":"Jaringan","sks":"4"}
]`

type submitted struct {
	List []struct {
		ID   any    `json:"id"`
		Name string `json:"nama_matkul"`
		SKS  any    `json:"sks"`
	} `json:"list_matkul"`
}

func fakeCatalog() *componenttest.Fake {
	up := componenttest.NewFake()
	up.Handle("GET /getmatkul", func(w http.ResponseWriter, _ *http.Request) {
		componenttest.Envelope(w, 200, true, "", catalogJSON)
	})
	return up
}

func toggle(t *testing.T, h *componenttest.Harness, token, id string) string {
	t.Helper()
	resp, body := h.Post(t, "", "/matkul/toggle", url.Values{"csrf_token": {token}, "id": {id}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return body
}

func TestMatkul_ToggleUpdatesTotalsWithoutRefetch(t *testing.T) {
	up := fakeCatalog()
	h := componenttest.New(t, up, &Component{})
	h.Login(t, "budi", "jwt")

	tok := h.Token(t, "/matkul")
	_, body := h.Get(t, "/matkul")
	assert.Contains(t, body, "Basis Data")
	assert.Contains(t, body, "Selected: 0 course(s), total 0 SKS")

	toggle(t, h, tok, "1")
	toggle(t, h, tok, "2")
	body = toggle(t, h, tok, "3")
	assert.Contains(t, body, "Selected: 3 course(s), total 9 SKS")

	body = toggle(t, h, tok, "2")
	assert.Contains(t, body, "Selected: 2 course(s), total 7 SKS")
	assert.Equal(t, 2, up.Calls(), "only the two page loads hit upstream")
}

func TestMatkul_EmptySelectionMakesNoCall(t *testing.T) {
	up := fakeCatalog()
	up.Handle("POST /selectmatkul", func(w http.ResponseWriter, _ *http.Request) {
		componenttest.Envelope(w, 200, true, "", "")
	})
	h := componenttest.New(t, up, &Component{})
	h.Login(t, "budi", "jwt")

	resp, body := h.Post(t, "/matkul", "/matkul/select", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Please select at least one course")
	assert.Equal(t, 1, up.Calls())
}

func TestMatkul_SubmitSendsRecordsAndClears(t *testing.T) {
	up := fakeCatalog()
	var got submitted
	var ctype string
	up.Handle("POST /selectmatkul", func(w http.ResponseWriter, r *http.Request) {
		ctype = r.Header.Get("Content-Type")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		componenttest.Envelope(w, 200, true, "Matkul berhasil dipilih", `{"list_matkul":[]}`)
	})
	h := componenttest.New(t, up, &Component{})
	s := h.Login(t, "budi", "jwt")

	tok := h.Token(t, "/matkul")
	toggle(t, h, tok, "3")
	toggle(t, h, tok, "1")

	resp, _ := h.Post(t, "", "/matkul/select", url.Values{"csrf_token": {tok}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/matkul", resp.Header.Get("Location"))

	assert.Contains(t, ctype, "application/json")
	require.Len(t, got.List, 2)
	assert.Equal(t, float64(1), got.List[0].ID, "catalog order, numeric id kept")
	assert.Equal(t, "Algoritma", got.List[0].Name)
	assert.Equal(t, "3", got.List[0].SKS, "string sks kept")
	assert.Equal(t, float64(3), got.List[1].ID)

	assert.False(t, selection(s).Has("1"), "selection cleared on success")

	_, page := h.Get(t, "/matkul")
	assert.Contains(t, page, "Matkul berhasil dipilih")
	assert.Contains(t, page, "total 0 SKS")
}

func TestMatkul_SubmitFailureKeepsSelection(t *testing.T) {
	up := fakeCatalog()
	up.Handle("POST /selectmatkul", func(w http.ResponseWriter, _ *http.Request) {
		componenttest.Envelope(w, 200, false, "", "")
	})
	h := componenttest.New(t, up, &Component{})
	s := h.Login(t, "budi", "jwt")

	tok := h.Token(t, "/matkul")
	toggle(t, h, tok, "2")
	resp, body := h.Post(t, "", "/matkul/select", url.Values{"csrf_token": {tok}})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Failed to submit selected courses")
	assert.True(t, selection(s).Has("2"))
}

func TestMatkul_ToggleRejectsForgedToken(t *testing.T) {
	h := componenttest.New(t, fakeCatalog(), &Component{})
	s := h.Login(t, "budi", "jwt")
	h.Get(t, "/matkul")

	resp, body := h.Post(t, "", "/matkul/toggle", url.Values{"csrf_token": {"forged"}, "id": {"1"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body, "Security token invalid.")
	assert.False(t, selection(s).Has("1"))
}

func TestMatkul_SubmitChecksTokenBeforeSelection(t *testing.T) {
	up := fakeCatalog()
	up.Handle("POST /selectmatkul", func(w http.ResponseWriter, _ *http.Request) {
		componenttest.Envelope(w, 200, true, "", "")
	})
	h := componenttest.New(t, up, &Component{})
	h.Login(t, "budi", "jwt")
	h.Get(t, "/matkul")

	resp, body := h.Post(t, "", "/matkul/select", url.Values{"csrf_token": {"forged"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body, "Security token invalid.")
	assert.NotContains(t, body, "Please select at least one course")
	assert.Equal(t, 1, up.Calls())
}

func TestMatkul_UnknownCourse(t *testing.T) {
	h := componenttest.New(t, fakeCatalog(), &Component{})
	h.Login(t, "budi", "jwt")
	tok := h.Token(t, "/matkul")

	resp, _ := h.Post(t, "", "/matkul/toggle", url.Values{"csrf_token": {tok}, "id": {"42"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMatkul_Unauthorized(t *testing.T) {
	up := componenttest.NewFake()
	up.Handle("GET /getmatkul", func(w http.ResponseWriter, _ *http.Request) {
		componenttest.Envelope(w, http.StatusUnauthorized, false, "", "")
	})
	h := componenttest.New(t, up, &Component{})
	h.Login(t, "budi", "jwt")

	resp, _ := h.Get(t, "/matkul")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.False(t, h.Session(t).LoggedIn())
}
