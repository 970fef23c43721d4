package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL + "/ukl1/api", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadBase(t *testing.T) {
	_, err := New(Options{BaseURL: "not-a-url"})
	assert.Error(t, err)
}

func TestRegister_SendsMultipartWithPhoto(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ukl1/api/register", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Budi", r.FormValue("nama_nasabah"))
		assert.Equal(t, "Laki-laki", r.FormValue("gender"))
		assert.Equal(t, "0812345678", r.FormValue("telepon"))

		f, hdr, err := r.FormFile("foto")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, "avatar.png", hdr.Filename)
		assert.Equal(t, "image/png", hdr.Header.Get("Content-Type"))
		assert.Equal(t, []byte("PNGDATA"), b)

		_, _ = io.WriteString(w, `{"status":true,"message":"Registered"}`)
	})

	rep, err := c.Register(context.Background(), Registration{
		Name: "Budi", Gender: "Laki-laki", Address: "Malang", Phone: "0812345678",
		Username: "budi", Password: "Abcdef1!",
		Photo: &Upload{Filename: "avatar.png", ContentType: "image/png", Data: []byte("PNGDATA")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Registered", rep.Message)
}

func TestRegister_RefusesWithoutPhoto(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) { hits.Add(1) })

	_, err := c.Register(context.Background(), Registration{Name: "x"})
	assert.ErrorIs(t, err, ErrMissingFile)
	assert.Zero(t, hits.Load())
}

func TestLogin_RejectedKeepsServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "budi", r.PostForm.Get("username"))
		_, _ = io.WriteString(w, `{"status":false,"message":"Invalid credentials"}`)
	})

	_, err := c.Login(context.Background(), Credentials{Username: "budi", Password: "x"})
	var ae *Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, Rejected, ae.Kind)
	assert.Equal(t, "Invalid credentials", ae.RemoteMessage())
	assert.False(t, ae.Transport())
}

func TestLogin_TokenOptional(t *testing.T) {
	replies := []string{
		`{"status":true,"message":"ok","data":{"token":"abc"}}`,
		`{"status":true,"message":"ok"}`,
		`{"status":true,"message":"ok","data":[1,2]}`,
	}
	want := []string{"abc", "", ""}
	for i, body := range replies {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, body) })
		rep, err := c.Login(context.Background(), Credentials{})
		require.NoError(t, err, body)
		assert.Equal(t, want[i], rep.Data.Token, body)
	}
}

func TestProfile_BearerAndUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"status":false,"message":"Unauthenticated"}`)
			return
		}
		_, _ = io.WriteString(w, `{"status":true,"message":"ok","data":{"id":7,"nama_pelanggan":"Budi","alamat":"Malang","gender":"Laki-laki","telepon":"0812"}}`)
	})

	rep, err := c.Profile(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, ID("7"), rep.Data.ID)
	assert.Equal(t, "Budi", rep.Data.Name)

	_, err = c.Profile(context.Background(), "bad")
	assert.True(t, IsUnauthorized(err))
}

func TestUpdateProfile_PutsIDInPathAndBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/ukl1/api/update/7", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "7", r.PostForm.Get("id"))
		assert.Equal(t, "perempuan", r.PostForm.Get("gender"))
		_, _ = io.WriteString(w, `{"status":true,"message":"Profile updated"}`)
	})

	rep, err := c.UpdateProfile(context.Background(), "t", Profile{ID: "7", Name: "Sari", Gender: "perempuan"})
	require.NoError(t, err)
	assert.Equal(t, "Profile updated", rep.Message)
}

func TestCourses_FlexibleSKS(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"status":true,"message":"ok","data":[
			{"id":"1","nama_matkul":"Basis Data","sks":"3"},
			{"id":2,"nama_matkul":"Jaringan","sks":2}]}`)
	})

	rep, err := c.Courses(context.Background(), "t")
	require.NoError(t, err)
	require.Len(t, rep.Data, 2)
	assert.Equal(t, Credits(3), rep.Data[0].SKS)
	assert.Equal(t, ID("2"), rep.Data[1].ID)
	assert.Equal(t, Credits(2), rep.Data[1].SKS)
}

func TestSelectCourses_SendsRecordsAsJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string][]map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []map[string]string{{"id": "1", "nama_matkul": "Basis Data", "sks": "3"}}, body["list_matkul"])
		_, _ = io.WriteString(w, `{"status":true,"message":"Saved","data":{"list_matkul":[{"id":"1","nama_matkul":"Basis Data","sks":"3"}]}}`)
	})

	rep, err := c.SelectCourses(context.Background(), "t", []Course{{ID: "1", Name: "Basis Data", SKS: 3}})
	require.NoError(t, err)
	assert.Len(t, rep.Data.Courses, 1)
}

func TestSelectCourses_EchoesCatalogueTypes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = io.WriteString(w, `{"status":true,"message":"ok","data":[{"id":1,"nama_matkul":"Algoritma","sks":3,"semester":"2"}]}`)
			return
		}
		var body map[string][]map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body["list_matkul"], 1)
		rec := body["list_matkul"][0]
		assert.Equal(t, float64(1), rec["id"], "number stays a number")
		assert.Equal(t, float64(3), rec["sks"], "number stays a number")
		assert.Equal(t, "2", rec["semester"], "unknown fields pass through")
		_, _ = io.WriteString(w, `{"status":true,"message":"Saved","data":{"list_matkul":[]}}`)
	})

	cat, err := c.Courses(context.Background(), "t")
	require.NoError(t, err)
	require.Len(t, cat.Data, 1)
	assert.Equal(t, ID("1"), cat.Data[0].ID)
	assert.Equal(t, Credits(3), cat.Data[0].SKS)

	_, err = c.SelectCourses(context.Background(), "t", cat.Data)
	require.NoError(t, err)
}

func TestErrors_TransportAndHTTPStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ukl1/api/getmatkul":
			_, _ = io.WriteString(w, `<html>oops</html>`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"status":true,"message":"weird"}`)
		}
	})

	_, err := c.Courses(context.Background(), "t")
	var ae *Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, Transport, ae.Kind, "undecodable body")

	_, err = c.Login(context.Background(), Credentials{})
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, Rejected, ae.Kind, "non-2xx is failure even with status true")
	assert.Equal(t, http.StatusInternalServerError, ae.StatusCode)

	dead, err := New(Options{BaseURL: "http://127.0.0.1:1/api", Timeout: time.Second})
	require.NoError(t, err)
	_, err = dead.Profile(context.Background(), "t")
	require.True(t, errors.As(err, &ae))
	assert.True(t, ae.Transport())
}

func TestGET_CoalescesConcurrentCalls(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		<-release
		_, _ = io.WriteString(w, `{"status":true,"message":"ok","data":[]}`)
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Courses(context.Background(), "same")
			assert.NoError(t, err)
		}()
	}
	// let the goroutines pile onto the in-flight call
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
}

func TestGET_CancelledCallerDoesNotFailOthers(t *testing.T) {
	var hits atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			close(started)
		}
		<-release
		_, _ = io.WriteString(w, `{"status":true,"message":"ok","data":[]}`)
	})

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.Courses(ctxA, "same")
		errA <- err
	}()
	<-started

	errB := make(chan error, 1)
	go func() {
		_, err := c.Courses(context.Background(), "same")
		errB <- err
	}()
	// let B join the in-flight call before A leaves
	time.Sleep(50 * time.Millisecond)
	cancelA()

	err := <-errA
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	assert.NoError(t, <-errB)
	assert.Equal(t, int32(1), hits.Load())
}
