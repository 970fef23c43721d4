package form

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_SetTouchesOneField(t *testing.T) {
	fd, st := validRegistration(t)
	st.errs = Errors{{Field: "x", Message: "keep"}}
	before := st.Values()

	require.True(t, st.Set("alamat", "Surabaya"))

	after := st.Values()
	for k, v := range before {
		if k == "alamat" {
			continue
		}
		assert.Equal(t, v, after[k], k)
	}
	assert.Equal(t, "Surabaya", after["alamat"])
	assert.Equal(t, "keep", st.Errors().Get("x"), "Set must not touch errors")
	assert.NotNil(t, fd)
}

func TestState_DigitsFilter(t *testing.T) {
	_, st := validRegistration(t)
	assert.False(t, st.Set("telepon", "0812-"))
	assert.Equal(t, "0812345678", st.Value("telepon"))
	assert.True(t, st.Set("telepon", ""))
	assert.True(t, st.Set("telepon", "08"))
	assert.False(t, st.Set("nope", "x"), "unknown field")
	assert.False(t, st.Set("foto", "x"), "file fields take SetFile")
}

func TestState_ResetAndNoTrimming(t *testing.T) {
	_, st := validRegistration(t)
	st.Set("username", "  budi  ")
	assert.Equal(t, "  budi  ", st.Value("username"))

	st.errs = Errors{{Field: "username", Message: "m"}}
	st.Reset()
	assert.Empty(t, st.Value("username"))
	assert.Nil(t, st.File("foto"))
	assert.Empty(t, st.Errors())
}

func TestState_BindRequestMultipart(t *testing.T) {
	fd := mustParse(t, registerYAML)
	st := NewState(fd)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("nama_nasabah", "Budi")
	_ = mw.WriteField("telepon", "0812-345") // not filtered on bind
	_ = mw.WriteField(CSRFField, "tok")
	_ = mw.WriteField("unknown", "ignored")
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="foto"; filename="a.bin"`)
	h.Set("Content-Type", "application/octet-stream")
	part, _ := mw.CreatePart(h)
	// PNG signature, so sniffing must win over octet-stream.
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/register", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, st.BindRequest(req))

	assert.Equal(t, "Budi", st.Value("nama_nasabah"))
	assert.Equal(t, "0812-345", st.Value("telepon"))
	assert.Equal(t, "tok", st.Token())
	_, has := st.Values()["unknown"]
	assert.False(t, has)

	f := st.File("foto")
	require.NotNil(t, f)
	assert.Equal(t, "image/png", f.ContentType)
	assert.Equal(t, "a.bin", f.Filename)
}

func TestFileFromHeader_TruncatesAtLimit(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("foto", "big.png")
	_, _ = part.Write(bytes.Repeat([]byte{1}, 100))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	f, err := FileFromHeader(req.MultipartForm.File["foto"][0], 10)
	require.NoError(t, err)
	assert.Len(t, f.Data, 11)
	assert.Equal(t, int64(100), f.Size)
	assert.True(t, f.Truncated())
}

func TestFormDef_BodyLimit(t *testing.T) {
	reg := mustParse(t, registerYAML)
	assert.Greater(t, reg.BodyLimit(), int64(2*2097152), "room for an oversize photo")
	assert.Less(t, reg.BodyLimit(), int64(5<<20))

	prof := mustParse(t, profileYAML)
	assert.Less(t, prof.BodyLimit(), int64(1<<20))
}

func TestState_BindRequestCapsBody(t *testing.T) {
	fd := mustParse(t, profileYAML)
	st := NewState(fd)

	big := url.Values{"nama_pelanggan": {strings.Repeat("a", int(fd.BodyLimit()))}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/profile", strings.NewReader(big))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	err := st.BindRequest(req)
	require.Error(t, err)
	var tooBig *http.MaxBytesError
	assert.True(t, errors.As(err, &tooBig))
	assert.Empty(t, st.Value("nama_pelanggan"))
}

func TestState_BindRequestCapsMultipart(t *testing.T) {
	fd := mustParse(t, registerYAML)
	st := NewState(fd)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("foto", "huge.png")
	_, _ = part.Write(bytes.Repeat([]byte{1}, int(fd.BodyLimit())))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/register", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.Error(t, st.BindRequest(req))
	assert.Nil(t, st.File("foto"))
}
