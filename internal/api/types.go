package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// envelope is the wire wrapper every endpoint answers with.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Reply is a decoded successful envelope.
type Reply[T any] struct {
	Message string
	Data    T
}

// Upload is a file part for multipart requests.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Registration is the body of Register.
type Registration struct {
	Name     string // nama_nasabah
	Gender   string
	Address  string // alamat
	Phone    string // telepon
	Username string
	Password string
	Photo    *Upload // foto
}

// Credentials is the body of Login.
type Credentials struct {
	Username string
	Password string
}

// Session is the optional data of a login reply.  Anything that is not an
// object with a token decodes to the zero value.
type Session struct {
	Token string `json:"token"`
}

func (s *Session) UnmarshalJSON(b []byte) error {
	var raw struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(b, &raw); err == nil {
		s.Token = raw.Token
	}
	return nil
}

// Profile is the nasabah record.
type Profile struct {
	ID      ID     `json:"id"`
	Name    string `json:"nama_pelanggan"`
	Address string `json:"alamat"`
	Gender  string `json:"gender"`
	Phone   string `json:"telepon"`
}

// Course is one matkul catalogue entry.  A decoded Course remembers the
// record exactly as the API sent it and marshals back to those bytes, so a
// submitted selection carries the same field types (and any extra fields)
// the catalogue had.  A Course built in Go is marshalled from its fields.
type Course struct {
	ID   ID      `json:"id"`
	Name string  `json:"nama_matkul"`
	SKS  Credits `json:"sks"`

	wire json.RawMessage
}

type courseFields struct {
	ID   ID      `json:"id"`
	Name string  `json:"nama_matkul"`
	SKS  Credits `json:"sks"`
}

func (c *Course) UnmarshalJSON(b []byte) error {
	var f courseFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*c = Course{ID: f.ID, Name: f.Name, SKS: f.SKS, wire: append(json.RawMessage(nil), b...)}
	return nil
}

func (c Course) MarshalJSON() ([]byte, error) {
	if len(c.wire) > 0 {
		return c.wire, nil
	}
	return json.Marshal(courseFields{ID: c.ID, Name: c.Name, SKS: c.SKS})
}

// Selection is the body and the echoed data of SelectCourses.
type Selection struct {
	Courses []Course `json:"list_matkul"`
}

// Credits is an SKS count.  The API sends it as a string or a number.  On
// its own it is written as a string; inside a decoded Course the original
// form is kept.
type Credits int

func (c *Credits) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}
	n, err := strconv.Atoi(string(bytes.TrimSpace(b)))
	if err != nil {
		return fmt.Errorf("sks %q: %w", b, err)
	}
	*c = Credits(n)
	return nil
}

func (c Credits) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.Itoa(int(c)))
}

// ID is a record identifier.  The API is not consistent about quoting it, so
// both JSON strings and numbers are accepted.  On its own it is written as
// a string; inside a decoded Course the original form is kept.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("id %s: %w", b, err)
		}
		*id = ID(n.String())
	}
	return nil
}
