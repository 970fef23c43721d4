package form

import (
	"testing"
)

const registerYAML = `
id: test/register
action: /register
policy: aggregate
reset_on_success: true
messages:
  loading: Registering...
  failure: Registration failed.
fields:
  - { name: nama_nasabah, label: Name, type: text, required: true, maxlength: 255 }
  - name: gender
    label: Gender
    type: radio
    required: true
    options: [Laki-laki, Perempuan]
  - { name: alamat, label: Address, type: textarea, required: true }
  - { name: telepon, label: Phone, type: tel, required: true, input: digits, maxlength: 20 }
  - name: foto
    label: Photo
    type: file
    required: true
    accept: [image/jpeg, image/png, image/jpg, image/gif, image/svg+xml]
    max_bytes: 2097152
  - { name: username, label: Username, type: text, required: true, maxlength: 255 }
  - { name: password, label: Password, type: password, required: true, maxlength: 255, rules: [strong_password] }
`

const profileYAML = `
id: test/profile
action: /profile
policy: failfast
fields:
  - { name: nama_pelanggan, label: Name, type: text, required: true, maxlength: 255 }
  - name: gender
    label: Gender
    type: select
    required: true
    fold_case: true
    options: [laki-laki, perempuan]
  - { name: telepon, label: Phone, type: tel, required: true, input: digits, maxlength: 20 }
`

func mustParse(t *testing.T, raw string) *FormDef {
	t.Helper()
	fd, err := Parse([]byte(raw), t.Name())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return fd
}

func png(size int) *File {
	return &File{Filename: "a.png", ContentType: "image/png", Size: int64(size), Data: make([]byte, size)}
}

// validRegistration returns a state that passes every rule.
func validRegistration(t *testing.T) (*FormDef, *State) {
	t.Helper()
	fd := mustParse(t, registerYAML)
	st := NewState(fd)
	for k, v := range map[string]string{
		"nama_nasabah": "Budi Santoso",
		"gender":       "Laki-laki",
		"alamat":       "Jl. Danau Ranau, Malang",
		"telepon":      "0812345678",
		"username":     "budi",
		"password":     "Abcdef1!",
	} {
		if !st.Set(k, v) {
			t.Fatalf("Set(%s) refused", k)
		}
	}
	st.SetFile("foto", png(1<<20))
	return fd, st
}
