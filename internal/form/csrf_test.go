package form

import (
	"encoding/base64"
	"testing"
)

func TestCSRF_RoundTripAndBinding(t *testing.T) {
	SetCSRFKey([]byte("0123456789abcdef0123456789abcdef"))

	tok, err := GenerateToken("session-a")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if !VerifyToken(tok, "session-a") {
		t.Fatalf("token should verify for its own session")
	}
	if VerifyToken(tok, "session-b") {
		t.Fatalf("token must not verify for another session")
	}
	if VerifyToken("", "session-a") || VerifyToken("garbage", "session-a") {
		t.Fatalf("malformed tokens must fail")
	}
}

func TestCSRF_TamperedSignature(t *testing.T) {
	tok, _ := GenerateToken("s")
	raw, _ := base64.RawURLEncoding.DecodeString(tok)
	raw[len(raw)-1] ^= 0xff
	if VerifyToken(base64.RawURLEncoding.EncodeToString(raw), "s") {
		t.Fatalf("tampered token verified")
	}
}

func TestCSRF_KeyRotationInvalidates(t *testing.T) {
	SetCSRFKey([]byte("first-key-first-key-first-key-00"))
	tok, _ := GenerateToken("s")
	SetCSRFKey([]byte("second-key-second-key-second-k00"))
	if VerifyToken(tok, "s") {
		t.Fatalf("token signed with old key verified")
	}
}
