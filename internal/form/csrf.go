// internal/form/csrf.go
//
// Forms subsystem: stateless CSRF token utilities.
//
// Context
//   Every rendered form embeds a hidden `csrf_token` input.  The server
//   verifies it on POST before any field rule runs, so a forged cross-site
//   request never reaches the upstream API.  Tokens are stateless:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(secret, nonce+unixMicro+binding) )
//
//   •  nonce – 16 random bytes.
//   •  unixMicro – issue time, 8 bytes, big-endian.
//   •  binding – the session id, so a token lifted from one browser is
//      useless in another.  It is hashed in, never stored in the token.
//
//   Validation checks the signature and ensures the timestamp is within
//   maxAge.  No server-side token store is needed.
//
// Workflow
//   •  SetCSRFKey(key)            → called once at boot with the configured key.
//   •  GenerateToken(binding)     → token string for the renderer.
//   •  VerifyToken(tok, binding)  → constant-time verify; false on any failure.
//
//------------------------------------------------------------------------------

package form

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	tokenBytes = 16 + 8 + sha256.Size // nonce + ts + sig
	maxAge     = 2 * time.Hour        // token valid window
)

var (
	secretMu  sync.RWMutex
	secretKey []byte
)

// SetCSRFKey installs the signing key.  An empty key selects a random one,
// which invalidates every token on restart.
func SetCSRFKey(key []byte) {
	secretMu.Lock()
	defer secretMu.Unlock()
	if len(key) == 0 {
		secretKey = randomKey()
		return
	}
	secretKey = append([]byte(nil), key...)
}

func fetchSecret() []byte {
	secretMu.RLock()
	k := secretKey
	secretMu.RUnlock()
	if k != nil {
		return k
	}

	secretMu.Lock()
	defer secretMu.Unlock()
	if secretKey == nil {
		secretKey = randomKey()
	}
	return secretKey
}

func randomKey() []byte {
	k := make([]byte, 32)
	_, _ = rand.Read(k)
	zap.S().Warnw("csrf key not configured, using random key")
	return k
}

// GenerateToken creates a token bound to binding (usually the session id).
func GenerateToken(binding string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(time.Now().UnixMicro()))

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, nonce...)
	buf = append(buf, ts...)
	buf = append(buf, sign(nonce, ts, binding)...)

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// VerifyToken returns true if tok passes HMAC and age checks for binding.
func VerifyToken(tok, binding string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}

	nonce := raw[:16]
	tsBytes := raw[16:24]
	sig := raw[24:]

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(tsBytes)))
	if time.Since(issued) > maxAge || time.Until(issued) > time.Minute {
		// Future timestamp (clock skew) or older than maxAge.
		return false
	}

	return hmac.Equal(sig, sign(nonce, tsBytes, binding))
}

func sign(nonce, ts []byte, binding string) []byte {
	mac := hmac.New(sha256.New, fetchSecret())
	mac.Write(nonce)
	mac.Write(ts)
	mac.Write([]byte(binding))
	return mac.Sum(nil)
}
