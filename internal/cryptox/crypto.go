// Package cryptox collects the small crypto building blocks used by the
// token subsystem: key derivation, message authentication and digests.
package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/hkdf"
)

// MACSize is the length of a Sign output.
const MACSize = sha256.Size

// DigestSize is the length of a Digest output.
const DigestSize = 32

// DeriveKey expands secret into a size-byte subkey bound to info using
// HKDF-SHA256. Distinct info strings yield independent keys from the same
// installation secret.
func DeriveKey(secret []byte, info string, size int) ([]byte, error) {
	key := make([]byte, size)
	r := hkdf.New(sha256.New, secret, nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// Sign returns HMAC-SHA256(key, msg).
func Sign(key, msg []byte) []byte {
	m := hmac.New(sha256.New, key)
	m.Write(msg)
	return m.Sum(nil)
}

// Verify reports whether mac is the HMAC of msg under key, in constant time.
func Verify(key, msg, mac []byte) bool {
	return hmac.Equal(Sign(key, msg), mac)
}

// Digest is a stable, non-secret fingerprint of b.
func Digest(b []byte) [DigestSize]byte {
	return blake3.Sum256(b)
}
