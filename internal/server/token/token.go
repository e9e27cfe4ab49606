// Package token implements the secure link token: a fixed-layout payload
// followed by an HMAC, encoded as unpadded URL-safe base64.
//
// Wire layout (big-endian):
//
//	version(1) | kind(1) | flags(1) | document_id(8) | [file_index(4)] | [expires_at(8)] | mac(32)
//
// file_index is present iff flags&flagFileIndex, expires_at iff
// flags&flagExpiry. Encoding carries no nonce, so the same payload always
// produces the same string and previously handed out links stay stable.
package token

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securelinks/internal/common"
	"github.com/dmitrijs2005/securelinks/internal/cryptox"
)

// Kind is what a token grants.
type Kind uint8

const (
	View     Kind = 1
	Download Kind = 2
)

func (k Kind) String() string {
	switch k {
	case View:
		return "view"
	case Download:
		return "download"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == View || k == Download
}

// Payload is the signed content of a token.
type Payload struct {
	DocumentID uint64
	// FileIndex is nil when the token addresses the document as a whole.
	FileIndex *uint32
	Kind      Kind
	// ExpiresAt is a unix timestamp in seconds; 0 never expires.
	ExpiresAt int64
}

// Index is a convenience for building a FileIndex.
func Index(i uint32) *uint32 {
	return &i
}

// HasFile reports whether the payload addresses a single file.
func (p Payload) HasFile() bool {
	return p.FileIndex != nil
}

// ExpiredAt reports whether the payload is expired at unix time now.
// Tokens without expiry never expire.
func (p Payload) ExpiredAt(now int64) bool {
	return p.ExpiresAt != 0 && now > p.ExpiresAt
}

const (
	version = 1

	flagFileIndex = 1 << 0
	flagExpiry    = 1 << 1
	knownFlags    = flagFileIndex | flagExpiry

	headerSize = 1 + 1 + 1 + 8

	macInfo = "securelinks token mac v1"
	// MinSecretSize is the shortest installation secret the codec accepts.
	MinSecretSize = 16
)

var encoding = base64.RawURLEncoding.Strict()

// ErrWeakSecret is returned by NewCodec for secrets shorter than MinSecretSize.
var ErrWeakSecret = errors.New("token: secret too short")

// Codec encodes and decodes tokens with a key derived from the
// installation secret. It is safe for concurrent use.
type Codec struct {
	key []byte
}

// NewCodec derives the MAC key from secret.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) < MinSecretSize {
		return nil, ErrWeakSecret
	}
	key, err := cryptox.DeriveKey(secret, macInfo, cryptox.MACSize)
	if err != nil {
		return nil, err
	}
	return &Codec{key: key}, nil
}

// Encode returns the URL-safe token for p. The payload is not validated
// beyond its kind; callers build payloads from trusted input.
func (c *Codec) Encode(p Payload) (string, error) {
	if !p.Kind.Valid() {
		return "", fmt.Errorf("token: unknown kind %d", p.Kind)
	}
	if p.ExpiresAt < 0 {
		return "", errors.New("token: negative expiry")
	}
	raw := c.seal(marshal(p))
	return encoding.EncodeToString(raw), nil
}

// Decode verifies s and returns its payload. Every failure is reported as
// common.ErrInvalidToken so callers cannot tell which check failed.
func (c *Codec) Decode(s string) (Payload, error) {
	p, _, err := c.DecodeRaw(s)
	return p, err
}

// DecodeRaw is Decode that also returns the verified wire bytes, which
// identify the token for revocation.
func (c *Codec) DecodeRaw(s string) (Payload, []byte, error) {
	if s == "" {
		return Payload{}, nil, common.ErrInvalidToken
	}
	raw, err := encoding.DecodeString(s)
	if err != nil || len(raw) < headerSize+cryptox.MACSize {
		return Payload{}, nil, common.ErrInvalidToken
	}

	body := raw[:len(raw)-cryptox.MACSize]
	mac := raw[len(raw)-cryptox.MACSize:]
	if !cryptox.Verify(c.key, body, mac) {
		return Payload{}, nil, common.ErrInvalidToken
	}

	p, ok := unmarshal(body)
	if !ok {
		return Payload{}, nil, common.ErrInvalidToken
	}
	return p, raw, nil
}

func (c *Codec) seal(body []byte) []byte {
	return append(body, cryptox.Sign(c.key, body)...)
}

func marshal(p Payload) []byte {
	var flags byte
	size := headerSize
	if p.FileIndex != nil {
		flags |= flagFileIndex
		size += 4
	}
	if p.ExpiresAt != 0 {
		flags |= flagExpiry
		size += 8
	}

	b := make([]byte, 0, size+cryptox.MACSize)
	b = append(b, version, byte(p.Kind), flags)
	b = binary.BigEndian.AppendUint64(b, p.DocumentID)
	if p.FileIndex != nil {
		b = binary.BigEndian.AppendUint32(b, *p.FileIndex)
	}
	if p.ExpiresAt != 0 {
		b = binary.BigEndian.AppendUint64(b, uint64(p.ExpiresAt))
	}
	return b
}

func unmarshal(b []byte) (Payload, bool) {
	if len(b) < headerSize || b[0] != version {
		return Payload{}, false
	}
	kind, flags := Kind(b[1]), b[2]
	if !kind.Valid() || flags&^knownFlags != 0 {
		return Payload{}, false
	}

	want := headerSize
	if flags&flagFileIndex != 0 {
		want += 4
	}
	if flags&flagExpiry != 0 {
		want += 8
	}
	if len(b) != want {
		return Payload{}, false
	}

	p := Payload{Kind: kind, DocumentID: binary.BigEndian.Uint64(b[3:11])}
	rest := b[headerSize:]
	if flags&flagFileIndex != 0 {
		p.FileIndex = Index(binary.BigEndian.Uint32(rest[:4]))
		rest = rest[4:]
	}
	if flags&flagExpiry != 0 {
		p.ExpiresAt = int64(binary.BigEndian.Uint64(rest[:8]))
		// expiry flag with zero or negative time is not something Encode emits
		if p.ExpiresAt <= 0 {
			return Payload{}, false
		}
	}
	return p, true
}
