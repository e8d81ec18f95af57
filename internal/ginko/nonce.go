package ginko

import (
	"bytes"
	"fmt"
	"strings"
)

// NonceLen is the fixed width of an on-chain asset identity.
const NonceLen = 32

// nonceFiller right-pads encoded identifiers to NonceLen bytes.
const nonceFiller = byte(' ')

// Nonce is the canonical 32-byte identity of an asset: a namespaced external
// identifier ("<prefix><id>") right-padded with spaces. It doubles as a PDA
// derivation seed, so two assets collide only if their padded strings do.
type Nonce [NonceLen]byte

// EncodeNonce packs prefix+id into a Nonce. The concatenation must fit in
// NonceLen bytes; anything longer is a caller bug, not something to truncate
// silently.
func EncodeNonce(prefix, id string) (Nonce, error) {
	var n Nonce
	if len(prefix)+len(id) > NonceLen {
		return n, fmt.Errorf("%w: nonce %q exceeds %d bytes", ErrEncoding, prefix+id, NonceLen)
	}
	copy(n[:], prefix)
	copy(n[len(prefix):], id)
	for i := len(prefix) + len(id); i < NonceLen; i++ {
		n[i] = nonceFiller
	}
	return n, nil
}

// DecodeNonce strips the trailing filler and the expected prefix, returning
// the embedded external identifier.
func DecodeNonce(n Nonce, prefix string) (string, error) {
	s := string(bytes.TrimRight(n[:], string(nonceFiller)))
	if !strings.HasPrefix(s, prefix) {
		return "", fmt.Errorf("%w: nonce %q does not start with prefix %q", ErrEncoding, s, prefix)
	}
	return strings.TrimPrefix(s, prefix), nil
}

// NonceFromBytes copies a raw 32-byte slice into a Nonce.
func NonceFromBytes(raw []byte) (Nonce, error) {
	var n Nonce
	if len(raw) != NonceLen {
		return n, fmt.Errorf("%w: nonce must be %d bytes, got %d", ErrEncoding, NonceLen, len(raw))
	}
	copy(n[:], raw)
	return n, nil
}

func (n Nonce) String() string {
	return string(bytes.TrimRight(n[:], string(nonceFiller)))
}

// MarshalText renders the nonce as its trimmed string form in JSON output.
func (n Nonce) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}
