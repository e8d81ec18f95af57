package ginko

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeNonce(t *testing.T) {
	n, err := EncodeNonce("OpenFIGI:", "BBG000B9XRY4")
	require.NoError(t, err)

	assert.Equal(t, "OpenFIGI:BBG000B9XRY4", n.String())
	assert.Equal(t, byte(' '), n[NonceLen-1])
	assert.Len(t, n, NonceLen)
}

func TestEncodeNonceExactWidth(t *testing.T) {
	id := strings.Repeat("x", NonceLen-len("OpenFIGI:"))
	n, err := EncodeNonce("OpenFIGI:", id)
	require.NoError(t, err)
	assert.Equal(t, "OpenFIGI:"+id, n.String())
}

func TestEncodeNonceTooLong(t *testing.T) {
	_, err := EncodeNonce("OpenFIGI:", strings.Repeat("x", NonceLen))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestDecodeNonce(t *testing.T) {
	n, err := EncodeNonce("OpenFIGI:", "BBG000B9XRY4")
	require.NoError(t, err)

	id, err := DecodeNonce(n, "OpenFIGI:")
	require.NoError(t, err)
	assert.Equal(t, "BBG000B9XRY4", id)
}

func TestDecodeNonceWrongPrefix(t *testing.T) {
	n, err := EncodeNonce("OpenFIGI:", "BBG000B9XRY4")
	require.NoError(t, err)

	_, err = DecodeNonce(n, "ISIN:")
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestNonceFromBytes(t *testing.T) {
	original, err := EncodeNonce("OpenFIGI:", "BBG000B9XRY4")
	require.NoError(t, err)

	restored, err := NonceFromBytes(original[:])
	require.NoError(t, err)
	assert.Equal(t, original, restored)

	_, err = NonceFromBytes(original[:16])
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestNonceMarshalText(t *testing.T) {
	n, err := EncodeNonce("OpenFIGI:", "BBG000B9XRY4")
	require.NoError(t, err)

	text, err := n.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "OpenFIGI:BBG000B9XRY4", string(text))
}
