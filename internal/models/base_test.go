package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestULID_NewThenParseRoundTrip(t *testing.T) {
	id := NewULID()
	assert.False(t, id.IsZero())

	parsed, err := ParseULID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestULID_ParseInvalidString(t *testing.T) {
	_, err := ParseULID("not-a-ulid")
	assert.Error(t, err)
}

func TestULID_ZeroValueIsZero(t *testing.T) {
	var id ULID
	assert.True(t, id.IsZero())
}

func TestULID_ValueAndScanRoundTrip(t *testing.T) {
	id := NewULID()

	v, err := id.Value()
	require.NoError(t, err)
	require.IsType(t, "", v)

	var scanned ULID
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, id, scanned)
}

func TestULID_ValueOfZeroIsNil(t *testing.T) {
	var id ULID
	v, err := id.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestULID_ScanNilResetsToZero(t *testing.T) {
	id := NewULID()
	require.NoError(t, id.Scan(nil))
	assert.True(t, id.IsZero())
}

func TestULID_ScanBytes(t *testing.T) {
	id := NewULID()
	var scanned ULID
	require.NoError(t, scanned.Scan([]byte(id.String())))
	assert.Equal(t, id, scanned)
}

func TestULID_ScanUnsupportedType(t *testing.T) {
	var id ULID
	err := id.Scan(42)
	assert.Error(t, err)
}
