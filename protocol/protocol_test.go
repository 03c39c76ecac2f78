package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeVersionEmptyIsDefault(t *testing.T) {
	assert.Equal(t, Default, NormalizeVersion(""))
	assert.Equal(t, Default, NormalizeVersion("   "))
}

func TestNormalizeVersionSingleValue(t *testing.T) {
	assert.Equal(t, V10, NormalizeVersion("1.0"))
	assert.Equal(t, V11, NormalizeVersion("1.1"))
}

func TestNormalizeVersionTakesMaxOfList(t *testing.T) {
	assert.Equal(t, V12, NormalizeVersion("1.0,1.1,1.2"))
}

func TestNormalizeVersionIsOrderIndependent(t *testing.T) {
	// Version-monotonicity law: normalizing any permutation of the same
	// offered list must produce the same result.
	permutations := []string{
		"1.0,1.1,1.2",
		"1.2,1.1,1.0",
		"1.1,1.2,1.0",
	}
	for _, p := range permutations {
		assert.Equal(t, V12, NormalizeVersion(p))
	}
}

func TestNormalizeVersionSkipsUnparsableEntries(t *testing.T) {
	assert.Equal(t, V11, NormalizeVersion("1.1,bogus"))
	assert.Equal(t, Default, NormalizeVersion("bogus,nonsense"))
}

func TestValidCommandTable(t *testing.T) {
	assert.True(t, ValidCommand("CONNECT", V10))
	assert.True(t, ValidCommand("ACK", V10))
	assert.False(t, ValidCommand("NACK", V10))
	assert.False(t, ValidCommand("STOMP", V10))

	assert.True(t, ValidCommand("NACK", V11))
	assert.True(t, ValidCommand("STOMP", V11))
	assert.True(t, ValidCommand("NACK", V12))

	assert.False(t, ValidCommand("BOGUS", V12))
}

func TestAckHeaderByVersion(t *testing.T) {
	assert.Equal(t, "message-id", AckHeader(V10))
	assert.Equal(t, "message-id", AckHeader(V11))
	assert.Equal(t, "ack", AckHeader(V12))
}

func TestValidHeaderName(t *testing.T) {
	assert.True(t, ValidHeaderName("content-length"))
	assert.True(t, ValidHeaderName("X-Custom-9"))
	assert.False(t, ValidHeaderName(""))
	assert.False(t, ValidHeaderName("bad header"))
	assert.False(t, ValidHeaderName("bad:header"))
}

func TestFormatHeaderContentLength(t *testing.T) {
	v, err := FormatHeader("content-length", "42")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), v)

	_, err = FormatHeader("content-length", "not-a-number")
	assert.Error(t, err)

	_, err = FormatHeader("content-length", "-1")
	assert.Error(t, err)
}

func TestFormatHeaderVersion(t *testing.T) {
	v, err := FormatHeader("version", "1.2")
	assert.NoError(t, err)
	assert.Equal(t, V12, v)
}

func TestFormatHeaderPassesThroughUnknownNames(t *testing.T) {
	v, err := FormatHeader("destination", "/queue/a")
	assert.NoError(t, err)
	assert.Equal(t, "/queue/a", v)
}
