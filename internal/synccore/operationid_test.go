package synccore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOperationIdRejectsNegativeSequence(t *testing.T) {
	d := MustNewDeviceId("device-a")
	_, err := GenerateOperationId(d, -1)
	require.Error(t, err)
}

func TestGenerateOperationIdParsesBack(t *testing.T) {
	d := MustNewDeviceId("device-a")
	id, err := GenerateOperationId(d, 7)
	require.NoError(t, err)

	parsed := id.Parse()
	assert.Equal(t, d.ShortId(), parsed.DeviceShort)
	assert.Equal(t, int64(7), parsed.Sequence)
	assert.GreaterOrEqual(t, parsed.Wallclock, int64(0))
}

func TestGenerateOperationIdWithUUIDParsesBack(t *testing.T) {
	d := MustNewDeviceId("device-a")
	id, err := GenerateOperationIdWithUUID(d)
	require.NoError(t, err)

	parsed := id.Parse()
	assert.Equal(t, d.ShortId(), parsed.DeviceShort)
	assert.Equal(t, int64(-1), parsed.Sequence)
	assert.NotEmpty(t, parsed.UUID)
}

func TestCompareBySequencePrefersSequenceForm(t *testing.T) {
	d := MustNewDeviceId("device-a")
	first, _ := GenerateOperationId(d, 1)
	second, _ := GenerateOperationId(d, 2)
	assert.Equal(t, -1, CompareBySequence(first, second))
	assert.Equal(t, 1, CompareBySequence(second, first))
	assert.Equal(t, 0, CompareBySequence(first, first))
}

func TestCompareBySequenceFallsBackToLexicographic(t *testing.T) {
	d := MustNewDeviceId("device-a")
	uuidID, _ := GenerateOperationIdWithUUID(d)
	seqID, _ := GenerateOperationId(d, 1)

	got := CompareBySequence(uuidID, seqID)
	assert.Equal(t, strings.Compare(uuidID.String(), seqID.String()), got)
}

func TestParseOperationIdRejectsInvalidCharacters(t *testing.T) {
	_, err := ParseOperationId("op with spaces")
	require.Error(t, err)
}
