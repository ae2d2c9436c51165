package synccore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoConcurrentStatementOps(t *testing.T) (Operation, Operation) {
	t.Helper()
	d1 := MustNewDeviceId("device-1")
	d2 := MustNewDeviceId("device-2")
	vc1 := NewVectorClockWithDevice(d1).IncrementFor(d1)
	vc2 := NewVectorClockWithDevice(d2).IncrementFor(d2)
	a, err := NewStatementOperation(d1, 1, VerbUpdate, "/document/title", "s1", "A", vc1, nil)
	require.NoError(t, err)
	b, err := NewStatementOperation(d2, 1, VerbUpdate, "/document/title", "s1", "B", vc2, nil)
	require.NoError(t, err)
	return a, b
}

func TestNewConflictRejectsTooFewOperations(t *testing.T) {
	a, _ := twoConcurrentStatementOps(t)
	_, err := NewConflict("c1", SemanticConflict, "/document/title", []Operation{a})
	require.Error(t, err)
}

func TestNewConflictRejectsMismatchedTargetPath(t *testing.T) {
	a, b := twoConcurrentStatementOps(t)
	_, err := NewConflict("c1", SemanticConflict, "/document/other", []Operation{a, b})
	require.Error(t, err)
}

func TestConflictResolveWithRejectsUnknownStrategyAndDoubleResolution(t *testing.T) {
	a, b := twoConcurrentStatementOps(t)
	c, err := NewConflict("c1", SemanticConflict, "/document/title", []Operation{a, b})
	require.NoError(t, err)

	err = c.ResolveWith(ResolutionStrategy("NOT_A_STRATEGY"), nil)
	require.Error(t, err)
	assert.False(t, c.IsResolved())

	err = c.ResolveWith(LastWriterWins, map[string]interface{}{"winner": a.ID().String()})
	require.NoError(t, err)
	assert.True(t, c.IsResolved())

	err = c.ResolveWith(LastWriterWins, nil)
	require.Error(t, err)
}

func TestConflictSeverityFormula(t *testing.T) {
	a, b := twoConcurrentStatementOps(t)
	semantic, err := NewConflict("c1", SemanticConflict, "/document/title", []Operation{a, b})
	require.NoError(t, err)
	assert.Equal(t, SeverityHigh, semantic.Severity())

	structural, err := NewConflict("c2", StructuralConflict, "/document/title", []Operation{a, b})
	require.NoError(t, err)
	assert.Equal(t, SeverityLow, structural.Severity())
}

func TestConflictCanBeAutomaticallyResolvedAndRequiresUserDecision(t *testing.T) {
	a, b := twoConcurrentStatementOps(t)

	structural, _ := NewConflict("c1", StructuralConflict, "/document/title", []Operation{a, b})
	assert.True(t, structural.CanBeAutomaticallyResolved())
	assert.False(t, structural.RequiresUserDecision())

	semantic, _ := NewConflict("c2", SemanticConflict, "/document/title", []Operation{a, b})
	assert.False(t, semantic.CanBeAutomaticallyResolved())
	assert.True(t, semantic.RequiresUserDecision())
}

func TestConflictInvolvedDevicesDeduplicatesAndSorts(t *testing.T) {
	a, b := twoConcurrentStatementOps(t)
	c, _ := NewConflict("c1", SemanticConflict, "/document/title", []Operation{a, b, a})
	devices := c.InvolvedDevices()
	require.Len(t, devices, 2)
	assert.Equal(t, "device-1", devices[0].String())
	assert.Equal(t, "device-2", devices[1].String())
}

func TestConflictLatestOperationPicksDominator(t *testing.T) {
	d := MustNewDeviceId("device-1")
	vc1 := NewVectorClockWithDevice(d).IncrementFor(d)
	vc2 := vc1.IncrementFor(d)

	older, _ := NewStatementOperation(d, 1, VerbUpdate, "/document/title", "s1", "A", vc1, nil)
	newer, _ := NewStatementOperation(d, 2, VerbUpdate, "/document/title", "s1", "B", vc2, nil)

	c, _ := NewConflict("c1", ConcurrentModification, "/document/title", []Operation{older, newer})
	assert.True(t, c.LatestOperation().Equals(newer))
}

func TestNewConflictResolutionRequiresSelectionForManualStrategy(t *testing.T) {
	resolvedBy := MustNewDeviceId("device-1")
	_, err := NewConflictResolution(UserDecisionRequired, resolvedBy, "manual pick", nil, nil, 2, SemanticConflict)
	require.Error(t, err)

	selection := "op_abc123_1"
	res, err := NewConflictResolution(UserDecisionRequired, resolvedBy, "manual pick", nil, &selection, 2, SemanticConflict)
	require.NoError(t, err)
	assert.True(t, res.RequiresUserValidation())
}

func TestConflictResolutionConfidenceDerivation(t *testing.T) {
	resolvedBy := MustNewDeviceId("device-1")

	low, err := NewConflictResolution(LastWriterWins, resolvedBy, "", nil, nil, 6, StructuralConflict)
	require.NoError(t, err)
	assert.Equal(t, ConfidenceLow, low.Confidence())

	high, err := NewConflictResolution(LastWriterWins, resolvedBy, "", map[string]interface{}{"winner": "op1"}, nil, 2, StructuralConflict)
	require.NoError(t, err)
	assert.Equal(t, ConfidenceHigh, high.Confidence())
}
