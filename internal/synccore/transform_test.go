package synccore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectTransformStrategyDispatchOrder(t *testing.T) {
	d1 := MustNewDeviceId("device-1")
	d2 := MustNewDeviceId("device-2")
	vc1 := NewVectorClockWithDevice(d1).IncrementFor(d1)
	vc2 := NewVectorClockWithDevice(d2).IncrementFor(d2)

	pos1, _ := NewTreePositionOperation(d1, 1, "/tree/1", 1, 2, vc1, nil)
	pos2, _ := NewTreePositionOperation(d2, 1, "/tree/1", 3, 4, vc2, nil)
	assert.Equal(t, StrategyPositionAdjustment, SelectTransformStrategy(pos1, pos2))

	stmt1, _ := NewStatementOperation(d1, 1, VerbUpdate, "/doc/1", "s1", "a", vc1, nil)
	stmt2, _ := NewStatementOperation(d2, 1, VerbUpdate, "/doc/1", "s1", "b", vc2, nil)
	assert.Equal(t, StrategyContentMerge, SelectTransformStrategy(stmt1, stmt2))

	arg1, _ := NewArgumentOperation(d1, 1, VerbCreate, "/tree/1/arg1", "arg1", []interface{}{}, []interface{}{}, vc1, nil)
	conn2, _ := NewConnectionOperation(d2, 1, VerbCreate, "/tree/1/arg1", "a", "b", "supports", vc2, nil)
	assert.Equal(t, StrategyStructuralReorder, SelectTransformStrategy(arg1, conn2))

	delConn, _ := NewDeletionOperation(d1, 1, DeleteConnection, "/tree/1/conn", vc1, nil)
	assert.Equal(t, StrategyLastWriterWins, SelectTransformStrategy(delConn, stmt2))
}

func TestTransformOperationalTransformKeepsDominatingSelf(t *testing.T) {
	d1 := MustNewDeviceId("device-1")
	vc1 := NewVectorClockWithDevice(d1).IncrementFor(d1)
	vc2 := vc1.IncrementFor(d1)

	arg, _ := NewArgumentOperation(d1, 2, VerbCreate, "/tree/1/arg1", "arg1", []interface{}{}, []interface{}{}, vc2, nil)
	stmt, _ := NewStatementOperation(d1, 1, VerbUpdate, "/tree/1/arg1", "s1", "hi", vc1, nil)

	require.Equal(t, StrategyOperationalTransform, SelectTransformStrategy(arg, stmt))

	result, err := arg.TransformWith(stmt)
	require.NoError(t, err)
	assert.True(t, result.Equals(arg))
}

func TestTransformLastWriterWinsProducesNoOpWhenNotDominating(t *testing.T) {
	d1 := MustNewDeviceId("device-1")
	d2 := MustNewDeviceId("device-2")
	vc1 := NewVectorClockWithDevice(d1).IncrementFor(d1)
	vc2 := NewVectorClockWithDevice(d2).IncrementFor(d2)

	delConn, _ := NewDeletionOperation(d1, 1, DeleteConnection, "/tree/1/conn", vc1, nil)
	stmtB, _ := NewStatementOperation(d2, 1, VerbUpdate, "/tree/1/conn", "s1", "hi", vc2, nil)

	require.Equal(t, StrategyLastWriterWins, SelectTransformStrategy(delConn, stmtB))

	result, err := delConn.TransformWith(stmtB)
	require.NoError(t, err)
	assert.False(t, result.Equals(delConn))
	noOp, ok := result.Payload().GetField("noOp")
	require.True(t, ok)
	assert.Equal(t, true, noOp)
}

func TestTransformPositionAdjustmentSkipsWhenSelfIsNotPositionType(t *testing.T) {
	d1 := MustNewDeviceId("device-1")
	d2 := MustNewDeviceId("device-2")
	vc1 := NewVectorClockWithDevice(d1).IncrementFor(d1)
	vc2 := NewVectorClockWithDevice(d2).IncrementFor(d2)

	other, _ := NewTreePositionOperation(d2, 1, "/tree/1", 10, 20, vc2, nil)
	stmt, _ := NewStatementOperation(d1, 1, VerbUpdate, "/tree/1", "s1", "hi", vc1, nil)

	result, err := stmt.transformPositionAdjustment(other)
	require.NoError(t, err)
	assert.True(t, result.Equals(stmt))
}

func TestMakeSuccessorCarriesTraceFields(t *testing.T) {
	d1 := MustNewDeviceId("device-1")
	vc1 := NewVectorClockWithDevice(d1).IncrementFor(d1)
	op, _ := NewStatementOperation(d1, 1, VerbUpdate, "/doc/1", "s1", "a", vc1, nil)

	successor, err := op.makeSuccessor(op.Payload(), "TEST_NOTE")
	require.NoError(t, err)
	assert.False(t, successor.Equals(op))
	note, _ := successor.Payload().GetField("transformationNote")
	assert.Equal(t, "TEST_NOTE", note)
	original, _ := successor.Payload().GetField("originalOperationId")
	assert.Equal(t, op.ID().String(), original)
	parent, ok := successor.ParentOperationId()
	require.True(t, ok)
	assert.True(t, parent.Equals(op.ID()))
}
