package synccore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestNewOperationBatchAggregatesFailures(t *testing.T) {
	d := MustNewDeviceId("device-1")
	vc := NewVectorClockWithDevice(d).IncrementFor(d)

	specs := []OperationSpec{
		{Device: d, Sequence: 1, Type: CreateStatement, TargetPath: "/document/a", Data: map[string]interface{}{"id": "s1", "content": "ok"}, VectorClock: vc},
		{Device: d, Sequence: -1, Type: CreateStatement, TargetPath: "/document/b", Data: map[string]interface{}{"id": "s2", "content": "bad seq"}, VectorClock: vc},
		{Device: d, Sequence: 2, Type: CreateStatement, TargetPath: "/document/c", Data: map[string]interface{}{"id": "s3"}, VectorClock: vc},
	}

	ops, err := NewOperationBatch(specs)
	require.Error(t, err)
	assert.Len(t, ops, 1)
	assert.Len(t, multierr.Errors(err), 2)
}

func TestNewOperationBatchAllSucceed(t *testing.T) {
	d := MustNewDeviceId("device-1")
	vc := NewVectorClockWithDevice(d).IncrementFor(d)
	specs := []OperationSpec{
		{Device: d, Sequence: 1, Type: CreateStatement, TargetPath: "/document/a", Data: map[string]interface{}{"id": "s1", "content": "ok"}, VectorClock: vc},
	}
	ops, err := NewOperationBatch(specs)
	require.NoError(t, err)
	assert.Len(t, ops, 1)
}

func TestNewDeletionOperationRejectsNonDeletionType(t *testing.T) {
	d := MustNewDeviceId("device-1")
	vc := NewVectorClockWithDevice(d).IncrementFor(d)
	_, err := NewDeletionOperation(d, 1, CreateStatement, "/document/a", vc, nil)
	require.Error(t, err)
}
