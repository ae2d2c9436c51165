package synccore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationTypeStructuralSemanticPartition(t *testing.T) {
	for ot := range allOperationTypes {
		assert.True(t, ot.IsStructural() != ot.IsSemantic(), "type %s must be structural XOR semantic", ot)
	}
}

func TestOperationTypeVerbClassification(t *testing.T) {
	for ot := range allOperationTypes {
		verbs := 0
		if ot.IsCreation() {
			verbs++
		}
		if ot.IsUpdate() {
			verbs++
		}
		if ot.IsDeletion() {
			verbs++
		}
		assert.Equal(t, 1, verbs, "type %s must classify to exactly one verb", ot)
	}
}

func TestOperationTypeCanCommuteWithIsSymmetric(t *testing.T) {
	for a := range allOperationTypes {
		for b := range allOperationTypes {
			assert.Equal(t, a.CanCommuteWith(b), b.CanCommuteWith(a), "commute(%s,%s) must equal commute(%s,%s)", a, b, b, a)
		}
	}
}

func TestOperationTypeSameTypeCommutesOnlyForPositionAndMetadata(t *testing.T) {
	assert.True(t, UpdateTreePosition.CanCommuteWith(UpdateTreePosition))
	assert.True(t, UpdateMetadata.CanCommuteWith(UpdateMetadata))
	assert.False(t, CreateStatement.CanCommuteWith(CreateStatement))
	assert.False(t, DeleteArgument.CanCommuteWith(DeleteArgument))
}

func TestOperationTypeNonCommutingStructuralPairs(t *testing.T) {
	pairs := [][2]OperationType{
		{CreateArgument, DeleteArgument},
		{CreateTree, DeleteTree},
		{CreateConnection, DeleteConnection},
		{DeleteArgument, CreateConnection},
		{DeleteTree, CreateArgument},
	}
	for _, p := range pairs {
		assert.False(t, p[0].CanCommuteWith(p[1]))
		assert.False(t, p[1].CanCommuteWith(p[0]))
	}
}

func TestOperationTypeBothSemanticNeverCommute(t *testing.T) {
	assert.False(t, UpdateStatement.CanCommuteWith(UpdateArgument))
	assert.False(t, CreateStatement.CanCommuteWith(DeleteStatement))
}

func TestOperationTypeStructuralVsSemanticDeletionNeverCommutes(t *testing.T) {
	assert.False(t, DeleteTree.CanCommuteWith(UpdateStatement))
	assert.False(t, DeleteConnection.CanCommuteWith(UpdateArgument))
}

func TestOperationTypeStructuralVsSemanticOtherwiseCommutes(t *testing.T) {
	assert.True(t, CreateTree.CanCommuteWith(UpdateStatement))
}

func TestOperationTypeTargetAndCategory(t *testing.T) {
	assert.Equal(t, TargetStatement, CreateStatement.Target())
	assert.Equal(t, CategoryStructural, CreateArgument.Category())
	assert.Equal(t, CategorySemantic, UpdateStatement.Category())
}

func TestOperationTypeUnknownValueYieldsVerbUnknown(t *testing.T) {
	unknown := OperationType("NOT_A_REAL_TYPE")
	assert.False(t, unknown.IsValid())
	assert.Equal(t, VerbUnknown, unknown.Verb())
	assert.False(t, unknown.IsStructural())
	assert.False(t, unknown.IsSemantic())
}
