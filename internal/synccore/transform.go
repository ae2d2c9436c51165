package synccore

import "strings"

// TransformStrategy is the dispatch key §4.4 picks between when
// transforming one operation against a concurrent peer.
type TransformStrategy string

const (
	StrategyOperationalTransform TransformStrategy = "OPERATIONAL_TRANSFORM"
	StrategyPositionAdjustment  TransformStrategy = "POSITION_ADJUSTMENT"
	StrategyContentMerge        TransformStrategy = "CONTENT_MERGE"
	StrategyStructuralReorder   TransformStrategy = "STRUCTURAL_REORDER"
	StrategyLastWriterWins      TransformStrategy = "LAST_WRITER_WINS"
)

// SelectTransformStrategy picks a strategy for transforming self against
// other, per the decision order in §4.4.
func SelectTransformStrategy(self, other Operation) TransformStrategy {
	switch {
	case self.opType == UpdateTreePosition || other.opType == UpdateTreePosition:
		return StrategyPositionAdjustment
	case self.opType.IsSemantic() && other.opType.IsSemantic():
		return StrategyContentMerge
	case self.opType.IsStructural() && other.opType.IsStructural():
		return StrategyStructuralReorder
	case self.opType.CanCommuteWith(other.opType):
		return StrategyOperationalTransform
	default:
		return StrategyLastWriterWins
	}
}

// TransformWith rewrites self against a concurrent peer so that any
// commutative application order converges (§4.4).
func (o Operation) TransformWith(other Operation) (Operation, error) {
	switch SelectTransformStrategy(o, other) {
	case StrategyPositionAdjustment:
		return o.transformPositionAdjustment(other)
	case StrategyContentMerge:
		return o.transformContentMerge(other)
	case StrategyStructuralReorder:
		return o.transformStructuralReorder(other)
	case StrategyOperationalTransform:
		return o.transformOperationalTransform(other)
	default:
		return o.transformLastWriterWins(other)
	}
}

// makeSuccessor builds a successor operation carrying a freshly generated
// id (same device), the same vector clock and type, and payload enriched
// with the trace fields every successor carries per §4.4.
func (o Operation) makeSuccessor(payload OperationPayload, note string) (Operation, error) {
	newID, err := GenerateOperationIdWithUUID(o.deviceId)
	if err != nil {
		return Operation{}, err
	}
	enriched := payload.withExtraFields(map[string]interface{}{
		"transformationApplied": true,
		"transformationNote":    note,
		"originalOperationId":   o.id.String(),
	})
	parent := o.id
	return Operation{
		id:                newID,
		deviceId:          o.deviceId,
		opType:            o.opType,
		targetPath:        o.targetPath,
		payload:           enriched,
		vectorClock:       o.vectorClock,
		timestamp:         o.timestamp,
		parentOperationId: &parent,
	}, nil
}

// transformOperationalTransform: if self causally dominates other, self is
// returned unchanged; otherwise a successor carries the payload rewritten
// by a shallow content merge against other's payload.
func (o Operation) transformOperationalTransform(other Operation) (Operation, error) {
	if o.HasCausalDependencyOn(other) {
		return o, nil
	}
	merged := o.payload.ApplyContentMerge(other.payload)
	return o.makeSuccessor(merged, string(StrategyOperationalTransform))
}

// transformPositionAdjustment applies the POSITION_OFFSET payload
// transform (§4.3) only when o is itself an UPDATE_TREE_POSITION with a
// resolvable positional payload; otherwise o is returned unchanged.
func (o Operation) transformPositionAdjustment(other Operation) (Operation, error) {
	if o.opType != UpdateTreePosition {
		return o, nil
	}
	offset := o.payload.ApplyPositionOffset(other.payload)
	if offset.Equals(o.payload) {
		return o, nil
	}
	return o.makeSuccessor(offset, string(StrategyPositionAdjustment))
}

// transformContentMerge applies CONTENT_MERGE (§4.3) when both operands
// are semantic, tagging the result with mergedAt/mergeType trace fields.
func (o Operation) transformContentMerge(other Operation) (Operation, error) {
	if !(o.opType.IsSemantic() && other.opType.IsSemantic()) {
		return o, nil
	}
	merged := o.payload.ApplyContentMerge(other.payload).withExtraFields(map[string]interface{}{
		"mergedAt":  int64(o.timestamp),
		"mergeType": "AUTOMATIC_CONTENT_MERGE",
	})
	return o.makeSuccessor(merged, string(StrategyContentMerge))
}

// transformStructuralReorder annotates self when other is a creation whose
// targetPath is a prefix of self's; otherwise self is unchanged.
func (o Operation) transformStructuralReorder(other Operation) (Operation, error) {
	if !other.opType.IsCreation() || !strings.HasPrefix(o.targetPath, other.targetPath) {
		return o, nil
	}
	annotated := o.payload.withExtraFields(map[string]interface{}{
		"adjustedFor": other.id.String(),
		"adjustedAt":  int64(o.timestamp),
	})
	return o.makeSuccessor(annotated, string(StrategyStructuralReorder))
}

// transformLastWriterWins keeps self if its vector clock happens-after
// other's; otherwise self becomes a tagged no-op preserving its original
// payload.
func (o Operation) transformLastWriterWins(other Operation) (Operation, error) {
	if o.vectorClock.HappensAfter(other.vectorClock) {
		return o, nil
	}
	noOp := o.payload.withExtraFields(map[string]interface{}{
		"noOp":            true,
		"originalPayload": o.payload.Fields(),
	})
	return o.makeSuccessor(noOp, string(StrategyLastWriterWins))
}
