package synccore

import (
	"sort"
	"strings"
)

// LogicalTimestamp is a deterministic scalar derived from an operation's
// vector clock. It provides a total tiebreaker for otherwise-concurrent
// operations; it never governs causal ordering on its own.
type LogicalTimestamp int64

func logicalTimestampFromClock(vc VectorClock) LogicalTimestamp {
	return LogicalTimestamp(vc.Sum())
}

// Operation is an immutable, typed, path-addressed mutation tagged with a
// vector clock. Equality is by id alone (spec §8 property 5): two
// operations with identical content but distinct ids are unequal.
type Operation struct {
	id                OperationId
	deviceId          DeviceId
	opType            OperationType
	targetPath        string
	payload           OperationPayload
	vectorClock       VectorClock
	timestamp         LogicalTimestamp
	parentOperationId *OperationId
}

// newOperation validates and constructs an Operation. It is unexported;
// callers go through the factory in factory.go, which is the one surface
// §6 names for building operations.
func newOperation(
	id OperationId,
	device DeviceId,
	opType OperationType,
	targetPath string,
	payload OperationPayload,
	vc VectorClock,
	parent *OperationId,
) (Operation, error) {
	if !opType.IsValid() {
		return Operation{}, newValidationError("operationType", "unknown operation type")
	}
	if strings.TrimSpace(targetPath) == "" {
		return Operation{}, newValidationError("targetPath", "must not be blank")
	}
	expectedKind := PayloadKindForOperationType(opType)
	if payload.Kind() != expectedKind {
		return Operation{}, newValidationError("payload.kind", "does not match operation type's expected payload kind")
	}
	if !vc.HasDevice(device) {
		return Operation{}, newValidationError("vectorClock", "must contain an entry for the operation's deviceId")
	}

	return Operation{
		id:                id,
		deviceId:          device,
		opType:            opType,
		targetPath:        targetPath,
		payload:           payload,
		vectorClock:       vc,
		timestamp:         logicalTimestampFromClock(vc),
		parentOperationId: parent,
	}, nil
}

func (o Operation) ID() OperationId             { return o.id }
func (o Operation) DeviceId() DeviceId          { return o.deviceId }
func (o Operation) Type() OperationType         { return o.opType }
func (o Operation) TargetPath() string          { return o.targetPath }
func (o Operation) Payload() OperationPayload   { return o.payload }
func (o Operation) VectorClock() VectorClock    { return o.vectorClock }
func (o Operation) Timestamp() LogicalTimestamp { return o.timestamp }

// ParentOperationId returns the operation's causal parent, if any.
func (o Operation) ParentOperationId() (OperationId, bool) {
	if o.parentOperationId == nil {
		return OperationId{}, false
	}
	return *o.parentOperationId, true
}

// Equals compares operations by id only.
func (o Operation) Equals(other Operation) bool { return o.id.Equals(other.id) }

// HasCausalDependencyOn reports whether o's vector clock causally follows
// other's.
func (o Operation) HasCausalDependencyOn(other Operation) bool {
	return o.vectorClock.HappensAfter(other.vectorClock)
}

// IsConcurrentWith reports whether o and other are causally unordered.
func (o Operation) IsConcurrentWith(other Operation) bool {
	return o.vectorClock.IsConcurrentWith(other.vectorClock)
}

// CanCommuteWith reports whether o and other may apply in either order and
// converge (§4.4): true whenever they target different paths, or when both
// are structural and their types commute (§4.2).
func (o Operation) CanCommuteWith(other Operation) bool {
	if o.targetPath != other.targetPath {
		return true
	}
	return o.opType.IsStructural() && other.opType.IsStructural() && o.opType.CanCommuteWith(other.opType)
}

// CanTransformWith reports whether o and other are eligible for
// operational transformation (§4.4): neither may causally depend on the
// other, they must share a targetPath, and their operation types must be
// compatible (not a creation/deletion pair, not two semantic STATEMENT
// ops).
func (o Operation) CanTransformWith(other Operation) bool {
	if o.HasCausalDependencyOn(other) || other.HasCausalDependencyOn(o) {
		return false
	}
	if o.targetPath != other.targetPath {
		return false
	}
	if (o.opType.IsCreation() && other.opType.IsDeletion()) || (o.opType.IsDeletion() && other.opType.IsCreation()) {
		return false
	}
	if o.opType.Target() == TargetStatement && other.opType.Target() == TargetStatement &&
		o.opType.IsSemantic() && other.opType.IsSemantic() {
		return false
	}
	return true
}

// ApplyTo applies o to a path-keyed state snapshot, returning a new state
// value; state is never mutated in place. Deletion and update require the
// path to exist; creation requires it to be absent.
func (o Operation) ApplyTo(state map[string]OperationPayload) (map[string]OperationPayload, error) {
	_, exists := state[o.targetPath]

	switch o.opType.Verb() {
	case VerbCreate:
		if exists {
			return nil, NewInvariantError("apply", "cannot create an already-existing path")
		}
	case VerbUpdate:
		if !exists {
			return nil, NewInvariantError("apply", "cannot update a path that does not exist")
		}
	case VerbDelete:
		if !exists {
			return nil, NewInvariantError("apply", "cannot delete a path that does not exist")
		}
	default:
		return nil, newValidationError("operationType", "unsupported operation type for apply")
	}

	next := make(map[string]OperationPayload, len(state)+1)
	for k, v := range state {
		next[k] = v
	}
	if o.opType.Verb() == VerbDelete {
		delete(next, o.targetPath)
	} else {
		next[o.targetPath] = o.payload
	}
	return next, nil
}

// DetectConflictWith classifies the conflict between o and other per
// §4.4: different targetPath or non-concurrent clocks mean no conflict.
func (o Operation) DetectConflictWith(other Operation) (ConflictType, bool) {
	if o.targetPath != other.targetPath {
		return "", false
	}
	if !o.IsConcurrentWith(other) {
		return "", false
	}
	switch {
	case o.opType.IsDeletion() || other.opType.IsDeletion():
		return DeletionConflict, true
	case o.opType.IsSemantic() || other.opType.IsSemantic():
		return SemanticConflict, true
	case o.opType.IsStructural() || other.opType.IsStructural():
		return StructuralConflict, true
	default:
		return ConcurrentModification, true
	}
}

// TransformAgainst folds o through transformation against each concurrent
// peer in ops, in order, replacing o with each successor in turn.
func (o Operation) TransformAgainst(ops []Operation) (Operation, error) {
	current := o
	for _, other := range ops {
		if !current.IsConcurrentWith(other) {
			continue
		}
		next, err := current.TransformWith(other)
		if err != nil {
			return Operation{}, err
		}
		current = next
	}
	return current, nil
}

// TransformOperationSequence topologically orders ops by causal dependency
// (ties broken by logical timestamp) and transforms each against every
// previously placed, concurrent operation.
func TransformOperationSequence(ops []Operation) ([]Operation, error) {
	ordered := topologicalSort(ops)
	placed := make([]Operation, 0, len(ordered))
	result := make([]Operation, 0, len(ordered))
	for _, op := range ordered {
		transformed, err := op.TransformAgainst(placed)
		if err != nil {
			return nil, err
		}
		result = append(result, transformed)
		placed = append(placed, transformed)
	}
	return result, nil
}

func topologicalSort(ops []Operation) []Operation {
	sorted := make([]Operation, len(ops))
	copy(sorted, ops)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.vectorClock.HappensBefore(b.vectorClock) {
			return true
		}
		if b.vectorClock.HappensBefore(a.vectorClock) {
			return false
		}
		return a.timestamp < b.timestamp
	})
	return sorted
}

// FindConcurrentGroups partitions ops into groups of mutually concurrent
// operations (size >= 2) in a single pass: for each unprocessed operation,
// every other unprocessed operation pairwise concurrent with it joins its
// group.
func FindConcurrentGroups(ops []Operation) [][]Operation {
	processed := make([]bool, len(ops))
	var groups [][]Operation

	for i := range ops {
		if processed[i] {
			continue
		}
		group := []Operation{ops[i]}
		members := []int{i}
		for j := i + 1; j < len(ops); j++ {
			if processed[j] {
				continue
			}
			if ops[i].IsConcurrentWith(ops[j]) {
				group = append(group, ops[j])
				members = append(members, j)
			}
		}
		if len(group) >= 2 {
			for _, idx := range members {
				processed[idx] = true
			}
			groups = append(groups, group)
		} else {
			processed[i] = true
		}
	}
	return groups
}

// EstimateSequenceComplexity applies the heuristic from §4.4: at most two
// operations is SIMPLE, more than twenty is INTRACTABLE, and otherwise
// MODERATE, bumped to COMPLEX when more than five operations are semantic
// or there are more than three concurrent groups.
func EstimateSequenceComplexity(ops []Operation) ComplexityEstimate {
	n := len(ops)
	if n <= 2 {
		return ComplexitySimple
	}
	if n > 20 {
		return ComplexityIntractable
	}

	semanticCount := 0
	for _, op := range ops {
		if op.opType.IsSemantic() {
			semanticCount++
		}
	}
	groups := FindConcurrentGroups(ops)

	if semanticCount > 5 || len(groups) > 3 {
		return ComplexityComplex
	}
	return ComplexityModerate
}
