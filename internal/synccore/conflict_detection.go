package synccore

// ConflictDetectionService performs pairwise and sequence-wide conflict
// discovery and concurrent-group partitioning. It is stateless; all work
// is a pure function of its arguments.
type ConflictDetectionService struct{}

// NewConflictDetectionService constructs a ConflictDetectionService.
func NewConflictDetectionService() *ConflictDetectionService {
	return &ConflictDetectionService{}
}

// DetectBetween wraps Operation.DetectConflictWith, fabricating a conflict
// id of the form conflict-{a.id}-{b.id}. Returns (nil, nil) when a and b do
// not conflict.
func (s *ConflictDetectionService) DetectBetween(a, b Operation) (*Conflict, error) {
	ctype, ok := a.DetectConflictWith(b)
	if !ok {
		return nil, nil
	}
	id := "conflict-" + a.ID().String() + "-" + b.ID().String()
	conflict, err := NewConflict(id, ctype, a.TargetPath(), []Operation{a, b})
	if err != nil {
		return nil, err
	}
	return conflict, nil
}

// DetectInSequence evaluates every pair i<j in ops and returns every
// conflict found.
func (s *ConflictDetectionService) DetectInSequence(ops []Operation) ([]*Conflict, error) {
	var conflicts []*Conflict
	for i := 0; i < len(ops); i++ {
		for j := i + 1; j < len(ops); j++ {
			c, err := s.DetectBetween(ops[i], ops[j])
			if err != nil {
				return nil, err
			}
			if c != nil {
				conflicts = append(conflicts, c)
			}
		}
	}
	return conflicts, nil
}

// FindConcurrentGroups mirrors Operation's package-level grouping (§4.4).
func (s *ConflictDetectionService) FindConcurrentGroups(ops []Operation) [][]Operation {
	return FindConcurrentGroups(ops)
}

// conflictEligibleTypePairs is the conflict-eligible operation-type table
// from §4.5: deletion vs anything, update vs update, creation vs
// creation, update<->creation.
func conflictEligibleTypePairs(a, b OperationType) bool {
	switch {
	case a.IsDeletion() || b.IsDeletion():
		return true
	case a.IsUpdate() && b.IsUpdate():
		return true
	case a.IsCreation() && b.IsCreation():
		return true
	case (a.IsUpdate() && b.IsCreation()) || (a.IsCreation() && b.IsUpdate()):
		return true
	default:
		return false
	}
}

// CanOperationsConflict reports whether a and b could conflict: same
// targetPath, concurrent, and an eligible operation-type pairing.
func (s *ConflictDetectionService) CanOperationsConflict(a, b Operation) bool {
	if a.TargetPath() != b.TargetPath() {
		return false
	}
	if !a.IsConcurrentWith(b) {
		return false
	}
	return conflictEligibleTypePairs(a.Type(), b.Type())
}

func payloadCarriesContentOrText(p OperationPayload) bool {
	return p.HasField("content") || p.HasField("text")
}

// DetermineConflictType mirrors Operation.DetectConflictWith (§4.4) with an
// additional SEMANTIC_CONFLICT branch when both payloads carry an object
// key "content" or "text" — the cross-service severity path the Open
// Question (spec §9) calls out.
func (s *ConflictDetectionService) DetermineConflictType(a, b Operation) (ConflictType, bool) {
	if a.TargetPath() != b.TargetPath() {
		return "", false
	}
	if !a.IsConcurrentWith(b) {
		return "", false
	}
	if payloadCarriesContentOrText(a.Payload()) && payloadCarriesContentOrText(b.Payload()) {
		return SemanticConflict, true
	}
	switch {
	case a.Type().IsDeletion() || b.Type().IsDeletion():
		return DeletionConflict, true
	case a.Type().IsSemantic() || b.Type().IsSemantic():
		return SemanticConflict, true
	case a.Type().IsStructural() || b.Type().IsStructural():
		return StructuralConflict, true
	default:
		return ConcurrentModification, true
	}
}

// AnalyzeSeverity implements the §4.5 severity table.
func (s *ConflictDetectionService) AnalyzeSeverity(c *Conflict) ConflictSeverity {
	switch c.Type() {
	case DeletionConflict:
		return SeverityHigh
	case SemanticConflict:
		return SeverityCritical
	case StructuralConflict:
		if len(c.Operations()) > 2 {
			return SeverityHigh
		}
		return SeverityMedium
	case ConcurrentModification:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// EstimateComplexity implements the §4.5 complexity table.
func (s *ConflictDetectionService) EstimateComplexity(c *Conflict) ComplexityEstimate {
	severity := s.AnalyzeSeverity(c)
	if severity == SeverityCritical || severity == SeverityHigh {
		return ComplexityComplex
	}
	if c.Type() == SemanticConflict {
		return ComplexityComplex
	}
	if c.Type() == StructuralConflict {
		return ComplexityModerate
	}
	return ComplexitySimple
}

// CanAutoResolve implements the §4.5 auto-resolution eligibility table.
func (s *ConflictDetectionService) CanAutoResolve(c *Conflict) bool {
	if c.Type() == SemanticConflict {
		return false
	}
	complexity := s.EstimateComplexity(c)
	if complexity == ComplexitySimple {
		return true
	}
	if c.Type() == ConcurrentModification && complexity == ComplexityModerate {
		return true
	}
	return false
}
