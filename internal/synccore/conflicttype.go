package synccore

// ConflictType is the closed enumeration of conflict categories the
// detector can report.
type ConflictType string

const (
	DeletionConflict       ConflictType = "DELETION_CONFLICT"
	SemanticConflict       ConflictType = "SEMANTIC_CONFLICT"
	StructuralConflict     ConflictType = "STRUCTURAL_CONFLICT"
	ConcurrentModification ConflictType = "CONCURRENT_MODIFICATION"
)

// IsSemantic reports whether this conflict type is classified as semantic
// for cross-service severity purposes. Per the resolved Open Question
// (spec §9 / DESIGN.md), both SEMANTIC_CONFLICT and CONCURRENT_MODIFICATION
// report true here. Neither Operation.DetectConflictWith (§4.4) nor
// ConflictDetectionService.DetermineConflictType (§4.5) emits
// CONCURRENT_MODIFICATION for valid operation types: their residual branch
// is reached only by operands that are neither structural nor semantic, and
// every valid type is one or the other. A Conflict carries that type only
// when a caller constructs it with it directly.
func (c ConflictType) IsSemantic() bool {
	return c == SemanticConflict || c == ConcurrentModification
}

// ConflictSeverity ranks how disruptive a conflict is to resolve.
type ConflictSeverity string

const (
	SeverityLow      ConflictSeverity = "LOW"
	SeverityMedium   ConflictSeverity = "MEDIUM"
	SeverityHigh     ConflictSeverity = "HIGH"
	SeverityCritical ConflictSeverity = "CRITICAL"
)

// ComplexityEstimate ranks how hard a transformation or conflict is to
// resolve automatically.
type ComplexityEstimate string

const (
	ComplexitySimple      ComplexityEstimate = "SIMPLE"
	ComplexityModerate    ComplexityEstimate = "MODERATE"
	ComplexityComplex     ComplexityEstimate = "COMPLEX"
	ComplexityIntractable ComplexityEstimate = "INTRACTABLE"
)

// TransformPriority ranks how urgently a sequence transformation should be
// scheduled relative to others.
type TransformPriority string

const (
	PriorityHigh   TransformPriority = "HIGH"
	PriorityMedium TransformPriority = "MEDIUM"
)

// ResolutionStrategy is the closed set of automatic and manual strategies
// a ConflictResolution may record.
type ResolutionStrategy string

const (
	LastWriterWins         ResolutionStrategy = "LAST_WRITER_WINS"
	FirstWriterWins        ResolutionStrategy = "FIRST_WRITER_WINS"
	MergeOperations        ResolutionStrategy = "MERGE_OPERATIONS"
	OperationalTransform   ResolutionStrategy = "OPERATIONAL_TRANSFORM"
	ThreeWayMerge          ResolutionStrategy = "THREE_WAY_MERGE"
	UserDecisionRequired   ResolutionStrategy = "USER_DECISION_REQUIRED"
	ManualSelection        ResolutionStrategy = "MANUAL_SELECTION"
)

var automaticStrategies = map[ResolutionStrategy]bool{
	LastWriterWins:       true,
	FirstWriterWins:      true,
	MergeOperations:      true,
	OperationalTransform: true,
	ThreeWayMerge:        true,
}

var manualStrategies = map[ResolutionStrategy]bool{
	UserDecisionRequired: true,
	ManualSelection:      true,
}

// IsAutomatic reports whether s is one of the automatic resolution
// strategies.
func (s ResolutionStrategy) IsAutomatic() bool { return automaticStrategies[s] }

// IsManual reports whether s is one of the manual resolution strategies.
func (s ResolutionStrategy) IsManual() bool { return manualStrategies[s] }

// IsKnown reports whether s is a member of the closed strategy set.
func (s ResolutionStrategy) IsKnown() bool { return s.IsAutomatic() || s.IsManual() }

// ResolutionConfidence ranks how trustworthy an automatic resolution is.
type ResolutionConfidence string

const (
	ConfidenceHigh   ResolutionConfidence = "HIGH"
	ConfidenceMedium ResolutionConfidence = "MEDIUM"
	ConfidenceLow    ResolutionConfidence = "LOW"
)
