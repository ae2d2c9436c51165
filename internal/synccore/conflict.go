package synccore

import (
	"sort"
	"strings"
	"time"
)

// ResolutionOption is one candidate resolution strategy offered for a
// Conflict, tagged with whether it can be applied automatically.
type ResolutionOption struct {
	Strategy  ResolutionStrategy
	Automatic bool
}

// Conflict represents two or more concurrent operations competing over the
// same targetPath. Its lifecycle is open -> resolved, exactly once.
type Conflict struct {
	id                string
	conflictType      ConflictType
	targetPath        string
	operations        []Operation
	detectedAt        time.Time
	resolutionOptions []ResolutionOption

	resolvedAt *time.Time
	strategy   *ResolutionStrategy
	result     map[string]interface{}
}

func resolutionOptionsFor(ctype ConflictType) []ResolutionOption {
	switch ctype {
	case StructuralConflict:
		return []ResolutionOption{
			{Strategy: MergeOperations, Automatic: true},
			{Strategy: LastWriterWins, Automatic: true},
		}
	case SemanticConflict:
		return []ResolutionOption{
			{Strategy: UserDecisionRequired, Automatic: false},
			{Strategy: LastWriterWins, Automatic: false},
		}
	case ConcurrentModification:
		return []ResolutionOption{
			{Strategy: LastWriterWins, Automatic: true},
			{Strategy: UserDecisionRequired, Automatic: false},
		}
	case DeletionConflict:
		// Not enumerated explicitly in spec §4.7. Deletion conflicts are
		// offered the same shape as
		// CONCURRENT_MODIFICATION (an automatic fallback plus a manual
		// escalation path) given their HIGH severity.
		return []ResolutionOption{
			{Strategy: LastWriterWins, Automatic: true},
			{Strategy: UserDecisionRequired, Automatic: false},
		}
	default:
		return nil
	}
}

// NewConflict validates and constructs a Conflict. id and targetPath must
// be non-blank, ops must contain at least two operations, and every
// operation must target the same path.
func NewConflict(id string, ctype ConflictType, targetPath string, ops []Operation) (*Conflict, error) {
	if strings.TrimSpace(id) == "" {
		return nil, newValidationError("conflict.id", "must not be blank")
	}
	if strings.TrimSpace(targetPath) == "" {
		return nil, newValidationError("conflict.targetPath", "must not be blank")
	}
	if len(ops) < 2 {
		return nil, newValidationError("conflict.operations", "must contain at least two operations")
	}
	for _, op := range ops {
		if op.TargetPath() != targetPath {
			return nil, newValidationError("conflict.operations", "all operations must share the conflict's targetPath")
		}
	}

	opsCopy := make([]Operation, len(ops))
	copy(opsCopy, ops)

	return &Conflict{
		id:                id,
		conflictType:      ctype,
		targetPath:        targetPath,
		operations:        opsCopy,
		detectedAt:        time.Now().UTC(),
		resolutionOptions: resolutionOptionsFor(ctype),
	}, nil
}

func (c *Conflict) ID() string                { return c.id }
func (c *Conflict) Type() ConflictType        { return c.conflictType }
func (c *Conflict) TargetPath() string        { return c.targetPath }
func (c *Conflict) DetectedAt() time.Time     { return c.detectedAt }

// Operations returns a defensive copy of the conflicting operations.
func (c *Conflict) Operations() []Operation {
	out := make([]Operation, len(c.operations))
	copy(out, c.operations)
	return out
}

// ResolutionOptions returns a defensive copy of the candidate strategies
// generated at creation time.
func (c *Conflict) ResolutionOptions() []ResolutionOption {
	out := make([]ResolutionOption, len(c.resolutionOptions))
	copy(out, c.resolutionOptions)
	return out
}

// IsResolved reports whether ResolveWith has already succeeded.
func (c *Conflict) IsResolved() bool { return c.resolvedAt != nil }

// ResolvedAt returns the resolution time and whether the conflict has been
// resolved.
func (c *Conflict) ResolvedAt() (time.Time, bool) {
	if c.resolvedAt == nil {
		return time.Time{}, false
	}
	return *c.resolvedAt, true
}

// ResolutionStrategyUsed returns the strategy the conflict was resolved
// with, if any.
func (c *Conflict) ResolutionStrategyUsed() (ResolutionStrategy, bool) {
	if c.strategy == nil {
		return "", false
	}
	return *c.strategy, true
}

// Result returns the resolution's result data, if resolved.
func (c *Conflict) Result() (map[string]interface{}, bool) {
	if c.resolvedAt == nil {
		return nil, false
	}
	out := make(map[string]interface{}, len(c.result))
	for k, v := range c.result {
		out[k] = v
	}
	return out, true
}

// InvolvedDevices returns the deduplicated, sorted set of device ids among
// the conflicting operations.
func (c *Conflict) InvolvedDevices() []DeviceId {
	seen := make(map[string]DeviceId)
	for _, op := range c.operations {
		seen[op.DeviceId().String()] = op.DeviceId()
	}
	out := make([]DeviceId, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// ResolveWith records a resolution exactly once. It rejects unknown
// strategies and a second call on an already-resolved conflict.
func (c *Conflict) ResolveWith(strategy ResolutionStrategy, result map[string]interface{}) error {
	if !strategy.IsKnown() {
		return newStateError("resolveWith", "unknown resolution strategy")
	}
	if c.IsResolved() {
		return newStateError("resolveWith", "conflict has already been resolved")
	}
	now := time.Now().UTC()
	resultCopy := make(map[string]interface{}, len(result))
	for k, v := range result {
		resultCopy[k] = v
	}
	c.resolvedAt = &now
	c.strategy = &strategy
	c.result = resultCopy
	return nil
}

// CanBeAutomaticallyResolved reports whether any resolution option is
// automatic.
func (c *Conflict) CanBeAutomaticallyResolved() bool {
	for _, opt := range c.resolutionOptions {
		if opt.Automatic {
			return true
		}
	}
	return false
}

// RequiresUserDecision reports whether the conflict is semantic or has no
// automatic resolution path.
func (c *Conflict) RequiresUserDecision() bool {
	return c.conflictType.IsSemantic() || !c.CanBeAutomaticallyResolved()
}

// Severity implements the Conflict-level severity formula (§4.7), distinct
// from ConflictDetectionService.AnalyzeSeverity's cross-service formula:
// semantic conflicts are HIGH, conflicts with more than three operations
// are MEDIUM, everything else is LOW.
func (c *Conflict) Severity() ConflictSeverity {
	if c.conflictType.IsSemantic() {
		return SeverityHigh
	}
	if len(c.operations) > 3 {
		return SeverityMedium
	}
	return SeverityLow
}

// LatestOperation returns the operation whose vector clock happens-after
// every other operation in the conflict; ties (e.g. an all-concurrent set)
// are broken arbitrarily by returning the first operation in the
// conflict's original order.
func (c *Conflict) LatestOperation() Operation {
	for _, candidate := range c.operations {
		dominatesAll := true
		for _, other := range c.operations {
			if candidate.Equals(other) {
				continue
			}
			if !candidate.VectorClock().HappensAfter(other.VectorClock()) {
				dominatesAll = false
				break
			}
		}
		if dominatesAll {
			return candidate
		}
	}
	return c.operations[0]
}

// ConflictResolution is a resolution record: the strategy applied, a
// confidence level, who resolved it, and any supporting context/result.
type ConflictResolution struct {
	strategy      ResolutionStrategy
	confidence    ResolutionConfidence
	resolvedAt    time.Time
	resolvedBy    DeviceId
	context       string
	resultData    map[string]interface{}
	userSelection *string
	automatic     bool

	semanticOrigin bool
}

func deriveConfidence(operationCount int, ctype ConflictType, resultData map[string]interface{}) ResolutionConfidence {
	if operationCount > 5 {
		return ConfidenceLow
	}
	if ctype.IsSemantic() {
		if len(resultData) == 0 {
			return ConfidenceLow
		}
		return ConfidenceMedium
	}
	if len(resultData) == 0 {
		return ConfidenceMedium
	}
	return ConfidenceHigh
}

// NewConflictResolution validates and constructs a ConflictResolution.
// Manual strategies require a non-empty selectedOperationId.
func NewConflictResolution(
	strategy ResolutionStrategy,
	resolvedBy DeviceId,
	context string,
	resultData map[string]interface{},
	userSelection *string,
	operationCount int,
	ctype ConflictType,
) (*ConflictResolution, error) {
	if !strategy.IsKnown() {
		return nil, newValidationError("resolution.strategy", "unknown resolution strategy")
	}
	if strategy.IsManual() && (userSelection == nil || strings.TrimSpace(*userSelection) == "") {
		return nil, newValidationError("resolution.selectedOperationId", "manual resolutions require a non-empty selectedOperationId")
	}

	dataCopy := make(map[string]interface{}, len(resultData))
	for k, v := range resultData {
		dataCopy[k] = v
	}

	return &ConflictResolution{
		strategy:       strategy,
		confidence:     deriveConfidence(operationCount, ctype, resultData),
		resolvedAt:     time.Now().UTC(),
		resolvedBy:     resolvedBy,
		context:        context,
		resultData:     dataCopy,
		userSelection:  userSelection,
		automatic:      strategy.IsAutomatic(),
		semanticOrigin: ctype.IsSemantic(),
	}, nil
}

func (r *ConflictResolution) Strategy() ResolutionStrategy    { return r.strategy }
func (r *ConflictResolution) Confidence() ResolutionConfidence { return r.confidence }
func (r *ConflictResolution) ResolvedAt() time.Time           { return r.resolvedAt }
func (r *ConflictResolution) ResolvedBy() DeviceId            { return r.resolvedBy }
func (r *ConflictResolution) Context() string                 { return r.context }
func (r *ConflictResolution) Automatic() bool                 { return r.automatic }

// UserSelection returns the manually selected operation id, if any.
func (r *ConflictResolution) UserSelection() (string, bool) {
	if r.userSelection == nil {
		return "", false
	}
	return *r.userSelection, true
}

// ResultData returns a defensive copy of the resolution's result data.
func (r *ConflictResolution) ResultData() map[string]interface{} {
	out := make(map[string]interface{}, len(r.resultData))
	for k, v := range r.resultData {
		out[k] = v
	}
	return out
}

// RequiresUserValidation reports whether a human should double-check this
// resolution: low confidence, a manual strategy, or a semantic-conflict
// origin all qualify.
func (r *ConflictResolution) RequiresUserValidation() bool {
	return r.confidence == ConfidenceLow || r.strategy.IsManual() || r.semanticOrigin
}
