package synccore

// OperationType is the closed enumeration of mutations the synchronization
// core understands. Every value is classified by verb (create/update/
// delete), target, and category (structural/semantic).
type OperationType string

const (
	CreateStatement OperationType = "CREATE_STATEMENT"
	UpdateStatement OperationType = "UPDATE_STATEMENT"
	DeleteStatement OperationType = "DELETE_STATEMENT"

	CreateArgument OperationType = "CREATE_ARGUMENT"
	UpdateArgument OperationType = "UPDATE_ARGUMENT"
	DeleteArgument OperationType = "DELETE_ARGUMENT"

	CreateTree OperationType = "CREATE_TREE"
	UpdateTree OperationType = "UPDATE_TREE"
	DeleteTree OperationType = "DELETE_TREE"

	CreateConnection OperationType = "CREATE_CONNECTION"
	UpdateConnection OperationType = "UPDATE_CONNECTION"
	DeleteConnection OperationType = "DELETE_CONNECTION"

	UpdateTreePosition OperationType = "UPDATE_TREE_POSITION"
	UpdateMetadata     OperationType = "UPDATE_METADATA"
)

// OperationCategory distinguishes structural (graph-shape) mutations from
// semantic (content) mutations.
type OperationCategory string

const (
	CategoryStructural OperationCategory = "STRUCTURAL"
	CategorySemantic   OperationCategory = "SEMANTIC"
)

// OperationVerb is the create/update/delete classification of a type, or
// UNKNOWN for a value outside the closed set.
type OperationVerb string

const (
	VerbCreate  OperationVerb = "CREATE"
	VerbUpdate  OperationVerb = "UPDATE"
	VerbDelete  OperationVerb = "DELETE"
	VerbUnknown OperationVerb = "UNKNOWN"
)

// OperationTarget is the entity kind a type addresses, or "" for unknown.
type OperationTarget string

const (
	TargetStatement  OperationTarget = "STATEMENT"
	TargetArgument   OperationTarget = "ARGUMENT"
	TargetTree       OperationTarget = "TREE"
	TargetConnection OperationTarget = "CONNECTION"
	TargetMetadata   OperationTarget = "METADATA"
)

var structuralTypes = map[OperationType]bool{
	CreateArgument:     true,
	DeleteArgument:     true,
	CreateTree:         true,
	UpdateTreePosition: true,
	DeleteTree:         true,
	CreateConnection:   true,
	DeleteConnection:   true,
}

var allOperationTypes = map[OperationType]bool{
	CreateStatement: true, UpdateStatement: true, DeleteStatement: true,
	CreateArgument: true, UpdateArgument: true, DeleteArgument: true,
	CreateTree: true, UpdateTree: true, DeleteTree: true,
	CreateConnection: true, UpdateConnection: true, DeleteConnection: true,
	UpdateTreePosition: true, UpdateMetadata: true,
}

// IsValid reports whether t is a member of the closed OperationType set.
func (t OperationType) IsValid() bool { return allOperationTypes[t] }

// IsStructural reports whether t manipulates the graph shape.
func (t OperationType) IsStructural() bool { return structuralTypes[t] }

// IsSemantic reports whether t manipulates content rather than shape. Every
// valid type is structural XOR semantic.
func (t OperationType) IsSemantic() bool {
	return t.IsValid() && !t.IsStructural()
}

// Verb returns the create/update/delete classification, or VerbUnknown for
// values outside the closed set.
func (t OperationType) Verb() OperationVerb {
	switch t {
	case CreateStatement, CreateArgument, CreateTree, CreateConnection:
		return VerbCreate
	case UpdateStatement, UpdateArgument, UpdateTree, UpdateConnection, UpdateTreePosition, UpdateMetadata:
		return VerbUpdate
	case DeleteStatement, DeleteArgument, DeleteTree, DeleteConnection:
		return VerbDelete
	default:
		return VerbUnknown
	}
}

// Target returns the entity kind t addresses, or "" for unknown values.
func (t OperationType) Target() OperationTarget {
	switch t {
	case CreateStatement, UpdateStatement, DeleteStatement:
		return TargetStatement
	case CreateArgument, UpdateArgument, DeleteArgument:
		return TargetArgument
	case CreateTree, UpdateTree, DeleteTree, UpdateTreePosition:
		return TargetTree
	case CreateConnection, UpdateConnection, DeleteConnection:
		return TargetConnection
	case UpdateMetadata:
		return TargetMetadata
	default:
		return ""
	}
}

// Category returns the structural/semantic classification, or "" for
// values outside the closed set.
func (t OperationType) Category() OperationCategory {
	if !t.IsValid() {
		return ""
	}
	if t.IsStructural() {
		return CategoryStructural
	}
	return CategorySemantic
}

func (t OperationType) IsCreation() bool { return t.Verb() == VerbCreate }
func (t OperationType) IsUpdate() bool   { return t.Verb() == VerbUpdate }
func (t OperationType) IsDeletion() bool { return t.Verb() == VerbDelete }

type typePair struct {
	a, b OperationType
}

var nonCommutingStructuralPairs = []typePair{
	{CreateArgument, DeleteArgument},
	{CreateTree, DeleteTree},
	{CreateConnection, DeleteConnection},
	{DeleteArgument, CreateConnection},
	{DeleteTree, CreateArgument},
}

func pairMatches(self, other OperationType, pairs []typePair) bool {
	for _, p := range pairs {
		if (p.a == self && p.b == other) || (p.a == other && p.b == self) {
			return true
		}
	}
	return false
}

// CanCommuteWith reports whether t and other may be applied in either
// order and converge, per the policy in spec §4.2. The relation is
// symmetric by construction.
func (t OperationType) CanCommuteWith(other OperationType) bool {
	if t == other {
		return t == UpdateTreePosition || t == UpdateMetadata
	}

	tStructural, oStructural := t.IsStructural(), other.IsStructural()

	switch {
	case tStructural && oStructural:
		return !pairMatches(t, other, nonCommutingStructuralPairs)
	case !tStructural && !oStructural:
		return false
	default:
		// one structural, one semantic
		structural, semantic := t, other
		if oStructural {
			structural, semantic = other, t
		}
		if structural.IsDeletion() {
			return false
		}
		if structural == DeleteConnection && semantic == UpdateArgument {
			return false
		}
		return true
	}
}
