package synccore

import (
	"context"
	"time"
)

// OperationRepository is the persistence boundary the core consumes (§6)
// but never implements: an append-only log of operations, queryable by
// id, device, type, pending status, and logical timestamp.
type OperationRepository interface {
	Save(ctx context.Context, op Operation) error
	FindByID(ctx context.Context, id OperationId) (Operation, bool, error)
	FindByDevice(ctx context.Context, device DeviceId) ([]Operation, error)
	FindByType(ctx context.Context, opType OperationType) ([]Operation, error)
	FindPending(ctx context.Context) ([]Operation, error)
	FindAfter(ctx context.Context, timestamp LogicalTimestamp) ([]Operation, error)
	FindAll(ctx context.Context) ([]Operation, error)
	Delete(ctx context.Context, id OperationId) error

	// ListByPath and ListSince are additional causal queries the
	// reference orchestration host relies on beyond the generic CRUD
	// surface above: every operation recorded against a path, and every
	// operation a device has not yet observed per its vector clock.
	ListByPath(ctx context.Context, targetPath string) ([]Operation, error)
	ListSince(ctx context.Context, device DeviceId, clock VectorClock) ([]Operation, error)
}

// ConflictRepository is the persistence boundary for detected conflicts
// and their eventual resolutions, with operations analogous to
// OperationRepository's (§6).
type ConflictRepository interface {
	Save(ctx context.Context, c *Conflict) error
	FindByID(ctx context.Context, id string) (*Conflict, bool, error)
	FindByDevice(ctx context.Context, device DeviceId) ([]*Conflict, error)
	FindByType(ctx context.Context, ctype ConflictType) ([]*Conflict, error)
	FindPending(ctx context.Context) ([]*Conflict, error)
	FindAfter(ctx context.Context, timestamp time.Time) ([]*Conflict, error)
	FindAll(ctx context.Context) ([]*Conflict, error)
	Delete(ctx context.Context, id string) error

	// Unresolved and MarkResolved are the conflict-specific operations
	// the reference orchestration host uses beyond the generic CRUD
	// surface above: every unresolved conflict against a path, and
	// recording a resolution against a stored conflict by id.
	Unresolved(ctx context.Context, targetPath string) ([]*Conflict, error)
	MarkResolved(ctx context.Context, conflictID string, resolution *ConflictResolution) error
}

// OrchestrationHost is the cross-context boundary the core calls into for
// anything it does not own itself: validating a document's structural
// invariants, installing a resolved operation back into durable storage,
// or driving a device's reconnection sync. A host that cannot complete a
// call within its own budget returns a TimeoutError (see errors.go)
// instead of blocking indefinitely.
type OrchestrationHost interface {
	ValidateProof(ctx context.Context, documentPath string, state map[string]OperationPayload) error
	InstallPackage(ctx context.Context, op Operation) error
	SynchronizeDevice(ctx context.Context, device DeviceId, since VectorClock) ([]Operation, error)
}
