// Package syncstore is an in-memory, mutex-guarded implementation of the
// operation and conflict repositories that internal/synccore consumes but
// never implements itself. It plays the role the teacher's SessionManager
// played for a single in-flight document: one struct, one lock, indices
// kept up to date as entries are appended.
package syncstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nate123456/proof-editor-sync-core/internal/synccore"
)

// OperationStore is an append-only, in-memory log of operations indexed by
// the document path they target, the device that authored them, and
// whether they have been marked applied.
type OperationStore struct {
	mu sync.RWMutex

	byID     map[string]synccore.Operation
	byPath   map[string][]synccore.Operation
	byDevice map[string][]synccore.Operation
	applied  map[string]bool
	order    []synccore.Operation
}

// NewOperationStore returns an empty store ready to accept appends.
func NewOperationStore() *OperationStore {
	return &OperationStore{
		byID:     make(map[string]synccore.Operation),
		byPath:   make(map[string][]synccore.Operation),
		byDevice: make(map[string][]synccore.Operation),
		applied:  make(map[string]bool),
	}
}

// Save records op. Saving an id that already exists is a no-op so that
// replayed deliveries from an unreliable transport stay idempotent.
func (s *OperationStore) Save(ctx context.Context, op synccore.Operation) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := op.ID().String()
	if _, exists := s.byID[id]; exists {
		return nil
	}

	s.byID[id] = op
	s.byPath[op.TargetPath()] = append(s.byPath[op.TargetPath()], op)
	s.byDevice[op.DeviceId().String()] = append(s.byDevice[op.DeviceId().String()], op)
	s.order = append(s.order, op)
	return nil
}

// FindByID returns the operation stored under id, if any.
func (s *OperationStore) FindByID(ctx context.Context, id synccore.OperationId) (synccore.Operation, bool, error) {
	select {
	case <-ctx.Done():
		return synccore.Operation{}, false, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	op, ok := s.byID[id.String()]
	return op, ok, nil
}

// FindByDevice returns every operation authored by device, in append
// order.
func (s *OperationStore) FindByDevice(ctx context.Context, device synccore.DeviceId) ([]synccore.Operation, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ops := s.byDevice[device.String()]
	out := make([]synccore.Operation, len(ops))
	copy(out, ops)
	return out, nil
}

// FindByType returns every recorded operation whose Type matches opType,
// across all paths, in append order.
func (s *OperationStore) FindByType(ctx context.Context, opType synccore.OperationType) ([]synccore.Operation, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []synccore.Operation
	for _, op := range s.order {
		if op.Type() == opType {
			out = append(out, op)
		}
	}
	return out, nil
}

// FindPending returns every operation that has not been marked applied via
// MarkApplied, in append order. This mirrors the teacher's
// OperationBuffer: operations stay pending until the caller acknowledges
// having applied them.
func (s *OperationStore) FindPending(ctx context.Context) ([]synccore.Operation, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []synccore.Operation
	for _, op := range s.order {
		if !s.applied[op.ID().String()] {
			out = append(out, op)
		}
	}
	return out, nil
}

// FindAfter returns every operation whose logical timestamp is strictly
// greater than timestamp, in append order.
func (s *OperationStore) FindAfter(ctx context.Context, timestamp synccore.LogicalTimestamp) ([]synccore.Operation, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []synccore.Operation
	for _, op := range s.order {
		if op.Timestamp() > timestamp {
			out = append(out, op)
		}
	}
	return out, nil
}

// FindAll returns every recorded operation, in append order.
func (s *OperationStore) FindAll(ctx context.Context) ([]synccore.Operation, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]synccore.Operation, len(s.order))
	copy(out, s.order)
	return out, nil
}

// Delete removes the operation stored under id from every index. Deleting
// an unknown id is a no-op.
func (s *OperationStore) Delete(ctx context.Context, id synccore.OperationId) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	op, ok := s.byID[id.String()]
	if !ok {
		return nil
	}

	delete(s.byID, id.String())
	delete(s.applied, id.String())
	s.byPath[op.TargetPath()] = removeOperation(s.byPath[op.TargetPath()], id)
	s.byDevice[op.DeviceId().String()] = removeOperation(s.byDevice[op.DeviceId().String()], id)
	s.order = removeOperation(s.order, id)
	return nil
}

func removeOperation(ops []synccore.Operation, id synccore.OperationId) []synccore.Operation {
	out := ops[:0]
	for _, op := range ops {
		if !op.ID().Equals(id) {
			out = append(out, op)
		}
	}
	return out
}

// MarkApplied records that op has been applied, so it no longer appears in
// FindPending. Grounded on the teacher's AcknowledgeOperation/
// OperationBuffer.RemoveApplied pair.
func (s *OperationStore) MarkApplied(ctx context.Context, id synccore.OperationId) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.applied[id.String()] = true
	return nil
}

// ListByPath returns every operation recorded against targetPath, in
// append order.
func (s *OperationStore) ListByPath(ctx context.Context, targetPath string) ([]synccore.Operation, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ops := s.byPath[targetPath]
	out := make([]synccore.Operation, len(ops))
	copy(out, ops)
	return out, nil
}

// ListSince returns every recorded operation not already reflected in
// clock: operations whose vector clock happens-before or equals clock are
// skipped, in append order otherwise. The same filter applies to every
// operation; device does not change the result.
func (s *OperationStore) ListSince(ctx context.Context, device synccore.DeviceId, clock synccore.VectorClock) ([]synccore.Operation, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []synccore.Operation
	for _, op := range s.order {
		opClock := op.VectorClock()
		if opClock.HappensBefore(clock) || opClock.Equals(clock) {
			continue
		}
		out = append(out, op)
	}
	return out, nil
}

// Count returns the number of distinct operations recorded.
func (s *OperationStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// ConflictStore is an in-memory, mutex-guarded ConflictRepository keyed by
// conflict id.
type ConflictStore struct {
	mu sync.RWMutex

	byID  map[string]*synccore.Conflict
	order []string
}

// NewConflictStore returns an empty conflict store.
func NewConflictStore() *ConflictStore {
	return &ConflictStore{byID: make(map[string]*synccore.Conflict)}
}

// Save upserts c under its id.
func (s *ConflictStore) Save(ctx context.Context, c *synccore.Conflict) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[c.ID()]; !exists {
		s.order = append(s.order, c.ID())
	}
	s.byID[c.ID()] = c
	return nil
}

// FindByID returns the conflict stored under id, if any.
func (s *ConflictStore) FindByID(ctx context.Context, id string) (*synccore.Conflict, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	return c, ok, nil
}

// FindByDevice returns every stored conflict that involves device, in
// insertion order.
func (s *ConflictStore) FindByDevice(ctx context.Context, device synccore.DeviceId) ([]*synccore.Conflict, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*synccore.Conflict
	for _, id := range s.order {
		c := s.byID[id]
		for _, involved := range c.InvolvedDevices() {
			if involved.Equals(device) {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

// FindByType returns every stored conflict of the given type, in
// insertion order.
func (s *ConflictStore) FindByType(ctx context.Context, ctype synccore.ConflictType) ([]*synccore.Conflict, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*synccore.Conflict
	for _, id := range s.order {
		c := s.byID[id]
		if c.Type() == ctype {
			out = append(out, c)
		}
	}
	return out, nil
}

// FindPending returns every unresolved conflict across all paths, in
// insertion order.
func (s *ConflictStore) FindPending(ctx context.Context) ([]*synccore.Conflict, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*synccore.Conflict
	for _, id := range s.order {
		c := s.byID[id]
		if !c.IsResolved() {
			out = append(out, c)
		}
	}
	return out, nil
}

// FindAfter returns every stored conflict detected strictly after
// timestamp, in insertion order.
func (s *ConflictStore) FindAfter(ctx context.Context, timestamp time.Time) ([]*synccore.Conflict, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*synccore.Conflict
	for _, id := range s.order {
		c := s.byID[id]
		if c.DetectedAt().After(timestamp) {
			out = append(out, c)
		}
	}
	return out, nil
}

// FindAll returns every stored conflict, in insertion order.
func (s *ConflictStore) FindAll(ctx context.Context) ([]*synccore.Conflict, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*synccore.Conflict, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}

// Delete removes the conflict stored under id. Deleting an unknown id is a
// no-op.
func (s *ConflictStore) Delete(ctx context.Context, id string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return nil
	}
	delete(s.byID, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Unresolved returns every stored conflict targeting targetPath that has
// not yet been resolved, sorted by id for deterministic iteration.
func (s *ConflictStore) Unresolved(ctx context.Context, targetPath string) ([]*synccore.Conflict, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*synccore.Conflict
	for _, c := range s.byID {
		if c.TargetPath() == targetPath && !c.IsResolved() {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

// MarkResolved applies resolution to the stored conflict identified by
// conflictID. It returns a synccore.ValidationError if no such conflict is
// known to the store.
func (s *ConflictStore) MarkResolved(ctx context.Context, conflictID string, resolution *synccore.ConflictResolution) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[conflictID]
	if !ok {
		return synccore.NewUnknownConflictError(conflictID)
	}
	return c.ResolveWith(resolution.Strategy(), resolution.ResultData())
}

// Get returns the conflict stored under id, if any. Equivalent to
// FindByID without a context, kept for callers that already hold the
// store outside of a cancellable operation.
func (s *ConflictStore) Get(id string) (*synccore.Conflict, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	return c, ok
}

var _ synccore.OperationRepository = (*OperationStore)(nil)
var _ synccore.ConflictRepository = (*ConflictStore)(nil)
