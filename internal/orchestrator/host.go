// Package orchestrator is a reference implementation of the
// synccore.OrchestrationHost collaborator: the cross-context boundary the
// synchronization core calls into for anything outside its own pure
// value space. It plays the role the teacher's CollabManager played for
// session/peer dispatch, repurposed to the three calls the core actually
// makes, each wrapped in its own timeout budget.
package orchestrator

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nate123456/proof-editor-sync-core/internal/synccore"
	"github.com/nate123456/proof-editor-sync-core/internal/syncconfig"
	"github.com/nate123456/proof-editor-sync-core/internal/syncstore"
)

// ReferenceHost is an in-process OrchestrationHost: ValidateProof checks a
// document's structural invariants against a fixed entry-count ceiling,
// InstallPackage appends to an OperationStore, and SynchronizeDevice reads
// back from it. Every call runs under a context.WithTimeout derived from
// syncconfig.TimeoutConfig and reports synccore.TimeoutError on expiry.
type ReferenceHost struct {
	ops      *syncstore.OperationStore
	timeouts syncconfig.TimeoutConfig
	log      zerolog.Logger
}

// NewReferenceHost builds a host backed by ops, bounded by timeouts, and
// logging through log.
func NewReferenceHost(ops *syncstore.OperationStore, timeouts syncconfig.TimeoutConfig, log zerolog.Logger) *ReferenceHost {
	return &ReferenceHost{ops: ops, timeouts: timeouts, log: log.With().Str("component", "orchestrator").Logger()}
}

// ValidateProof checks that state holds no more than 100,000 entries and
// that every payload it holds carries a payload kind. Payload construction
// already enforces per-payload invariants (§3), so this call's own work is
// the document-wide structural check the core does not perform itself:
// total entry count against that fixed ceiling. The ceiling is a constant;
// syncconfig values other than the timeouts are not consulted.
func (h *ReferenceHost) ValidateProof(ctx context.Context, documentPath string, state map[string]synccore.OperationPayload) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeouts.ValidateProof)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- h.validateStructural(documentPath, state)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		h.log.Warn().Str("documentPath", documentPath).Msg("validateProof timed out")
		return synccore.NewTimeoutError("validateProof", h.timeouts.ValidateProof.Milliseconds())
	}
}

func (h *ReferenceHost) validateStructural(documentPath string, state map[string]synccore.OperationPayload) error {
	const maxEntries = 100_000
	if len(state) > maxEntries {
		return synccore.NewInvariantError("validateProof", "document exceeds the maximum retained entry count")
	}
	for path, payload := range state {
		if payload.Kind() == "" {
			return synccore.NewInvariantError("validateProof", "entry at "+path+" carries an empty payload kind")
		}
	}
	h.log.Debug().Str("documentPath", documentPath).Int("entries", len(state)).Msg("validateProof ok")
	return nil
}

// InstallPackage appends op to the backing OperationStore, treating a
// repeat delivery of an already-known id as a success (§6 append-only
// idempotence).
func (h *ReferenceHost) InstallPackage(ctx context.Context, op synccore.Operation) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeouts.InstallPackage)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- h.ops.Save(ctx, op)
	}()

	select {
	case err := <-done:
		if err != nil && ctx.Err() != nil {
			h.log.Warn().Str("operationId", op.ID().String()).Msg("installPackage timed out")
			return synccore.NewTimeoutError("installPackage", h.timeouts.InstallPackage.Milliseconds())
		}
		if err != nil {
			h.log.Error().Err(err).Str("operationId", op.ID().String()).Msg("installPackage failed")
			return err
		}
		h.log.Debug().Str("operationId", op.ID().String()).Str("targetPath", op.TargetPath()).Msg("installPackage ok")
		return nil
	case <-ctx.Done():
		h.log.Warn().Str("operationId", op.ID().String()).Msg("installPackage timed out")
		return synccore.NewTimeoutError("installPackage", h.timeouts.InstallPackage.Milliseconds())
	}
}

// SynchronizeDevice returns every operation device has not yet observed
// according to since, reading from the backing OperationStore.
func (h *ReferenceHost) SynchronizeDevice(ctx context.Context, device synccore.DeviceId, since synccore.VectorClock) ([]synccore.Operation, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeouts.SynchronizeDevice)
	defer cancel()

	type result struct {
		ops []synccore.Operation
		err error
	}
	done := make(chan result, 1)
	go func() {
		ops, err := h.ops.ListSince(ctx, device, since)
		done <- result{ops: ops, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && ctx.Err() != nil {
			h.log.Warn().Str("device", device.String()).Msg("synchronizeDevice timed out")
			return nil, synccore.NewTimeoutError("synchronizeDevice", h.timeouts.SynchronizeDevice.Milliseconds())
		}
		if r.err != nil {
			return nil, r.err
		}
		h.log.Debug().Str("device", device.String()).Int("operations", len(r.ops)).Msg("synchronizeDevice ok")
		return r.ops, nil
	case <-ctx.Done():
		h.log.Warn().Str("device", device.String()).Msg("synchronizeDevice timed out")
		return nil, synccore.NewTimeoutError("synchronizeDevice", h.timeouts.SynchronizeDevice.Milliseconds())
	}
}

// ConflictResolutionPrompt builds the envelope an orchestration host sends
// to a human-facing collaborator when a conflict cannot be resolved
// automatically.
func ConflictResolutionPrompt(c *synccore.Conflict) (*Envelope, error) {
	ids := make([]string, 0, len(c.Operations()))
	for _, op := range c.Operations() {
		ids = append(ids, op.ID().String())
	}
	strategies := make([]string, 0, len(c.ResolutionOptions()))
	for _, opt := range c.ResolutionOptions() {
		strategies = append(strategies, string(opt.Strategy))
	}

	req := ResolutionRequest{
		ConflictID:        c.ID(),
		TargetPath:        c.TargetPath(),
		ConflictType:      string(c.Type()),
		Severity:          string(c.Severity()),
		CandidateOpIDs:    ids,
		AvailableStrategy: strategies,
	}
	return NewEnvelope(MsgResolutionRequest, req)
}

// ApplyResolutionDecision validates and applies a ResolutionDecision
// against the given conflict repository, returning the envelope
// confirming what was recorded.
func ApplyResolutionDecision(ctx context.Context, repo synccore.ConflictRepository, decision ResolutionDecision) (*Envelope, error) {
	resolvedBy, err := synccore.NewDeviceId(decision.ResolvedByDevice)
	if err != nil {
		return newErrorEnvelope("invalid_device", err.Error())
	}

	strategy := synccore.ResolutionStrategy(decision.Strategy)
	resolution, err := synccore.NewConflictResolution(strategy, resolvedBy, "manual", nil, decision.SelectedOpID, 0, synccore.ConcurrentModification)
	if err != nil {
		return newErrorEnvelope("invalid_resolution", err.Error())
	}

	if err := repo.MarkResolved(ctx, decision.ConflictID, resolution); err != nil {
		return newErrorEnvelope("mark_resolved_failed", err.Error())
	}

	return NewEnvelope(MsgResolutionApplied, ResolutionApplied{ConflictID: decision.ConflictID, Strategy: decision.Strategy})
}
