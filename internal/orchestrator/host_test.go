package orchestrator

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nate123456/proof-editor-sync-core/internal/synccore"
	"github.com/nate123456/proof-editor-sync-core/internal/syncconfig"
	"github.com/nate123456/proof-editor-sync-core/internal/syncstore"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func TestReferenceHostInstallPackageAndSynchronizeDevice(t *testing.T) {
	ctx := context.Background()
	ops := syncstore.NewOperationStore()
	host := NewReferenceHost(ops, syncconfig.Default().Timeouts, testLogger())

	d1 := synccore.MustNewDeviceId("device-1")
	d2 := synccore.MustNewDeviceId("device-2")
	vc1 := synccore.NewVectorClockWithDevice(d1).IncrementFor(d1)

	op, err := synccore.NewStatementOperation(d1, 1, synccore.VerbUpdate, "/document/title", "s1", "hello", vc1, nil)
	require.NoError(t, err)

	require.NoError(t, host.InstallPackage(ctx, op))

	delivered, err := host.SynchronizeDevice(ctx, d2, synccore.EmptyVectorClock())
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.True(t, delivered[0].Equals(op))
}

func TestReferenceHostValidateProofRejectsEmptyKind(t *testing.T) {
	ctx := context.Background()
	ops := syncstore.NewOperationStore()
	host := NewReferenceHost(ops, syncconfig.Default().Timeouts, testLogger())

	state := map[string]synccore.OperationPayload{
		"/document/bad": {},
	}
	err := host.ValidateProof(ctx, "/document", state)
	require.Error(t, err)
	_, ok := synccore.AsInvariantError(err)
	assert.True(t, ok)
}

func TestReferenceHostInstallPackageRespectsCanceledContext(t *testing.T) {
	ops := syncstore.NewOperationStore()
	timeouts := syncconfig.Default().Timeouts
	timeouts.InstallPackage = time.Nanosecond
	host := NewReferenceHost(ops, timeouts, testLogger())

	d1 := synccore.MustNewDeviceId("device-1")
	vc1 := synccore.NewVectorClockWithDevice(d1).IncrementFor(d1)
	op, err := synccore.NewStatementOperation(d1, 1, synccore.VerbUpdate, "/document/title", "s1", "hello", vc1, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = host.InstallPackage(ctx, op)
	require.Error(t, err)
	_, ok := synccore.AsTimeoutError(err)
	assert.True(t, ok)
}

func TestConflictResolutionPromptAndApplyDecision(t *testing.T) {
	ctx := context.Background()
	conflicts := syncstore.NewConflictStore()

	d1 := synccore.MustNewDeviceId("device-1")
	d2 := synccore.MustNewDeviceId("device-2")
	vc1 := synccore.NewVectorClockWithDevice(d1).IncrementFor(d1)
	vc2 := synccore.NewVectorClockWithDevice(d2).IncrementFor(d2)
	a, _ := synccore.NewStatementOperation(d1, 1, synccore.VerbUpdate, "/document/title", "s1", "A", vc1, nil)
	b, _ := synccore.NewStatementOperation(d2, 1, synccore.VerbUpdate, "/document/title", "s1", "B", vc2, nil)

	c, err := synccore.NewConflict("c1", synccore.SemanticConflict, "/document/title", []synccore.Operation{a, b})
	require.NoError(t, err)
	require.NoError(t, conflicts.Save(ctx, c))

	prompt, err := ConflictResolutionPrompt(c)
	require.NoError(t, err)
	assert.Equal(t, MsgResolutionRequest, prompt.Type)

	var req ResolutionRequest
	require.NoError(t, prompt.ParseData(&req))
	assert.Equal(t, "c1", req.ConflictID)
	assert.Contains(t, req.AvailableStrategy, string(synccore.UserDecisionRequired))

	selection := a.ID().String()
	decision := ResolutionDecision{
		ConflictID:       "c1",
		Strategy:         string(synccore.UserDecisionRequired),
		SelectedOpID:     &selection,
		ResolvedByDevice: "device-1",
	}
	applied, err := ApplyResolutionDecision(ctx, conflicts, decision)
	require.NoError(t, err)
	assert.Equal(t, MsgResolutionApplied, applied.Type)

	stored, ok := conflicts.Get("c1")
	require.True(t, ok)
	assert.True(t, stored.IsResolved())
}
