package orchestrator

import (
	"context"

	"github.com/nate123456/proof-editor-sync-core/internal/synccore"
	"github.com/nate123456/proof-editor-sync-core/internal/syncstore"
)

// PartitionScenario captures three devices that diverge while offline and
// then reunite: each device installs its own operation against a shared
// host, and Reunite has each device pull what it has not yet observed
// through one SynchronizeDevice call, so that all three converge on the
// same merged vector clock regardless of the order reunions happen in.
type PartitionScenario struct {
	DeviceA synccore.DeviceId
	DeviceB synccore.DeviceId
	DeviceC synccore.DeviceId

	Host *ReferenceHost
	Ops  *syncstore.OperationStore
}

// NewPartitionScenario builds three devices sharing host and ops.
func NewPartitionScenario(host *ReferenceHost, ops *syncstore.OperationStore) PartitionScenario {
	return PartitionScenario{
		DeviceA: synccore.MustNewDeviceId("device-a"),
		DeviceB: synccore.MustNewDeviceId("device-b"),
		DeviceC: synccore.MustNewDeviceId("device-c"),
		Host:    host,
		Ops:     ops,
	}
}

// Diverge has each device install one local operation against targetPath
// while "offline" — i.e. each call only installs into the shared host, it
// never calls SynchronizeDevice first, so none observes the others' work
// before reunion.
func (s PartitionScenario) Diverge(ctx context.Context, targetPath string) (a, b, c synccore.Operation, err error) {
	vcA := synccore.NewVectorClockWithDevice(s.DeviceA).IncrementFor(s.DeviceA)
	vcB := synccore.NewVectorClockWithDevice(s.DeviceB).IncrementFor(s.DeviceB)
	vcC := synccore.NewVectorClockWithDevice(s.DeviceC).IncrementFor(s.DeviceC)

	a, err = synccore.NewStatementOperation(s.DeviceA, 1, synccore.VerbUpdate, targetPath, "s1", "from-a", vcA, nil)
	if err != nil {
		return
	}
	b, err = synccore.NewStatementOperation(s.DeviceB, 1, synccore.VerbUpdate, targetPath, "s1", "from-b", vcB, nil)
	if err != nil {
		return
	}
	c, err = synccore.NewStatementOperation(s.DeviceC, 1, synccore.VerbUpdate, targetPath, "s1", "from-c", vcC, nil)
	if err != nil {
		return
	}

	if err = s.Host.InstallPackage(ctx, a); err != nil {
		return
	}
	if err = s.Host.InstallPackage(ctx, b); err != nil {
		return
	}
	err = s.Host.InstallPackage(ctx, c)
	return
}

// Reunite has device pull every operation it has not yet observed since
// clock, returning the merged vector clock across everything it now
// knows about.
func (s PartitionScenario) Reunite(ctx context.Context, device synccore.DeviceId, clock synccore.VectorClock) (synccore.VectorClock, error) {
	ops, err := s.Host.SynchronizeDevice(ctx, device, clock)
	if err != nil {
		return clock, err
	}
	merged := clock
	for _, op := range ops {
		merged = synccore.MergeVectorClocks(merged, op.VectorClock())
	}
	return merged, nil
}
