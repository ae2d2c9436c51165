package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nate123456/proof-editor-sync-core/internal/synccore"
	"github.com/nate123456/proof-editor-sync-core/internal/syncconfig"
	"github.com/nate123456/proof-editor-sync-core/internal/syncstore"
)

// TestScenarioPartitionReunionConverges exercises S1 end-to-end through the
// reference repository and host: three devices diverge offline, then each
// reunites with the shared host in a different order, and all three must
// land on the same merged vector clock regardless of reunion order.
func TestScenarioPartitionReunionConverges(t *testing.T) {
	ctx := context.Background()
	ops := syncstore.NewOperationStore()
	host := NewReferenceHost(ops, syncconfig.Default().Timeouts, testLogger())
	scenario := NewPartitionScenario(host, ops)

	_, _, _, err := scenario.Diverge(ctx, "/document/title")
	require.NoError(t, err)

	emptyVC := synccore.EmptyVectorClock()

	mergedA, err := scenario.Reunite(ctx, scenario.DeviceA, emptyVC)
	require.NoError(t, err)
	mergedB, err := scenario.Reunite(ctx, scenario.DeviceB, emptyVC)
	require.NoError(t, err)
	mergedC, err := scenario.Reunite(ctx, scenario.DeviceC, emptyVC)
	require.NoError(t, err)

	expected := map[string]int64{"device-a": 1, "device-b": 1, "device-c": 1}

	assert.Equal(t, expected, mergedA.ToMap())
	assert.Equal(t, expected, mergedB.ToMap())
	assert.Equal(t, expected, mergedC.ToMap())
}

func TestScenarioPartitionReunionIsOrderIndependent(t *testing.T) {
	ctx := context.Background()

	run := func(order []synccore.DeviceId) map[string]int64 {
		ops := syncstore.NewOperationStore()
		host := NewReferenceHost(ops, syncconfig.Default().Timeouts, testLogger())
		scenario := NewPartitionScenario(host, ops)
		_, _, _, err := scenario.Diverge(ctx, "/document/title")
		require.NoError(t, err)

		merged := synccore.EmptyVectorClock()
		for _, d := range order {
			m, err := scenario.Reunite(ctx, d, merged)
			require.NoError(t, err)
			merged = m
		}
		return merged.ToMap()
	}

	scenario := NewPartitionScenario(NewReferenceHost(syncstore.NewOperationStore(), syncconfig.Default().Timeouts, testLogger()), syncstore.NewOperationStore())
	orderOne := []synccore.DeviceId{scenario.DeviceA, scenario.DeviceB, scenario.DeviceC}
	orderTwo := []synccore.DeviceId{scenario.DeviceC, scenario.DeviceB, scenario.DeviceA}

	assert.Equal(t, run(orderOne), run(orderTwo))
}
