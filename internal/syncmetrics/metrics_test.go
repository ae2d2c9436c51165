package syncmetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nate123456/proof-editor-sync-core/internal/synccore"
)

func twoConcurrentStatementOps(t *testing.T) (synccore.Operation, synccore.Operation) {
	t.Helper()
	d1 := synccore.MustNewDeviceId("device-1")
	d2 := synccore.MustNewDeviceId("device-2")
	vc1 := synccore.NewVectorClockWithDevice(d1).IncrementFor(d1)
	vc2 := synccore.NewVectorClockWithDevice(d2).IncrementFor(d2)
	a, err := synccore.NewStatementOperation(d1, 1, synccore.VerbUpdate, "/document/title", "s1", "A", vc1, nil)
	require.NoError(t, err)
	b, err := synccore.NewStatementOperation(d2, 1, synccore.VerbUpdate, "/document/title", "s1", "B", vc2, nil)
	require.NoError(t, err)
	return a, b
}

func TestConflictDetectorRecordsDetectedAndAutoResolvable(t *testing.T) {
	reg := prometheus.NewRegistry()
	detector := NewConflictDetector(reg, synccore.NewConflictDetectionService())

	a, b := twoConcurrentStatementOps(t)
	c, err := detector.DetectBetween(a, b)
	require.NoError(t, err)
	require.NotNil(t, c)

	metricFamilies, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range metricFamilies {
		if mf.GetName() == "synccore_conflicts_detected_total" {
			found = true
			require.Len(t, mf.GetMetric(), 1)
			assert.Equal(t, float64(1), mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found)
}

func TestTransformationServiceRecordsStrategyLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := NewTransformationService(reg, synccore.NewOperationTransformationService())

	d1 := synccore.MustNewDeviceId("device-1")
	d2 := synccore.MustNewDeviceId("device-2")
	vc1 := synccore.NewVectorClockWithDevice(d1).IncrementFor(d1)
	vc2 := synccore.NewVectorClockWithDevice(d2).IncrementFor(d2)
	pos1, _ := synccore.NewTreePositionOperation(d1, 1, "/tree/1", 1, 2, vc1, nil)
	pos2, _ := synccore.NewTreePositionOperation(d2, 1, "/tree/1", 3, 4, vc2, nil)

	_, err := svc.Transform(pos1, pos2)
	require.NoError(t, err)

	metricFamilies, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range metricFamilies {
		if mf.GetName() == "synccore_transformations_total" {
			found = true
			require.Len(t, mf.GetMetric(), 1)
			assert.Equal(t, "POSITION_ADJUSTMENT", mf.GetMetric()[0].GetLabel()[0].GetValue())
		}
	}
	assert.True(t, found)
}
