// Package syncmetrics wraps the synchronization core's stateless services
// with optional Prometheus instrumentation. It is deliberately kept
// outside internal/synccore, which stays alloc-local and free of global
// mutable state: every counter here lives on a registry the caller
// injects, never on a package-level var.
package syncmetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nate123456/proof-editor-sync-core/internal/synccore"
)

// ConflictDetector wraps synccore.ConflictDetectionService, counting
// conflicts by type as they are detected, and separately those of each
// type that can be resolved automatically.
type ConflictDetector struct {
	inner *synccore.ConflictDetectionService

	detected   *prometheus.CounterVec
	autoResolvable *prometheus.CounterVec
}

// NewConflictDetector registers its counters on reg and wraps inner.
func NewConflictDetector(reg prometheus.Registerer, inner *synccore.ConflictDetectionService) *ConflictDetector {
	detected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "synccore_conflicts_detected_total",
		Help: "Total number of conflicts detected, labeled by conflict type.",
	}, []string{"conflict_type"})

	autoResolvable := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "synccore_conflicts_auto_resolvable_total",
		Help: "Total number of detected conflicts that can be resolved automatically.",
	}, []string{"conflict_type"})

	reg.MustRegister(detected, autoResolvable)

	return &ConflictDetector{inner: inner, detected: detected, autoResolvable: autoResolvable}
}

// DetectBetween delegates to the wrapped service and records the result.
func (d *ConflictDetector) DetectBetween(a, b synccore.Operation) (*synccore.Conflict, error) {
	c, err := d.inner.DetectBetween(a, b)
	if err != nil || c == nil {
		return c, err
	}
	d.record(c)
	return c, nil
}

// DetectInSequence delegates to the wrapped service and records every
// conflict it finds.
func (d *ConflictDetector) DetectInSequence(ops []synccore.Operation) ([]*synccore.Conflict, error) {
	conflicts, err := d.inner.DetectInSequence(ops)
	if err != nil {
		return conflicts, err
	}
	for _, c := range conflicts {
		d.record(c)
	}
	return conflicts, nil
}

func (d *ConflictDetector) record(c *synccore.Conflict) {
	label := string(c.Type())
	d.detected.WithLabelValues(label).Inc()
	if d.inner.CanAutoResolve(c) {
		d.autoResolvable.WithLabelValues(label).Inc()
	}
}

// CanAutoResolve delegates without instrumentation; it is read-only and
// does not itself represent a detection event.
func (d *ConflictDetector) CanAutoResolve(c *synccore.Conflict) bool {
	return d.inner.CanAutoResolve(c)
}

// TransformationService wraps synccore.OperationTransformationService,
// counting transformations by the strategy selected.
type TransformationService struct {
	inner *synccore.OperationTransformationService

	transformed *prometheus.CounterVec
}

// NewTransformationService registers its counter on reg and wraps inner.
func NewTransformationService(reg prometheus.Registerer, inner *synccore.OperationTransformationService) *TransformationService {
	transformed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "synccore_transformations_total",
		Help: "Total number of operation transformations performed, labeled by strategy.",
	}, []string{"strategy"})

	reg.MustRegister(transformed)

	return &TransformationService{inner: inner, transformed: transformed}
}

// Transform delegates to the wrapped service and records the strategy
// that was selected for the pair.
func (t *TransformationService) Transform(self, other synccore.Operation) (synccore.Operation, error) {
	strategy := t.inner.SelectStrategy(self, other)
	result, err := t.inner.Transform(self, other)
	if err != nil {
		return result, err
	}
	t.transformed.WithLabelValues(string(strategy)).Inc()
	return result, nil
}

// TransformSequence delegates to the wrapped service without per-pair
// instrumentation, since internal pairwise strategy choices are not
// exposed by TransformSequence's signature.
func (t *TransformationService) TransformSequence(ops []synccore.Operation) ([]synccore.Operation, error) {
	return t.inner.TransformSequence(ops)
}
