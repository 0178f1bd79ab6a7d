package metrics

import (
	"context"
	"time"
)

// noopCollector discards all recordings. Used in tests and as a safe default
// when a component is constructed without a collector.
type noopCollector struct{}

// NewNoopCollector returns a Collector that records nothing.
func NewNoopCollector() Collector {
	return noopCollector{}
}

func (noopCollector) RecordReconcileDuration(context.Context, string, time.Duration) {}
func (noopCollector) RecordDeferredTick(context.Context, string)                     {}
func (noopCollector) RecordManagedResources(context.Context, int)                    {}
func (noopCollector) RecordStoreOperation(context.Context, string, string, string)   {}
func (noopCollector) RecordStoreError(context.Context, string, string)               {}
func (noopCollector) RecordMaterializeDuration(context.Context, time.Duration)       {}
func (noopCollector) RecordMaterializeFailure(context.Context)                       {}
func (noopCollector) RecordAnnotationPatch(context.Context, string, string)          {}
