package graphcore

import (
	"github.com/wbrown/graphcore/graphcore/gclog"
	"github.com/wbrown/graphcore/graphcore/resultset"
)

// Options configures an Engine, mirroring the teacher's
// datalog/planner.PlannerOptions: a plain struct passed by value into
// the constructor, with a DefaultOptions() builder rather than a
// functional-options pattern.
type Options struct {
	// MaxOptimiserPasses bounds the fusion pass's fixed-point loop. Zero
	// uses the optimizer package's own default (100).
	MaxOptimiserPasses int
	// Mapper fans per-record rule application out at the leaf level of
	// result-set execution. nil uses resultset.SyncMapper.
	Mapper resultset.Mapper
	// Collector, if set, receives structured events from search,
	// optimisation and planning: clauses grounded, fusions applied,
	// relations pushed down, nodes scheduled. Result-set execution emits
	// no events.
	Collector gclog.Collector
}

// DefaultOptions returns the Engine's zero-configuration defaults.
func DefaultOptions() Options {
	return Options{
		MaxOptimiserPasses: 100,
		Mapper:             resultset.SyncMapper,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxOptimiserPasses <= 0 {
		o.MaxOptimiserPasses = 100
	}
	if o.Mapper == nil {
		o.Mapper = resultset.SyncMapper
	}
	return o
}
