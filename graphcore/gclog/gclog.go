// Package gclog is the thin structured-event tracing layer search,
// optimizer, and planner emit into: an Event struct and a Collector
// interface, mirroring the teacher's datalog/annotations.Event /
// datalog/executor.Context pattern without pulling in a logging
// framework, since the teacher doesn't use one either.
package gclog

import "time"

// Event name constants, following the teacher's hierarchical
// "component/action" naming (datalog/annotations.types.go).
const (
	SearchClauseGrounded = "search/clause.grounded"
	SearchFailed         = "search/failed"

	OptimizerFusionApplied   = "optimizer/fusion.applied"
	OptimizerPushDownApplied = "optimizer/pushdown.applied"

	PlannerNodeScheduled = "planner/node.scheduled"

	ResultSetRuleApplied = "resultset/rule.applied"
)

// Event is one structured record of a major step of query search,
// optimisation, planning, or execution.
type Event struct {
	Name    string
	Start   time.Time
	Latency time.Duration
	Data    map[string]interface{}
}

// Collector receives Events as they occur. search.Search, optimizer.Fuse,
// optimizer.PushDownRelations, and planner.Plan each take an optional,
// variadic Collector; passing none (or nil) costs nothing beyond the
// check itself, exactly as the teacher's BaseContext is a zero-overhead
// no-op when annotations aren't wired up.
type Collector interface {
	Collect(Event)
}

// CollectorFunc adapts a plain function to a Collector.
type CollectorFunc func(Event)

// Collect implements Collector.
func (f CollectorFunc) Collect(e Event) { f(e) }

// Pick returns the first non-nil collector in collectors, or nil if
// there isn't one — the helper every optional-collector parameter in
// this module resolves its variadic argument through.
func Pick(collectors ...Collector) Collector {
	for _, c := range collectors {
		if c != nil {
			return c
		}
	}
	return nil
}

// Timed starts a timer and returns a function that, when called, emits
// one Event against c with Latency filled in. Calling the returned
// function is always safe; if c is nil it does nothing.
func Timed(c Collector, name string, data map[string]interface{}) func() {
	if c == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		c.Collect(Event{Name: name, Start: start, Latency: time.Since(start), Data: data})
	}
}
