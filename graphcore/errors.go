package graphcore

import (
	"errors"
	"fmt"

	"github.com/wbrown/graphcore/graphcore/callgraph"
	"github.com/wbrown/graphcore/graphcore/gcpath"
	"github.com/wbrown/graphcore/graphcore/gcquery"
	"github.com/wbrown/graphcore/graphcore/optimizer"
	"github.com/wbrown/graphcore/graphcore/planner"
	"github.com/wbrown/graphcore/graphcore/resultset"
	"github.com/wbrown/graphcore/graphcore/rule"
	"github.com/wbrown/graphcore/graphcore/search"
)

// ErrNoResult is resultset.ErrNoResult re-exported at the façade level,
// so a caller writing a rule.Function never needs to import resultset
// just to signal "drop this record".
var ErrNoResult = resultset.ErrNoResult

// PathNotFoundError reports that no registered rule's output matches
// the requested path under any schema-adjusted suffix. Suggestions
// lists near-miss registered outputs (rule.Registry.SearchOutputs on
// the path's final segment) to help a caller spot a typo.
type PathNotFoundError struct {
	Path           gcpath.Path
	DependentNodes []*callgraph.Node
	Suggestions    []string
}

func (e *PathNotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("graphcore: no rule produces %s", e.Path)
	}
	return fmt.Sprintf("graphcore: no rule produces %s (did you mean one of: %v?)", e.Path, e.Suggestions)
}

// BaseTypeNotFoundError reports that an intermediate segment of the
// requested path was never declared as a base type by any registered
// rule's output — a stronger diagnosis than PathNotFoundError, since it
// identifies exactly which segment is unrecognized rather than the
// whole path.
type BaseTypeNotFoundError struct {
	Path    gcpath.Path
	Segment string
}

func (e *BaseTypeNotFoundError) Error() string {
	return fmt.Sprintf("graphcore: %q is not a declared base type (looking up %s)", e.Segment, e.Path)
}

// RuleApplicationError reports that a rule's Function returned an error
// other than ErrNoResult while applying the plan over a result set.
type RuleApplicationError struct {
	Scope rule.Args
	Err   error
}

func (e *RuleApplicationError) Error() string {
	return fmt.Sprintf("graphcore: rule application failed with scope %v: %v", e.Scope, e.Err)
}

func (e *RuleApplicationError) Unwrap() error {
	return e.Err
}

// PlannerCycleError reports that the planner found no ready node in a
// pass while nodes remained — a cycle in the call graph, or a node
// whose input is never produced by anything.
type PlannerCycleError struct {
	Remaining []*callgraph.Node
}

func (e *PlannerCycleError) Error() string {
	return fmt.Sprintf("graphcore: %d node(s) never became ready; check for a cycle or a missing producer", len(e.Remaining))
}

// UnsupportedPlanError reports that a node combines Cardinality.Many
// with more than one output, a combination the planner rejects before
// execution rather than produce undefined results. Nodes produced by
// optimizer fusion are exempt.
type UnsupportedPlanError struct {
	Node *callgraph.Node
}

func (e *UnsupportedPlanError) Error() string {
	return fmt.Sprintf("graphcore: node %q combines many-cardinality with multiple outputs, which is unsupported", e.Node.Name())
}

// OptimiserLoopError reports that the fusion pass did not reach a fixed
// point within the configured pass bound.
type OptimiserLoopError struct {
	Passes int
}

func (e *OptimiserLoopError) Error() string {
	return fmt.Sprintf("graphcore: optimiser did not converge after %d passes", e.Passes)
}

// MergeConflictError reports that two ground clauses at the same path
// disagreed on their value while the query was being built.
type MergeConflictError struct {
	Path   gcpath.Path
	First  interface{}
	Second interface{}
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("graphcore: conflicting ground values at %s: %v != %v", e.Path, e.First, e.Second)
}

// wrapQueryError translates a gcquery construction failure into the
// façade's own typed error where one applies.
func wrapQueryError(err error) error {
	var mc *gcquery.MergeConflictError
	if errors.As(err, &mc) {
		return &MergeConflictError{Path: mc.Path, First: mc.First, Second: mc.Second}
	}
	return err
}

// wrapSearchError translates a search.Error — produced when backward
// chaining cannot find a rule for some clause — into PathNotFoundError
// or BaseTypeNotFoundError, the two diagnoses callers are expected to
// distinguish with errors.As.
func wrapSearchError(err error, registry *rule.Registry) error {
	var se *search.Error
	if !errors.As(err, &se) {
		return err
	}

	var bt *rule.BaseTypeNotFoundError
	if errors.As(se.Cause, &bt) {
		return &BaseTypeNotFoundError{Path: bt.Path, Segment: bt.Segment}
	}

	return &PathNotFoundError{
		Path:           se.Path,
		DependentNodes: se.DependentNodes,
		Suggestions:    registry.SearchOutputs(se.Path.Property()),
	}
}

// wrapOptimiserError translates an optimizer.LoopError into its façade
// equivalent.
func wrapOptimiserError(err error) error {
	var le *optimizer.LoopError
	if errors.As(err, &le) {
		return &OptimiserLoopError{Passes: le.Passes}
	}
	return err
}

// wrapPlannerError translates a planner.CycleError or
// planner.UnsupportedNodeError into its façade equivalent.
func wrapPlannerError(err error) error {
	var ce *planner.CycleError
	if errors.As(err, &ce) {
		return &PlannerCycleError{Remaining: ce.Remaining}
	}
	var ue *planner.UnsupportedNodeError
	if errors.As(err, &ue) {
		return &UnsupportedPlanError{Node: ue.Node}
	}
	return err
}

// wrapApplyError translates a resultset.RuleApplicationError into its
// façade equivalent. ErrNoResult is never wrapped — callers check it
// with errors.Is(err, graphcore.ErrNoResult) directly, and the engine
// never lets it escape Query/Explain in the first place (a rule's
// ErrNoResult return just drops the record).
func wrapApplyError(err error) error {
	var rae *resultset.RuleApplicationError
	if errors.As(err, &rae) {
		return &RuleApplicationError{Scope: rae.Scope, Err: rae.Err}
	}
	return err
}
