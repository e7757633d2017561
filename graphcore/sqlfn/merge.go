package sqlfn

import (
	"fmt"

	"github.com/wbrown/graphcore/graphcore/gcpath"
	"github.com/wbrown/graphcore/graphcore/optimizer"
)

// Merge implements optimizer.Fusible: q is always the parent (the setter
// of the shared edge — see optimizer.Fuse), child the getter that
// consumes it. Delegates to MergeParentChild.
func (q *SQLQuery) Merge(child optimizer.Fusible) (optimizer.Fusible, error) {
	c, ok := child.(*SQLQuery)
	if !ok {
		return nil, fmt.Errorf("sqlfn: cannot merge SQLQuery with %T", child)
	}
	return MergeParentChild(q, c)
}

// MergeParentChild combines parent (the query that produces the shared
// path) and child (the query that consumes it as one of its own inputs)
// into a single query that joins both tables and drops the now-internal
// edge from its declared inputs. Grounded on sql_query.py's
// SQLQuery.merge_parent_child, with parent/child named for the
// call-graph roles documented in optimizer.Fuse (SPEC_FULL.md's Open
// Question 2) rather than the source's own swapped internal parameter
// names.
//
// This also fixes a latent bug in the source: merge_parent_child's
// tables/where/selects merge sits inside the loop over the consumer's
// input_mapping, so a consumer with more than one input bound to the
// same producer would fold the producer's selects into the merged query
// once per such input instead of once. Here the merge happens once,
// before the per-input join-condition loop.
func MergeParentChild(parent, child *SQLQuery) (*SQLQuery, error) {
	if err := parent.assertFlattenable(); err != nil {
		return nil, fmt.Errorf("sqlfn: merge: parent: %w", err)
	}
	if err := child.assertFlattenable(); err != nil {
		return nil, fmt.Errorf("sqlfn: merge: child: %w", err)
	}

	merged := child.Copy()
	merged.Tables = unionStrings(parent.Tables, child.Tables)
	merged.Selects = append(append([]string{}, parent.Selects...), child.Selects...)
	merged.OutputPaths = append(append([]gcpath.Path{}, parent.OutputPaths...), child.OutputPaths...)
	merged.Where = make(map[string]interface{}, len(parent.Where)+len(child.Where))
	for k, v := range parent.Where {
		merged.Where[k] = v
	}
	for k, v := range child.Where {
		merged.Where[k] = v
	}

	for argName, whereKey := range child.InputMapping {
		connecting, ok := child.InputPaths[argName]
		if !ok {
			return nil, fmt.Errorf("sqlfn: merge: child has no declared path for input %q", argName)
		}
		idx := indexOfPath(parent.OutputPaths, connecting)
		if idx < 0 {
			// Not every one of the child's inputs need come from this
			// parent; leave it bound at invocation time as before.
			continue
		}
		merged.Where[whereKey] = ColumnRef(parent.Selects[idx])
	}

	merged.cleanup()
	merged.InputMapping = copyStringMap(parent.InputMapping)
	merged.InputPaths = copyPathMap(parent.InputPaths)
	merged.OneColumn = false
	merged.First = false

	return merged, nil
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyPathMap(m map[string]gcpath.Path) map[string]gcpath.Path {
	out := make(map[string]gcpath.Path, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
