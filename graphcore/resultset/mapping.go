package resultset

import (
	"strings"

	"github.com/wbrown/graphcore/graphcore/gcpath"
	"github.com/wbrown/graphcore/graphcore/rule"
)

// maxMappingDepth bounds inputMapping's widening recursion, the same
// bounded-retry idiom used by optimizer.Fuse: two distinct full paths
// can always be told apart by widening far enough, so hitting the bound
// means duplicate full-path keys were passed in, not a real collision.
const maxMappingDepth = 16

// shortenScope derives the short kwarg-style names a rule.Function is
// invoked with from the full dotted paths accumulated in scope, then
// rekeys scope by them. Grounded on result_set.py's input_mapping/
// _simplify_scope: use only the rightmost segment of a path if it's
// unique among the other paths in scope; on a collision, widen to the
// rightmost two segments, joined with "_", then three, and so on.
//
// This differs from the source in one respect: input_mapping there
// operates on scope keys that apply_rule has already collapsed to a
// bare final segment, so collisions can never actually be detected —
// by the time two inputs reach the same name they've already lost the
// path information needed to tell them apart. This package keeps each
// input's full original path as its scope key until this point
// specifically so the widening can do its job.
func shortenScope(scope map[string]interface{}) rule.Args {
	keys := make([]string, 0, len(scope))
	for k := range scope {
		keys = append(keys, k)
	}
	mapping := inputMapping(keys)

	args := make(rule.Args, len(scope))
	for k, v := range scope {
		args[mapping[k]] = v
	}
	return args
}

func inputMapping(keys []string) map[string]string {
	return mapPaths(keys, 1, 0)
}

// InputMapping exposes the same widening algorithm to callers outside
// this package, keyed by each input's dotted string form, so a Native
// rule value (e.g. sqlfn.SQLQuery) can precompute at construction time
// the exact short argument name shortenScope will bind each of its
// declared inputs to at invocation time — a rule's own Inputs list is
// scope's only source for a single ApplyRule call, so this is fully
// determined in advance.
func InputMapping(inputs []gcpath.Path) map[string]string {
	keys := make([]string, len(inputs))
	for i, p := range inputs {
		keys[i] = p.String()
	}
	return inputMapping(keys)
}

func mapPaths(keys []string, parts, depth int) map[string]string {
	if depth > maxMappingDepth {
		mapping := make(map[string]string, len(keys))
		for _, k := range keys {
			mapping[k] = k
		}
		return mapping
	}

	var order []string
	groups := map[string][]string{}
	for _, k := range keys {
		short := rightmost(gcpath.New(k), parts)
		if _, ok := groups[short]; !ok {
			order = append(order, short)
		}
		groups[short] = append(groups[short], k)
	}

	mapping := make(map[string]string, len(keys))
	for _, short := range order {
		ks := groups[short]
		if len(ks) == 1 {
			mapping[ks[0]] = short
			continue
		}
		for k, v := range mapPaths(ks, parts+1, depth+1) {
			mapping[k] = v
		}
	}
	return mapping
}

func rightmost(p gcpath.Path, n int) string {
	segs := p.Parts()
	if n > len(segs) {
		n = len(segs)
	}
	return strings.Join(segs[len(segs)-n:], "_")
}
