package rule

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/wbrown/graphcore/graphcore/gcpath"
)

// ErrPathNotFound is returned by Lookup when no registered rule's output
// matches path under any schema-adjusted suffix. Callers (graphcore.Engine)
// wrap this with the partial call graph and dependent-node diagnostics.
var ErrPathNotFound = errors.New("rule: no rule produces this path")

// BaseTypeNotFoundError is returned instead of ErrPathNotFound when lookup
// fails and an intermediate segment of path was never declared as a base
// type by any registered rule's output.
type BaseTypeNotFoundError struct {
	Path    gcpath.Path
	Segment string
}

func (e *BaseTypeNotFoundError) Error() string {
	return fmt.Sprintf("rule: %q is not a declared base type (looking up %s)", e.Segment, e.Path)
}

// Registry holds every registered Rule plus the Schema used to resolve
// type-qualified paths against them.
type Registry struct {
	schema *Schema
	rules  []*Rule
	byOut  map[string][]*Rule
}

// NewRegistry builds an empty registry with its own schema.
func NewRegistry() *Registry {
	return &Registry{
		schema: NewSchema(),
		byOut:  make(map[string][]*Rule),
	}
}

// Schema returns the registry's type schema, for PropertyType registration.
func (r *Registry) Schema() *Schema {
	return r.schema
}

// PropertyType is a convenience forwarder to Schema().PropertyType.
func (r *Registry) PropertyType(baseType, property, otherType string) {
	r.schema.PropertyType(baseType, property, otherType)
}

// pathsOf normalizes the loose `output` argument of Register (a single
// path string or a slice of them) into a slice of Paths.
func pathsOf(v interface{}) ([]gcpath.Path, error) {
	switch vv := v.(type) {
	case string:
		return []gcpath.Path{gcpath.New(vv)}, nil
	case []string:
		out := make([]gcpath.Path, len(vv))
		for i, s := range vv {
			out[i] = gcpath.New(s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("rule: output must be a string or []string, got %T", v)
	}
}

// Register declares a new rule. output may be a single path string or a
// []string of several output paths (a multi-output rule). cardinality may
// be passed as rule.One/rule.Many or anything ParseCardinality accepts.
func (r *Registry) Register(inputs []string, output interface{}, cardinality interface{}, fn Function) (*Rule, error) {
	card, err := ParseCardinality(cardinality)
	if err != nil {
		return nil, err
	}
	outputs, err := pathsOf(output)
	if err != nil {
		return nil, err
	}
	inPaths := make([]gcpath.Path, len(inputs))
	for i, s := range inputs {
		inPaths[i] = gcpath.New(s)
	}

	rl := &Rule{Inputs: inPaths, Outputs: outputs, Cardinality: card, Function: fn}
	r.add(rl)
	return rl, nil
}

// DirectMap registers a zero-logic passthrough rule: output equals input,
// a convenience for type aliases that need no real computation.
func (r *Registry) DirectMap(input, output string) (*Rule, error) {
	return r.Register([]string{input}, output, One, func(args Args) (interface{}, error) {
		for _, v := range args {
			return v, nil
		}
		return nil, fmt.Errorf("rule: direct_map %s->%s called with no bound input", input, output)
	})
}

func (r *Registry) add(rl *Rule) {
	r.rules = append(r.rules, rl)
	for _, out := range rl.Outputs {
		key := out.String()
		r.byOut[key] = append(r.byOut[key], rl)
	}
}

// Lookup implements schema-aware rule lookup (component 4.1): it tries
// every suffix split of path, longest suffix first, requiring a non-empty
// input list whenever the split is not the top level (an empty prefix).
// Away from the top level the suffix's first segment is the typed
// property: prefix plus that segment is resolved through the schema and
// replaces it, so "user.books.name" with user.books -> book matches a rule
// for "book.name", and the returned prefix is "user.books".
func (r *Registry) Lookup(path gcpath.Path) (gcpath.Path, *Rule, error) {
	for _, sub := range reversedSubpaths(path) {
		prefix, suffix := sub.Prefix, sub.Suffix
		requireInput := prefix.Len() != 0

		var adjusted gcpath.Path
		if prefix.Len() == 0 {
			adjusted = suffix
		} else {
			prefix = prefix.Append(suffix.At(0))
			baseType := r.schema.ResolveType(prefix)
			rest := suffix.Parts()[1:]
			adjusted = gcpath.FromParts(append([]string{baseType}, rest...))
		}

		if rl, ok := r.lookupByOutput(adjusted, requireInput); ok {
			return prefix, rl, nil
		}
	}

	return gcpath.Path{}, nil, r.notFoundError(path)
}

func (r *Registry) lookupByOutput(path gcpath.Path, requireInput bool) (*Rule, bool) {
	for _, rl := range r.byOut[path.String()] {
		if requireInput && len(rl.Inputs) == 0 {
			continue
		}
		return rl, true
	}
	return nil, false
}

func reversedSubpaths(path gcpath.Path) []gcpath.Subpath {
	subs := path.Subpaths()
	out := make([]gcpath.Subpath, len(subs))
	for i, s := range subs {
		out[len(subs)-1-i] = s
	}
	return out
}

// notFoundError walks path's segments left to right, checking each
// growing dotted prefix (not just the bare segment) against BaseTypes:
// an output "user.books.id" declares both "user" and "user.books" as
// known prefixes, so a lookup miss under the known "user.books" type
// (e.g. "user.books.title") is a plain not-found, while a miss under an
// undeclared prefix (e.g. "widget.color") is a BaseTypeNotFoundError.
func (r *Registry) notFoundError(path gcpath.Path) error {
	baseSet := make(map[string]bool)
	for _, b := range r.BaseTypes() {
		baseSet[b] = true
	}

	parts := path.Parts()
	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], ".")
		if !baseSet[prefix] {
			return &BaseTypeNotFoundError{Path: path, Segment: parts[i-1]}
		}
	}
	return fmt.Errorf("%w: %s", ErrPathNotFound, path)
}

// BaseTypes returns every non-leaf dotted prefix appearing in a
// registered rule's output paths — e.g. output "user.books.id"
// contributes both "user" and "user.books" — the set of declared
// intermediate types notFoundError checks a query path's prefixes
// against. Grounded on graphcore.py's base_types(), which collects
// Path(output)[:-1] (every prefix short of the full path) for each
// registered output.
func (r *Registry) BaseTypes() []string {
	seen := make(map[string]bool)
	for _, rl := range r.rules {
		for _, out := range rl.Outputs {
			parts := out.Parts()
			for i := 1; i < len(parts); i++ {
				seen[strings.Join(parts[:i], ".")] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// SearchOutputs lists distinct registered output paths containing search
// as a substring, used to suggest near-miss paths in PathNotFoundError
// diagnostics.
func (r *Registry) SearchOutputs(search string) []string {
	seen := make(map[string]bool)
	var out []string
	for key := range r.byOut {
		if strings.Contains(key, search) && !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}
