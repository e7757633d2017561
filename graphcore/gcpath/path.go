// Package gcpath implements dotted property paths, the addressing scheme
// rules and clauses use to name values anywhere in a nested result tree.
//
// A Path is immutable once constructed; every method that looks like a
// mutation returns a new Path.
package gcpath

import "strings"

// Path is a sequence of dotted segments, e.g. "order.customer.name".
type Path struct {
	parts []string
}

// New parses a dotted path string into its segments. An empty string
// yields a zero-length Path.
func New(s string) Path {
	if s == "" {
		return Path{}
	}
	return Path{parts: strings.Split(s, ".")}
}

// FromParts builds a Path from already-split segments. The slice is
// copied so the caller may reuse it.
func FromParts(parts []string) Path {
	if len(parts) == 0 {
		return Path{}
	}
	cp := make([]string, len(parts))
	copy(cp, parts)
	return Path{parts: cp}
}

// Len reports the number of segments.
func (p Path) Len() int {
	return len(p.parts)
}

// Parts returns a copy of the segments.
func (p Path) Parts() []string {
	cp := make([]string, len(p.parts))
	copy(cp, p.parts)
	return cp
}

// At returns the segment at index i. Negative indices count from the end,
// mirroring the original path indexing.
func (p Path) At(i int) string {
	if i < 0 {
		i += len(p.parts)
	}
	return p.parts[i]
}

// Property is the final segment of the path.
func (p Path) Property() string {
	if len(p.parts) == 0 {
		return ""
	}
	return p.parts[len(p.parts)-1]
}

// Relative is the last two segments of the path, or the whole path if it
// has fewer than two segments. It names a rule's output relative to its
// immediate parent.
func (p Path) Relative() Path {
	if len(p.parts) <= 2 {
		return p
	}
	return FromParts(p.parts[len(p.parts)-2:])
}

// Subpaths enumerates every way to split off a trailing suffix of at
// least two segments, shortest suffix first. Each entry is the
// (prefix, suffix) pair for one split point. A path shorter than two
// segments yields nothing.
func (p Path) Subpaths() []Subpath {
	n := len(p.parts)
	if n < 2 {
		return nil
	}
	out := make([]Subpath, 0, n-1)
	for suffixLen := 2; suffixLen <= n; suffixLen++ {
		i := n - suffixLen
		out = append(out, Subpath{
			Prefix: FromParts(p.parts[:i]),
			Suffix: FromParts(p.parts[i:]),
		})
	}
	return out
}

// Subpath is one (prefix, suffix) split produced by Subpaths.
type Subpath struct {
	Prefix Path
	Suffix Path
}

// Tail drops the first segment, e.g. Tail of Path("book.id") is
// Path("id"). A path with fewer than two segments yields a zero Path.
func (p Path) Tail() Path {
	if len(p.parts) <= 1 {
		return Path{}
	}
	return FromParts(p.parts[1:])
}

// SubpathFrom strips root's segments from the front of p, e.g.
// Path("order.customer.name").SubpathFrom(Path("order")) is
// Path("customer.name"). It panics if root is not a prefix of p.
func (p Path) SubpathFrom(root Path) Path {
	if root.Len() == 0 {
		return p
	}
	if root.Len() > len(p.parts) {
		panic("gcpath: root longer than path")
	}
	for i, seg := range root.parts {
		if p.parts[i] != seg {
			panic("gcpath: root is not a prefix of path")
		}
	}
	return FromParts(p.parts[root.Len():])
}

// HasPrefix reports whether root's segments are a prefix of p.
func (p Path) HasPrefix(root Path) bool {
	if root.Len() > len(p.parts) {
		return false
	}
	for i, seg := range root.parts {
		if p.parts[i] != seg {
			return false
		}
	}
	return true
}

// Append returns a new path with extra segments appended.
func (p Path) Append(extra ...string) Path {
	out := make([]string, 0, len(p.parts)+len(extra))
	out = append(out, p.parts...)
	out = append(out, extra...)
	return FromParts(out)
}

// Concat returns a new path with other's segments appended.
func (p Path) Concat(other Path) Path {
	return p.Append(other.parts...)
}

// IsZero reports whether the path has no segments.
func (p Path) IsZero() bool {
	return len(p.parts) == 0
}

// Equal reports whether two paths have identical segments.
func (p Path) Equal(other Path) bool {
	if len(p.parts) != len(other.parts) {
		return false
	}
	for i, seg := range p.parts {
		if seg != other.parts[i] {
			return false
		}
	}
	return true
}

// Less provides a total order over paths, used to keep call graph node
// path lists in a deterministic order.
func (p Path) Less(other Path) bool {
	return p.String() < other.String()
}

// String renders the path with its original dotted notation.
func (p Path) String() string {
	return strings.Join(p.parts, ".")
}
