package resultset

import (
	"github.com/wbrown/graphcore/graphcore/gcpath"
)

// ShapePath splits path into the subpaths that match shape's nesting,
// shortest prefix first, so each returned segment names exactly one
// hop across a ResultSet boundary. Grounded on result_set.py's
// shape_path/_subpaths.
//
// shape is either nil (no shaping information; path is returned whole),
// a map[string]interface{} keyed by the dotted string of a sub-path
// (a nesting boundary — gcquery.Query.Shape's own representation), or a
// non-empty []interface{} whose first element is unwrapped and matched
// against (gcquery's one-element-list marker for a one-to-many
// relationship).
func ShapePath(path gcpath.Path, shape interface{}) []gcpath.Path {
	switch s := shape.(type) {
	case []interface{}:
		if len(s) == 0 {
			return []gcpath.Path{path}
		}
		return ShapePath(path, s[0])

	case map[string]interface{}:
		for _, sp := range subpaths(path) {
			sub, ok := s[sp.Prefix.String()]
			if !ok || sub == nil {
				continue
			}
			rest := ShapePath(sp.Suffix, sub)
			return append([]gcpath.Path{sp.Prefix}, rest...)
		}
		return []gcpath.Path{path}

	default:
		return []gcpath.Path{path}
	}
}

// subpaths yields every (prefix, suffix) split of path, shortest prefix
// first, including the empty-prefix/whole-path split.
func subpaths(path gcpath.Path) []gcpath.Subpath {
	parts := path.Parts()
	out := make([]gcpath.Subpath, 0, len(parts))
	for i := 0; i < len(parts); i++ {
		out = append(out, gcpath.Subpath{
			Prefix: gcpath.FromParts(parts[:i]),
			Suffix: gcpath.FromParts(parts[i:]),
		})
	}
	return out
}
