package naming

import (
	"strings"
)

const separator = "|"

// Options controls how node paths read from an animation file are remapped
// onto the target scene
type Options struct {
	Search           string
	Replace          string
	UseSearchReplace bool

	Prefix       string
	TopNodesOnly bool

	// LoadPaths keeps full hierarchy paths; when false only the leaf name is kept
	LoadPaths bool
}

// Scope is the channel set a record must belong to when scoping is active
type Scope interface {
	IsSelected(key string) bool
}

// Result is a remapped record target
type Result struct {
	Node      string
	Attribute string
	// Skip is set when the record is outside the active channel scope
	Skip bool
}

// Transformer applies the search/replace, prefix and path policy to node paths
type Transformer struct {
	opts Options
}

// NewTransformer creates a transformer for the given options
func NewTransformer(opts Options) *Transformer {
	return &Transformer{opts: opts}
}

// Options returns the options the transformer was built with
func (t *Transformer) Options() Options {
	return t.opts
}

// Transform remaps one node path. The order is fixed: replace, prefix, collapse.
func (t *Transformer) Transform(path string, hasParent bool) string {
	if t.opts.UseSearchReplace && t.opts.Search != "" {
		path = strings.ReplaceAll(path, t.opts.Search, t.opts.Replace)
	}

	if t.opts.Prefix != "" {
		if t.opts.TopNodesOnly {
			path = PrefixTopNode(path, t.opts.Prefix, hasParent)
		} else {
			path = PrefixAll(path, t.opts.Prefix)
		}
	}

	if !t.opts.LoadPaths {
		path = Collapse(path)
	}

	return path
}

// Remap transforms a record's node and tests the channel scope.
// A nil scope means scoping is off and every record passes.
func (t *Transformer) Remap(node, attribute string, hasParent bool, scope Scope) Result {
	res := Result{
		Node:      t.Transform(node, hasParent),
		Attribute: attribute,
	}
	if scope != nil && !scope.IsSelected(Key(res.Node, res.Attribute)) {
		res.Skip = true
	}
	return res
}

// Key builds the "{node}.{attribute}" scope key
func Key(node, attribute string) string {
	return node + "." + attribute
}

// PrefixAll prefixes every segment of a path. A full path keeps its leading
// separator, empty segments are dropped: "|a|b" -> "|p_a|p_b".
func PrefixAll(path, prefix string) string {
	if !strings.Contains(path, separator) {
		return prefix + path
	}
	var b strings.Builder
	for _, segment := range strings.Split(path, separator) {
		if segment == "" {
			continue
		}
		b.WriteString(separator)
		b.WriteString(prefix)
		b.WriteString(segment)
	}
	return b.String()
}

// PrefixTopNode prefixes only the top-most node present in the path.
// With a hierarchy path that is the first segment whatever hasParent says.
// A bare name is prefixed only when the node has no parent, since a bare child
// name does not contain its top node.
func PrefixTopNode(path, prefix string, hasParent bool) string {
	if !strings.Contains(path, separator) {
		if hasParent {
			return path
		}
		return prefix + path
	}

	segments := strings.Split(path, separator)
	for i, segment := range segments {
		if segment != "" {
			segments[i] = prefix + segment
			break
		}
	}
	return strings.Join(segments, separator)
}

// Collapse returns the last segment of a hierarchy path
func Collapse(path string) string {
	if i := strings.LastIndex(path, separator); i >= 0 {
		return path[i+1:]
	}
	return path
}
