// Package templating implements the flow engine's `${name}` variable
// substitution: a pure, non-mutating find-and-replace over string leaves of
// an arbitrarily nested step body.
package templating

import "regexp"

// varRef matches ${name} where name is a valid variable identifier.
var varRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Render substitutes every ${name} occurrence in s against vars. A reference
// to an undefined name is left verbatim, unresolved.
func Render(s string, vars map[string]string) string {
	return varRef.ReplaceAllStringFunc(s, func(match string) string {
		name := varRef.FindStringSubmatch(match)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return match
	})
}

// DeepRender walks an arbitrarily nested mapping/sequence/scalar node,
// applying Render to every string leaf and recursing into maps and slices.
// Numbers, booleans, and nil pass through unchanged. The input node is never
// mutated; DeepRender always returns a new tree.
func DeepRender(node interface{}, vars map[string]string) interface{} {
	switch v := node.(type) {
	case string:
		return Render(v, vars)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[k] = DeepRender(val, vars)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = DeepRender(val, vars)
		}
		return out
	default:
		return v
	}
}
