package v1alpha1

import (
	"encoding/json"
	"fmt"
)

// combinatorTypes is the fixed set of step types the runner intercepts
// before handing off to the dispatcher. Everything else is a leaf.
var combinatorTypes = map[string]bool{
	"if":          true,
	"when":        true,
	"loop":        true,
	"loopNodes":   true,
	"parallel":    true,
	"retry":       true,
	"onError":     true,
	"includeFlow": true,
}

// Step is a polymorphic step record discriminated by Type. Every variant's
// own fields live in Body, keyed exactly as they appear in the flow's YAML.
//
// Step is decoded from, and re-encoded to, a plain map so that rendering
// (pkg/templating) can walk it generically without per-step-type schemas.
type Step struct {
	Type string
	Body map[string]interface{}
}

// UnmarshalJSON decodes a step as a raw object, pulling out "type" and
// keeping every field (type included) in Body so re-marshalling round-trips.
func (s *Step) UnmarshalJSON(data []byte) error {
	var body map[string]interface{}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	t, _ := body["type"].(string)
	if t == "" {
		return fmt.Errorf("step.type is required")
	}
	s.Type = t
	s.Body = body
	return nil
}

// MarshalJSON re-encodes Body (which always carries "type").
func (s Step) MarshalJSON() ([]byte, error) {
	if s.Body == nil {
		return json.Marshal(map[string]interface{}{"type": s.Type})
	}
	return json.Marshal(s.Body)
}

// IsCombinator reports whether the runner handles this step type itself
// rather than delegating to the leaf dispatcher.
func (s Step) IsCombinator() bool {
	return combinatorTypes[s.Type]
}

// Clone returns a deep copy of the step so renderers never mutate the
// caller's copy (spec invariant: rendering is pure).
func (s Step) Clone() Step {
	return Step{Type: s.Type, Body: deepCopyMap(s.Body)}
}

// AsNode exposes the step body as a generic node for pkg/templating's
// DeepRender, and FromNode converts the rendered node back.
func (s Step) AsNode() map[string]interface{} {
	return s.Body
}

// FromNode rebuilds a Step from a rendered body map (as produced by
// templating.DeepRender on the result of AsNode).
func FromNode(node map[string]interface{}) (Step, error) {
	t, _ := node["type"].(string)
	if t == "" {
		return Step{}, fmt.Errorf("step.type is required")
	}
	return Step{Type: t, Body: node}, nil
}

func deepCopyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}

// --- typed field accessors -------------------------------------------------
//
// These return a default for an absent or mistyped field and never fail;
// pkg/steps' requireString/requireMap turn a missing required field into
// errs.BadStep.

// GetString returns body[key] as a string, or def if absent/wrong type.
func (s Step) GetString(key, def string) string {
	if v, ok := s.Body[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return def
}

// GetInt returns body[key] as an int, or def if absent/wrong type. JSON
// numbers decode as float64, so that case is handled explicitly.
func (s Step) GetInt(key string, def int) int {
	switch v := s.Body[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return def
}

// GetBool returns body[key] as a bool, or def if absent/wrong type.
func (s Step) GetBool(key string, def bool) bool {
	if v, ok := s.Body[key].(bool); ok {
		return v
	}
	return def
}

// GetMap returns body[key] as a map[string]interface{}, or nil if absent.
func (s Step) GetMap(key string) map[string]interface{} {
	if v, ok := s.Body[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}

// GetStringMap returns body[key] coerced to map[string]string.
func (s Step) GetStringMap(key string) map[string]string {
	raw := s.GetMap(key)
	if raw == nil {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}

// GetStringSlice returns body[key] as a []string, accepting a YAML/JSON
// array of strings.
func (s Step) GetStringSlice(key string) []string {
	raw, ok := s.Body[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, fmt.Sprintf("%v", v))
	}
	return out
}

// Steps returns body[key] decoded as a []Step, used for "steps", "then",
// "else" fields.
func (s Step) Steps(key string) ([]Step, error) {
	raw, ok := s.Body[key].([]interface{})
	if !ok {
		return nil, nil
	}
	out := make([]Step, 0, len(raw))
	for _, v := range raw {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: expected a step object, got %T", key, v)
		}
		st, err := FromNode(m)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// StepGroups returns body[key] decoded as [][]Step, used by `parallel.steps`
// (a sequence of step-sequences).
func (s Step) StepGroups(key string) ([][]Step, error) {
	raw, ok := s.Body[key].([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: expected a list of step-lists", key)
	}
	groups := make([][]Step, 0, len(raw))
	for _, g := range raw {
		list, ok := g.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: expected a list of step-lists", key)
		}
		group := make([]Step, 0, len(list))
		for _, v := range list {
			m, ok := v.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: expected a step object, got %T", key, v)
			}
			st, err := FromNode(m)
			if err != nil {
				return nil, err
			}
			group = append(group, st)
		}
		groups = append(groups, group)
	}
	return groups, nil
}
