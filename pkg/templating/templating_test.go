package templating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		in   string
		vars map[string]string
		want string
	}{
		{
			name: "no references returned unchanged",
			in:   "hello world",
			vars: map[string]string{"greeting": "hi"},
			want: "hello world",
		},
		{
			name: "single substitution",
			in:   "${greeting}, friend",
			vars: map[string]string{"greeting": "hi"},
			want: "hi, friend",
		},
		{
			name: "unresolved reference kept verbatim",
			in:   "${x}",
			vars: map[string]string{},
			want: "${x}",
		},
		{
			name: "mixed resolved and unresolved",
			in:   "${x}-${y}",
			vars: map[string]string{"y": "b"},
			want: "${x}-b",
		},
		{
			name: "underscore and digits in name",
			in:   "${_item_2}",
			vars: map[string]string{"_item_2": "ok"},
			want: "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.in, tt.vars)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_Idempotent(t *testing.T) {
	vars := map[string]string{"x": "value-with-${braces}-looking-text"}
	s := "prefix-${x}-suffix"
	once := Render(s, vars)
	twice := Render(once, vars)
	assert.Equal(t, once, twice)
}

func TestDeepRender_NestedStructures(t *testing.T) {
	vars := map[string]string{"name": "cm1", "ns": "default"}
	node := map[string]interface{}{
		"kind": "ConfigMap",
		"metadata": map[string]interface{}{
			"name":      "${name}",
			"namespace": "${ns}",
		},
		"tags": []interface{}{"${name}", "static"},
		"replicas": float64(3),
		"enabled":  true,
		"nilField": nil,
	}

	rendered := DeepRender(node, vars).(map[string]interface{})
	assert.Equal(t, "ConfigMap", rendered["kind"])
	meta := rendered["metadata"].(map[string]interface{})
	assert.Equal(t, "cm1", meta["name"])
	assert.Equal(t, "default", meta["namespace"])
	tags := rendered["tags"].([]interface{})
	assert.Equal(t, "cm1", tags[0])
	assert.Equal(t, "static", tags[1])
	assert.Equal(t, float64(3), rendered["replicas"])
	assert.Equal(t, true, rendered["enabled"])
	assert.Nil(t, rendered["nilField"])
}

func TestDeepRender_DoesNotMutateInput(t *testing.T) {
	vars := map[string]string{"x": "rendered"}
	inner := map[string]interface{}{"v": "${x}"}
	node := map[string]interface{}{"inner": inner}

	_ = DeepRender(node, vars)

	assert.Equal(t, "${x}", inner["v"], "DeepRender must not mutate its input")
}
