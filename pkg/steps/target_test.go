package steps

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/errs"
)

func TestResourceRefFromMap(t *testing.T) {
	t.Run("defaults apiVersion to v1 and namespace to defaultNS", func(t *testing.T) {
		ref := resourceRefFromMap(map[string]interface{}{
			"kind": "ConfigMap",
			"name": "app-config",
		}, "ops")
		assert.Equal(t, "v1", ref.APIVersion)
		assert.Equal(t, "ConfigMap", ref.Kind)
		assert.Equal(t, "app-config", ref.Name)
		assert.Equal(t, "ops", ref.Namespace)
	})

	t.Run("explicit apiVersion and namespace win", func(t *testing.T) {
		ref := resourceRefFromMap(map[string]interface{}{
			"apiVersion": "apps/v1",
			"kind":       "Deployment",
			"name":       "web",
			"namespace":  "prod",
		}, "ops")
		assert.Equal(t, "apps/v1", ref.APIVersion)
		assert.Equal(t, "prod", ref.Namespace)
	})
}

func TestRequireString(t *testing.T) {
	s := v1alpha1.Step{Type: "applyFile", Body: map[string]interface{}{"path": "/tmp/a.yaml"}}
	v, err := requireString(s, "path")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/a.yaml", v)

	_, err = requireString(s, "missing")
	require.Error(t, err)
	var bad *errs.BadStep
	assert.True(t, errors.As(err, &bad))
	assert.Equal(t, "applyFile", bad.StepType)
	assert.Equal(t, "missing", bad.Field)
}

func TestRequireMap(t *testing.T) {
	s := v1alpha1.Step{Type: "setLabel", Body: map[string]interface{}{
		"target": map[string]interface{}{"kind": "Pod"},
	}}
	m, err := requireMap(s, "target")
	require.NoError(t, err)
	assert.Equal(t, "Pod", m["kind"])

	_, err = requireMap(s, "missing")
	assert.Error(t, err)
}

func TestRejectRemote(t *testing.T) {
	assert.NoError(t, rejectRemote("applyFile", "/local/path.yaml"))
	assert.Error(t, rejectRemote("applyFile", "http://example.com/a.yaml"))
	assert.Error(t, rejectRemote("applyFile", "https://example.com/a.yaml"))
}

func TestLabelSelectorString(t *testing.T) {
	sel := labelSelectorString(map[string]string{"tier": "gold", "zone": "eu"})
	assert.Contains(t, sel, "tier=gold")
	assert.Contains(t, sel, "zone=eu")

	assert.Equal(t, "", labelSelectorString(nil))
}
