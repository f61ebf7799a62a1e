package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/condition"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/dispatch"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/flowcontext"
)

func init() {
	dispatch.Register("engineTestFail", func(context.Context, v1alpha1.Step, *flowcontext.Context) error {
		return errors.New("engine test failure")
	})
	dispatch.Register("engineTestNoop", func(context.Context, v1alpha1.Step, *flowcontext.Context) error {
		return nil
	})
}

func newTestContext() *flowcontext.Context {
	return flowcontext.New(nil, "default", "default", map[string]string{"name": "world"})
}

func TestHasOnErrorNext(t *testing.T) {
	steps := []v1alpha1.Step{{Type: "log"}, {Type: "onError"}, {Type: "log"}}
	assert.True(t, hasOnErrorNext(steps, 0))
	assert.False(t, hasOnErrorNext(steps, 1))
	assert.False(t, hasOnErrorNext(steps, 2))
}

func TestStringField(t *testing.T) {
	assert.Equal(t, "x", stringField("x", "def"))
	assert.Equal(t, "def", stringField("", "def"))
	assert.Equal(t, "def", stringField(nil, "def"))
	assert.Equal(t, "def", stringField(42, "def"))
}

func TestSelectorFromBody(t *testing.T) {
	assert.Equal(t, "tier=gold", selectorFromBody("tier=gold"))

	sel := selectorFromBody(map[string]interface{}{"tier": "gold"})
	assert.Equal(t, "tier=gold", sel)

	assert.Equal(t, "", selectorFromBody(42))
}

func TestParseForEach(t *testing.T) {
	t.Run("sequence", func(t *testing.T) {
		got, err := parseForEach([]interface{}{"a", "b", float64(3)})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "3"}, got)
	})

	t.Run("bracketed yaml string", func(t *testing.T) {
		got, err := parseForEach(`["a", "b", "c"]`)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, got)
	})

	t.Run("whitespace separated string", func(t *testing.T) {
		got, err := parseForEach("a b c")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, got)
	})

	t.Run("invalid type errors", func(t *testing.T) {
		_, err := parseForEach(42)
		assert.Error(t, err)
	})
}

func TestConditionFromStep(t *testing.T) {
	step := v1alpha1.Step{Type: "if", Body: map[string]interface{}{
		"condition": map[string]interface{}{
			"op":       condition.Contains,
			"value":    "Ready",
			"jsonPath": ".status.phase",
			"resource": map[string]interface{}{
				"apiVersion": "v1",
				"kind":       "Pod",
				"name":       "web-0",
				"namespace":  "ops",
			},
		},
	})
	c, err := conditionFromStep(step)
	require.NoError(t, err)
	assert.Equal(t, condition.Contains, c.Comparator)
	assert.Equal(t, "Ready", c.Value)
	assert.Equal(t, ".status.phase", c.Path)
	assert.Equal(t, "Pod", c.Kind)
	assert.Equal(t, "web-0", c.Name)
	assert.Equal(t, "ops", c.Namespace)
}

func TestConditionFromStep_MissingConditionErrors(t *testing.T) {
	_, err := conditionFromStep(v1alpha1.Step{Type: "if", Body: map[string]interface{}{}})
	assert.Error(t, err)
}

func TestRenderStep_SubstitutesVars(t *testing.T) {
	step := v1alpha1.Step{Type: "log", Body: map[string]interface{}{"message": "hello ${name}"}}
	rendered, err := renderStep(step, map[string]string{"name": "flow"})
	require.NoError(t, err)
	assert.Equal(t, "hello flow", rendered.GetString("message", ""))
	// input untouched
	assert.Equal(t, "hello ${name}", step.GetString("message", ""))
}

func TestRun_CountsTopLevelStepsOnly(t *testing.T) {
	r := NewRunner()
	steps := []v1alpha1.Step{
		{Type: "log", Body: map[string]interface{}{"message": "a"}},
		{Type: "engineTestNoop"},
	}
	result, err := r.Run(context.Background(), steps, newTestContext())
	require.NoError(t, err)
	assert.Equal(t, 2, result.StepsOK)
	assert.Equal(t, 0, result.StepsFail)
}

func TestRun_OnErrorAbsorbsFailureAndContinues(t *testing.T) {
	r := NewRunner()
	steps := []v1alpha1.Step{
		{Type: "engineTestFail"},
		{Type: "onError", Body: map[string]interface{}{
			"steps": []interface{}{
				map[string]interface{}{"type": "log", "message": "handled"},
			},
		}},
		{Type: "log", Body: map[string]interface{}{"message": "after"}},
	}
	result, err := r.Run(context.Background(), steps, newTestContext())
	require.NoError(t, err, "onError must absorb the failure, not propagate it")
	assert.Equal(t, 1, result.StepsFail)
	assert.Equal(t, 2, result.StepsOK)
}

func TestRun_PropagatesFailureWithoutOnError(t *testing.T) {
	r := NewRunner()
	steps := []v1alpha1.Step{
		{Type: "engineTestFail"},
		{Type: "log", Body: map[string]interface{}{"message": "never runs"}},
	}
	result, err := r.Run(context.Background(), steps, newTestContext())
	require.Error(t, err)
	assert.Equal(t, 1, result.StepsFail)
	assert.Equal(t, 0, result.StepsOK)
}

func TestRunFlow_AppliesOuterTimeout(t *testing.T) {
	r := NewRunner()
	spec := v1alpha1.FlowSpec{
		Steps:   []v1alpha1.Step{{Type: "log", Body: map[string]interface{}{"message": "quick"}}},
		Options: v1alpha1.FlowOptions{TimeoutSeconds: 5},
	}
	result, err := r.RunFlow(context.Background(), spec, newTestContext())
	require.NoError(t, err)
	assert.Equal(t, 1, result.StepsOK)
}
