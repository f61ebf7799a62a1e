package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/kube"
)

func TestReconcile_SuccessMapsToSucceededPhase(t *testing.T) {
	a := NewAdapter(&kube.Clients{}, "default")
	ev := ReconcileEvent{
		Name:      "demo",
		Namespace: "default",
		Generation: 3,
		Spec: v1alpha1.FlowSpec{
			Steps: []v1alpha1.Step{
				{Type: "log", Body: map[string]interface{}{"message": "hello"}},
			},
		},
	}

	result, status := a.Reconcile(context.Background(), ev)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.StepsOK)
	assert.Equal(t, v1alpha1.PhaseSucceeded, status.Phase)
	assert.EqualValues(t, 3, status.ObservedGeneration)
	require.Len(t, status.Conditions, 1)
	assert.Equal(t, "Ready", status.Conditions[0].Type)
	assert.Equal(t, "True", status.Conditions[0].Status)
}

func TestReconcile_FailureMapsToFailedPhase(t *testing.T) {
	a := NewAdapter(&kube.Clients{}, "default")
	ev := ReconcileEvent{
		Name:      "demo",
		Namespace: "default",
		Spec: v1alpha1.FlowSpec{
			Steps: []v1alpha1.Step{
				{Type: "unknownLeafStepType"},
			},
		},
	}

	result, status := a.Reconcile(context.Background(), ev)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.StepsFail)
	assert.Equal(t, v1alpha1.PhaseFailed, status.Phase)
	require.Len(t, status.Conditions, 1)
	assert.Equal(t, "Degraded", status.Conditions[0].Type)
	assert.NotEmpty(t, status.Message)
}

func TestCloneVars_IsIndependentCopy(t *testing.T) {
	src := map[string]string{"a": "1"}
	clone := cloneVars(src)
	clone["a"] = "2"
	assert.Equal(t, "1", src["a"])
}
