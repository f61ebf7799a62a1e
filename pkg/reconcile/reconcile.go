// Package reconcile is the thin boundary between an external controller
// framework (out of scope for this module) and the flow engine: it turns
// one reconcile event into a Context, runs it, and maps the outcome onto
// FlowStatus per the status contract a controller would persist.
package reconcile

import (
	"context"
	"fmt"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/engine"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/flowcontext"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/kube"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/logging"
)

// ReconcileEvent carries what a controller framework would deliver on a
// PseudoFlow spec change: enough to build a Context and run the flow once.
type ReconcileEvent struct {
	Name       string
	Namespace  string
	Spec       v1alpha1.FlowSpec
	Generation int64
}

// Adapter builds a Context from an event, runs it through the engine, and
// maps the result to FlowStatus. It never itself watches, finalizes, or
// patches a resource — that remains the external controller's job.
type Adapter struct {
	APIs       *kube.Clients
	OperatorNS string
	Runner     *engine.Runner
}

// NewAdapter builds an Adapter with a fresh Runner.
func NewAdapter(apis *kube.Clients, operatorNS string) *Adapter {
	return &Adapter{APIs: apis, OperatorNS: operatorNS, Runner: engine.NewRunner()}
}

// Reconcile runs one flow to completion (or to its outer timeout) and
// returns both the terminal RunResult and the FlowStatus a controller would
// patch onto the resource.
func (a *Adapter) Reconcile(ctx context.Context, ev ReconcileEvent) (*engine.RunResult, v1alpha1.FlowStatus) {
	fctx := flowcontext.New(a.APIs, a.OperatorNS, ev.Namespace, cloneVars(ev.Spec.Vars))

	result, err := a.Runner.RunFlow(ctx, ev.Spec, fctx)

	status := v1alpha1.FlowStatus{ObservedGeneration: ev.Generation}
	if err != nil {
		logging.L().Sugar().Errorw("flow run failed", "name", ev.Name, "namespace", ev.Namespace, "error", err)
		status.Phase = v1alpha1.PhaseFailed
		status.Message = err.Error()
		status.Conditions = []v1alpha1.Condition{{
			Type:    "Degraded",
			Status:  "True",
			Reason:  "RunFailed",
			Message: err.Error(),
		}}
		return result, status
	}

	status.Phase = v1alpha1.PhaseSucceeded
	status.Message = fmt.Sprintf("ok: %s", result.Summary())
	status.Conditions = []v1alpha1.Condition{{
		Type:    "Ready",
		Status:  "True",
		Reason:  "RunSucceeded",
		Message: status.Message,
	}}
	return result, status
}

func cloneVars(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
