package steps

import (
	"context"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/dispatch"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/flowcontext"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/kube"
)

func init() {
	dispatch.Register("apply", handleApply)
}

// handleApply decodes the step's inline `manifests` YAML/JSON text and
// server-side-applies every document, grounded on steps/apply.py.
func handleApply(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	raw, err := requireString(step, "manifests")
	if err != nil {
		return err
	}
	docs, err := kube.DecodeManifests([]byte(raw))
	if err != nil {
		return err
	}
	return fctx.APIs.ApplyManifests(ctx, docs, fctx.Namespace)
}
