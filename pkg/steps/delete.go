package steps

import (
	"context"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/dispatch"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/flowcontext"
)

func init() {
	dispatch.Register("delete", handleDelete)
}

// handleDelete deletes the single object identified by `target`, grounded
// on steps/delete.py.
func handleDelete(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	target, err := requireMap(step, "target")
	if err != nil {
		return err
	}
	ref := resourceRefFromMap(target, fctx.Namespace)
	return fctx.APIs.DeleteTarget(ctx, ref, fctx.Namespace)
}
