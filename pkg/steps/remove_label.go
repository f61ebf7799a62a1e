package steps

import (
	"context"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/dispatch"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/errs"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/flowcontext"
)

func init() {
	dispatch.Register("removeLabel", handleRemoveLabel)
}

// handleRemoveLabel strips `keys` from every object matched by `target`,
// grounded on steps/remove_label.py.
func handleRemoveLabel(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	keys := step.GetStringSlice("keys")
	if keys == nil {
		return errs.NewBadStep("removeLabel", "keys")
	}
	names, ref, err := resolveLabelTargets(ctx, step, fctx, "removeLabel")
	if err != nil {
		return err
	}
	for _, name := range names {
		r := ref
		r.Name = name
		for _, k := range keys {
			if err := fctx.APIs.RemoveLabel(ctx, r, fctx.Namespace, k); err != nil {
				return err
			}
		}
	}
	return nil
}
