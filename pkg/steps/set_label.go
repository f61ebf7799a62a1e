package steps

import (
	"context"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/dispatch"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/errs"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/flowcontext"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/kube"
)

func init() {
	dispatch.Register("setLabel", handleSetLabel)
}

// handleSetLabel applies `labels` to every object matched by `target`
// (a single name, or a label selector over `target.kind`). Grounded on
// steps/set_label.py.
func handleSetLabel(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	labels := step.GetStringMap("labels")
	if labels == nil {
		return errs.NewBadStep("setLabel", "labels")
	}
	names, ref, err := resolveLabelTargets(ctx, step, fctx, "setLabel")
	if err != nil {
		return err
	}
	for _, name := range names {
		r := ref
		r.Name = name
		for k, v := range labels {
			if err := fctx.APIs.SetLabel(ctx, r, fctx.Namespace, k, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveLabelTargets centralizes the target.kind/namespace/name-or-selector
// resolution shared by setLabel/removeLabel (steps/set_label.py,
// steps/remove_label.py both build this list the same way).
func resolveLabelTargets(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context, stepType string) ([]string, kube.ResourceRef, error) {
	target, err := requireMap(step, "target")
	if err != nil {
		return nil, kube.ResourceRef{}, err
	}
	ref := resourceRefFromMap(target, fctx.Namespace)
	if ref.Kind == "" {
		return nil, kube.ResourceRef{}, errs.NewBadStep(stepType, "target.kind")
	}

	if selector, ok := target["selector"].(string); ok && selector != "" {
		items, err := fctx.APIs.ListBySelector(ctx, ref.APIVersion, ref.Kind, ref.Namespace, selector)
		if err != nil {
			return nil, kube.ResourceRef{}, err
		}
		names := make([]string, 0, len(items))
		for _, it := range items {
			names = append(names, it.GetName())
		}
		return names, ref, nil
	}

	if ref.Name == "" {
		return nil, kube.ResourceRef{}, errs.NewBadStep(stepType, "target.name")
	}
	return []string{ref.Name}, ref, nil
}
