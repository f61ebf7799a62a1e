package steps

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/dispatch"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/errs"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/flowcontext"
)

func init() {
	dispatch.Register("patchLabel", handlePatchLabel)
}

// handlePatchLabel reads a JSON object mapping object name -> labels out of
// `fromVar`, applying each entry's labels to the named object of
// `target.kind`. Grounded on steps/patch_label.py.
func handlePatchLabel(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	target, err := requireMap(step, "target")
	if err != nil {
		return err
	}
	kind, _ := target["kind"].(string)
	if kind == "" {
		return errs.NewBadStep("patchLabel", "target.kind")
	}

	fromVar, err := requireString(step, "fromVar")
	if err != nil {
		return err
	}
	raw, ok := fctx.Vars[fromVar]
	if !ok {
		return errs.NewBadStep("patchLabel", "fromVar")
	}

	var mapping map[string]map[string]string
	if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
		return fmt.Errorf("patchLabel.fromVar %q: %w", fromVar, err)
	}

	ref := resourceRefFromMap(target, fctx.Namespace)
	for name, labels := range mapping {
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
