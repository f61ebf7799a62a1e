package steps

import (
	"context"
	"os"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/dispatch"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/flowcontext"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/templating"
)

func init() {
	dispatch.Register("template", handleTemplate)
}

// handleTemplate renders `template` against the current vars, either
// writing the result to `output` or storing it in `var`. Grounded on
// steps/template.py.
func handleTemplate(_ context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	tpl, err := requireString(step, "template")
	if err != nil {
		return err
	}
	rendered := templating.Render(tpl, fctx.Vars)

	if out := step.GetString("output", ""); out != "" {
		return os.WriteFile(out, []byte(rendered), 0o644)
	}
	if v := step.GetString("var", ""); v != "" {
		fctx.Vars[v] = rendered
	}
	return nil
}
