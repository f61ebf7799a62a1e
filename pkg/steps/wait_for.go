package steps

import (
	"context"
	"time"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/condition"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/dispatch"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/flowcontext"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/kube"
)

func init() {
	dispatch.Register("waitFor", handleWaitFor)
}

// handleWaitFor blocks until `resource` satisfies `condition`
// (exist|deleted|ready|available|healthy, case-insensitive, default exist),
// or, when `jsonPath` is given, evaluates it with `op`/`value` on every poll
// tick. Grounded on steps/wait_for.py and kube/wait.py's
// wait_for_resource_condition.
func handleWaitFor(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	resMap, err := requireMap(step, "resource")
	if err != nil {
		return err
	}
	ref := resourceRefFromMap(resMap, fctx.Namespace)

	until := step.GetString("condition", kube.ConditionExist)
	timeoutSec := step.GetInt("timeoutSeconds", 300)
	jsonPath := step.GetString("jsonPath", "")

	var check kube.CustomCheck
	if jsonPath != "" {
		until = kube.ConditionCustom
		op := step.GetString("op", condition.Equals)
		val := step.GetString("value", "")
		check = func(obj *unstructured.Unstructured, found bool) (bool, error) {
			if !found {
				return false, nil
			}
			values, err := condition.Lookup(jsonPath, obj)
			if err != nil || len(values) == 0 {
				return false, nil
			}
			for _, v := range values {
				if condition.Compare(op, v, val) {
					return true, nil
				}
			}
			return false, nil
		}
	}

	return fctx.APIs.WaitFor(ctx, ref, until, time.Duration(timeoutSec)*time.Second, fctx.Namespace, check)
}
