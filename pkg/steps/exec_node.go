package steps

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/dispatch"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/flowcontext"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/kube"
)

func init() {
	dispatch.Register("execNode", handleExecNode)
}

// handleExecNode runs `cmd` in a privileged, host-networked pod pinned to
// one or more nodes selected by `nodeSelector`. `runOn` is any|first (run on
// the first matching node only) or all (run on every matching node);
// `varPerNode`, if set, receives a JSON object of node name -> logs.
// Grounded on steps/exec_node.py.
func handleExecNode(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	cmd, err := requireString(step, "cmd")
	if err != nil {
		return err
	}
	if _, err := requireMap(step, "nodeSelector"); err != nil {
		return err
	}
	selector := labelSelectorString(step.GetStringMap("nodeSelector"))

	nodes, err := fctx.APIs.SelectNodes(ctx, selector)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		return nil
	}

	runOn := step.GetString("runOn", "any")
	targets := nodes
	if runOn == "any" || runOn == "first" {
		targets = nodes[:1]
	}

	ns := fctx.Namespace
	if ns == "" {
		ns = fctx.OperatorNS
	}
	timeoutSec := step.GetInt("timeoutSeconds", 600)

	outputs := map[string]string{}
	for _, node := range targets {
		logs, err := fctx.APIs.ExecPod(ctx, kube.ExecSpec{
			Namespace:    ns,
			Command:      cmd,
			NodeSelector: map[string]string{"kubernetes.io/hostname": node.Name},
			Privileged:   true,
			Timeout:      time.Duration(timeoutSec) * time.Second,
		})
		if err != nil {
			return err
		}
		outputs[node.Name] = logs
	}

	if varPer := step.GetString("varPerNode", ""); varPer != "" {
		encoded, err := json.Marshal(outputs)
		if err != nil {
			return err
		}
		fctx.Vars[varPer] = string(encoded)
	}
	return nil
}
