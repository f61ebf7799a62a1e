package steps

import (
	"context"
	"time"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/dispatch"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/flowcontext"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/kube"
)

func init() {
	dispatch.Register("exec", handleExec)
	dispatch.Register("script", handleScript)
}

// handleExec runs `cmd` in an unprivileged ephemeral pod and, if `var` is
// set, stores its combined logs. Grounded on steps/exec.py.
func handleExec(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	cmd, err := requireString(step, "cmd")
	if err != nil {
		return err
	}
	return runAndCapture(ctx, step, fctx, cmd, step.GetString("var", ""))
}

// handleScript is exec's sibling for inline multi-line `code`, grounded on
// steps/script.py — the original runtime and this one treat exec/script
// identically once the command string is in hand.
func handleScript(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	code, err := requireString(step, "code")
	if err != nil {
		return err
	}
	return runAndCapture(ctx, step, fctx, code, step.GetString("var", ""))
}

func runAndCapture(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context, command, varName string) error {
	ns := fctx.Namespace
	if ns == "" {
		ns = fctx.OperatorNS
	}
	timeoutSec := step.GetInt("timeoutSeconds", 600)
	logs, err := fctx.APIs.ExecPod(ctx, kube.ExecSpec{
		Namespace: ns,
		Command:   command,
		Timeout:   time.Duration(timeoutSec) * time.Second,
	})
	if err != nil {
		return err
	}
	if varName != "" {
		fctx.Vars[varName] = logs
	}
	return nil
}
