package steps

import (
	"context"
	"fmt"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/dispatch"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/flowcontext"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/kube"
)

func init() {
	dispatch.Register("patchFile", handlePatchFile)
}

// handlePatchFile runs a sed substitution of `pattern` -> `replace` over
// `path` on every node matched by `nodeSelector`, creating an empty file
// first when `createIfMissing` is set. Grounded on steps/patch_file.py.
//
// Unlike the original's raw f-string sed expression, pattern/replace are
// rejected outright (errs.BadStep) if they contain a literal "/" — see
// kube.SedExpr and the design notes on shell quoting.
func handlePatchFile(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	path, err := requireString(step, "path")
	if err != nil {
		return err
	}
	pattern, err := requireString(step, "pattern")
	if err != nil {
		return err
	}
	replace := step.GetString("replace", "")
	createIfMissing := step.GetBool("createIfMissing", false)
	if _, err := requireMap(step, "nodeSelector"); err != nil {
		return err
	}
	selector := labelSelectorString(step.GetStringMap("nodeSelector"))

	sedExpr, err := kube.SedExpr(pattern, replace)
	if err != nil {
		return err
	}

	nodes, err := fctx.APIs.SelectNodes(ctx, selector)
	if err != nil {
		return err
	}

	hostPath := "/host" + path
	create := "false"
	if createIfMissing {
		create = "true"
	}
	sh := fmt.Sprintf(
		`if [ ! -f %s ] && %s; then install -D -m 0644 /dev/null %s; fi; if [ -f %s ]; then sed -i %s %s; fi`,
		kube.ShellQuote(hostPath), create, kube.ShellQuote(hostPath), kube.ShellQuote(hostPath),
		kube.ShellQuote(sedExpr), kube.ShellQuote(hostPath),
	)

	ns := fctx.Namespace
	if ns == "" {
		ns = fctx.OperatorNS
	}

	for _, node := range nodes {
		_, err := fctx.APIs.ExecPod(ctx, kube.ExecSpec{
			Namespace:    ns,
			Command:      sh,
			NodeSelector: map[string]string{"kubernetes.io/hostname": node.Name},
			Privileged:   true,
			HostMounts:   []kube.HostMount{{HostPath: "/", MountPath: "/host"}},
		})
		if err != nil {
			return err
		}
	}
	return nil
}
