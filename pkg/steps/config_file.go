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
	dispatch.Register("configFile", handleConfigFile)
}

// handleConfigFile writes `content` to `path` on every node matched by
// `nodeSelector`, via a privileged host-mounted exec pod running `install`
// then `chown`. Grounded on steps/config_file.py, with content and the
// assembled command both single-quoted through kube.ShellQuote rather than
// the original's unescaped f-string interpolation.
func handleConfigFile(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	path, err := requireString(step, "path")
	if err != nil {
		return err
	}
	content := step.GetString("content", "")
	mode := step.GetString("mode", "0644")
	owner := step.GetString("owner", "root:root")
	if _, err := requireMap(step, "nodeSelector"); err != nil {
		return err
	}
	selector := labelSelectorString(step.GetStringMap("nodeSelector"))

	nodes, err := fctx.APIs.SelectNodes(ctx, selector)
	if err != nil {
		return err
	}

	hostPath := "/host" + path
	installCmd := fmt.Sprintf("install -D -m %s /dev/stdin %s && chown %s %s",
		mode, kube.ShellQuote(hostPath), owner, kube.ShellQuote(hostPath))
	payload := fmt.Sprintf("echo -n %s | /bin/sh -lc %s", kube.ShellQuote(content), kube.ShellQuote(installCmd))

	ns := fctx.Namespace
	if ns == "" {
		ns = fctx.OperatorNS
	}

	for _, node := range nodes {
		_, err := fctx.APIs.ExecPod(ctx, kube.ExecSpec{
			Namespace:    ns,
			Command:      payload,
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
