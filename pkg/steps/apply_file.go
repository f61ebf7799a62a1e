package steps

import (
	"context"
	"os"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/dispatch"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/flowcontext"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/kube"
)

func init() {
	dispatch.Register("applyFile", handleApplyFile)
}

// handleApplyFile reads `path` from the local filesystem the engine runs on
// and server-side-applies every document it contains. Grounded on
// steps/apply_file.py; a remote (http/https) `path` is rejected with
// errs.BadStep (remote sources are fetched only by the include step).
func handleApplyFile(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	path, err := requireString(step, "path")
	if err != nil {
		return err
	}
	if err := rejectRemote("applyFile", path); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	docs, err := kube.DecodeManifests(data)
	if err != nil {
		return err
	}
	return fctx.APIs.ApplyManifests(ctx, docs, fctx.Namespace)
}
