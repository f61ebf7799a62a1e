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
	dispatch.Register("deleteFile", handleDeleteFile)
}

// handleDeleteFile reads `path` locally and deletes each object it
// describes by apiVersion/kind/metadata.name, grounded on steps/delete_file.py.
func handleDeleteFile(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	path, err := requireString(step, "path")
	if err != nil {
		return err
	}
	if err := rejectRemote("deleteFile", path); err != nil {
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
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		ref := kube.ResourceRef{
			APIVersion: doc.GetAPIVersion(),
			Kind:       doc.GetKind(),
			Name:       doc.GetName(),
			Namespace:  doc.GetNamespace(),
		}
		if ref.APIVersion == "" {
			ref.APIVersion = "v1"
		}
		if err := fctx.APIs.DeleteTarget(ctx, ref, fctx.Namespace); err != nil {
			return err
		}
	}
	return nil
}
