package kube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"k8s.io/utils/ptr"
)

// fieldManager identifies this engine's writes for server-side apply
// conflict detection, analogous to the teacher's "atomic-apply".
const fieldManager = "pseudoflow"

// DecodeManifests splits a byte slice that may contain one or many YAML/JSON
// documents into a slice of *unstructured.Unstructured. Empty documents are
// ignored, matching kubectl apply behaviour. Grounded on the teacher's
// readManifests (cmd/apply.go, main.go).
func DecodeManifests(data []byte) ([]*unstructured.Unstructured, error) {
	var docs []*unstructured.Unstructured
	stream := utilyaml.NewYAMLOrJSONDecoder(bytes.NewReader(data), 4096)

	for {
		obj := &unstructured.Unstructured{}
		if err := stream.Decode(obj); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if len(obj.Object) > 0 {
			docs = append(docs, obj)
		}
	}
	return docs, nil
}

// ApplyManifests server-side-applies every document against the cluster,
// resolving each one's GVK to a dynamic.ResourceInterface via the REST
// mapper exactly as the teacher's applyPlanned/prepareApplyPlan pair does.
// Unlike the teacher, no backup is captured and no rollback is attempted on
// failure (spec Non-goals: no transactional rollback) — a failing document
// simply returns its error to the caller, which the runner propagates.
func (c *Clients) ApplyManifests(ctx context.Context, docs []*unstructured.Unstructured, defaultNS string) error {
	for _, doc := range docs {
		if doc == nil || len(doc.Object) == 0 {
			continue
		}
		if err := c.applyOne(ctx, doc, defaultNS); err != nil {
			return fmt.Errorf("applying %s/%s: %w", doc.GetKind(), doc.GetName(), err)
		}
	}
	return nil
}

func (c *Clients) applyOne(ctx context.Context, doc *unstructured.Unstructured, defaultNS string) error {
	dr, err := resourceInterface(c.Mapper, c.Dynamic, doc.GroupVersionKind(), doc.GetNamespace(), defaultNS)
	if err != nil {
		return err
	}
	if doc.GetNamespace() == "" {
		namespaced, err := isNamespaced(c.Mapper, doc.GroupVersionKind())
		if err != nil {
			return err
		}
		if namespaced {
			ns := defaultNS
			if ns == "" {
				ns = "default"
			}
			doc.SetNamespace(ns)
		}
	}

	objJSON, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	_, err = dr.Patch(
		ctx,
		doc.GetName(),
		types.ApplyPatchType,
		objJSON,
		metav1.PatchOptions{
			FieldManager: fieldManager,
			Force:        ptr.To(true),
		},
	)
	return err
}
