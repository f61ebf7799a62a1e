// Package steps implements every leaf step handler, each registering itself
// with pkg/dispatch from an init() function the way the original runtime's
// dispatcher module wired a fixed handler table.
package steps

import (
	"strings"

	"k8s.io/apimachinery/pkg/labels"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/errs"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/kube"
)

// rejectRemote rejects a source/path that looks like an HTTP(S) URL with
// errs.BadStep. applyFile and deleteFile read local paths only; the include
// step is the one handler that fetches http(s) sources.
func rejectRemote(stepType, source string) error {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return errs.NewBadStep(stepType, "path/source: remote fetch not supported by this engine")
	}
	return nil
}

// resourceRefFromMap builds a kube.ResourceRef from a step's `target` or
// `resource` sub-object, defaulting apiVersion to "v1" the way the original
// resource dicts did.
func resourceRefFromMap(m map[string]interface{}, defaultNS string) kube.ResourceRef {
	ref := kube.ResourceRef{APIVersion: "v1"}
	if v, ok := m["apiVersion"].(string); ok && v != "" {
		ref.APIVersion = v
	}
	if v, ok := m["kind"].(string); ok {
		ref.Kind = v
	}
	if v, ok := m["name"].(string); ok {
		ref.Name = v
	}
	if v, ok := m["namespace"].(string); ok && v != "" {
		ref.Namespace = v
	} else {
		ref.Namespace = defaultNS
	}
	return ref
}

func requireString(step v1alpha1.Step, key string) (string, error) {
	v := step.GetString(key, "")
	if v == "" {
		return "", errs.NewBadStep(step.Type, key)
	}
	return v, nil
}

func requireMap(step v1alpha1.Step, key string) (map[string]interface{}, error) {
	m := step.GetMap(key)
	if m == nil {
		return nil, errs.NewBadStep(step.Type, key)
	}
	return m, nil
}

// labelSelectorString renders a map of label key/values as a
// `k8s.io/apimachinery/pkg/labels` selector string, the format every List
// call in pkg/kube expects.
func labelSelectorString(m map[string]string) string {
	return labels.SelectorFromSet(m).String()
}
