package kube

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
)

var configMapGVK = schema.GroupVersionKind{Version: "v1", Kind: "ConfigMap"}
var configMapGVR = schema.GroupVersionResource{Version: "v1", Resource: "configmaps"}

func newTestClients(objs ...runtime.Object) *Clients {
	scheme := runtime.NewScheme()
	listKinds := map[schema.GroupVersionResource]string{configMapGVR: "ConfigMapList"}
	dyn := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(scheme, listKinds, objs...)
	mapper := newFakeMapper(struct {
		gvk   schema.GroupVersionKind
		gvr   schema.GroupVersionResource
		scope meta.RESTScope
	}{gvk: configMapGVK, gvr: configMapGVR, scope: meta.RESTScopeNamespace})
	return &Clients{Dynamic: dyn, Mapper: mapper}
}

func newConfigMap(ns, name string, labels map[string]string) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "v1",
		"kind":       "ConfigMap",
		"metadata": map[string]interface{}{
			"name":      name,
			"namespace": ns,
			"labels":    toInterfaceMap(labels),
		},
	}}
}

func toInterfaceMap(m map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func TestSetLabel_AddsLabel(t *testing.T) {
	cm := newConfigMap("default", "app-config", map[string]string{"existing": "x"})
	c := newTestClients(cm)

	err := c.SetLabel(context.Background(), ResourceRef{APIVersion: "v1", Kind: "ConfigMap", Name: "app-config", Namespace: "default"}, "default", "tier", "gold")
	require.NoError(t, err)

	got, err := c.Dynamic.Resource(configMapGVR).Namespace("default").Get(context.Background(), "app-config", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "gold", got.GetLabels()["tier"])
	assert.Equal(t, "x", got.GetLabels()["existing"])
}

func TestRemoveLabel_DeletesKey(t *testing.T) {
	cm := newConfigMap("default", "app-config", map[string]string{"tier": "gold", "keep": "me"})
	c := newTestClients(cm)

	err := c.RemoveLabel(context.Background(), ResourceRef{APIVersion: "v1", Kind: "ConfigMap", Name: "app-config", Namespace: "default"}, "default", "tier")
	require.NoError(t, err)

	got, err := c.Dynamic.Resource(configMapGVR).Namespace("default").Get(context.Background(), "app-config", metav1.GetOptions{})
	require.NoError(t, err)
	_, exists := got.GetLabels()["tier"]
	assert.False(t, exists)
	assert.Equal(t, "me", got.GetLabels()["keep"])
}

func TestListBySelector_FiltersByLabel(t *testing.T) {
	a := newConfigMap("default", "a", map[string]string{"tier": "gold"})
	b := newConfigMap("default", "b", map[string]string{"tier": "silver"})
	c := newTestClients(a, b)

	items, err := c.ListBySelector(context.Background(), "v1", "ConfigMap", "default", "tier=gold")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].GetName())
}
