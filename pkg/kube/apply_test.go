package kube

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
)

var clusterRoleGVK = schema.GroupVersionKind{Group: "rbac.authorization.k8s.io", Version: "v1", Kind: "ClusterRole"}
var clusterRoleGVR = schema.GroupVersionResource{Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "clusterroles"}

func TestApplyOne_NamespacedDocGetsDefaultNamespace(t *testing.T) {
	scheme := runtime.NewScheme()
	dyn := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(scheme, map[schema.GroupVersionResource]string{configMapGVR: "ConfigMapList"})
	mapper := newFakeMapper(struct {
		gvk   schema.GroupVersionKind
		gvr   schema.GroupVersionResource
		scope meta.RESTScope
	}{gvk: configMapGVK, gvr: configMapGVR, scope: meta.RESTScopeNamespace})
	c := &Clients{Dynamic: dyn, Mapper: mapper}

	doc := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "v1",
		"kind":       "ConfigMap",
		"metadata":   map[string]interface{}{"name": "app-config"},
	}}

	err := c.applyOne(context.Background(), doc, "team-a")
	require.NoError(t, err)
	assert.Equal(t, "team-a", doc.GetNamespace())
}

func TestApplyOne_ClusterScopedDocIsNotNamespaced(t *testing.T) {
	scheme := runtime.NewScheme()
	dyn := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(scheme, map[schema.GroupVersionResource]string{clusterRoleGVR: "ClusterRoleList"})
	mapper := newFakeMapper(struct {
		gvk   schema.GroupVersionKind
		gvr   schema.GroupVersionResource
		scope meta.RESTScope
	}{gvk: clusterRoleGVK, gvr: clusterRoleGVR, scope: meta.RESTScopeRoot})
	c := &Clients{Dynamic: dyn, Mapper: mapper}

	doc := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "rbac.authorization.k8s.io/v1",
		"kind":       "ClusterRole",
		"metadata":   map[string]interface{}{"name": "viewer"},
	}}

	err := c.applyOne(context.Background(), doc, "team-a")
	require.NoError(t, err)
	assert.Empty(t, doc.GetNamespace())
}
