package kube

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
)

// ResourceRef identifies a single cluster object by GVK + name(+namespace),
// the shape every leaf step's `target`/`resource` field decodes into.
type ResourceRef struct {
	APIVersion string
	Kind       string
	Name       string
	Namespace  string
}

// GroupVersionKind splits ResourceRef.APIVersion ("group/version" or just
// "version" for the core group) and pairs it with Kind.
func (r ResourceRef) GroupVersionKind() schema.GroupVersionKind {
	gv, err := schema.ParseGroupVersion(r.APIVersion)
	if err != nil {
		gv = schema.GroupVersion{Version: r.APIVersion}
	}
	return gv.WithKind(r.Kind)
}

// resourceInterface resolves a ResourceRef to a dynamic.ResourceInterface,
// discovery-backed via the REST mapper (grounded on the teacher's
// prepareApplyPlan GVK->GVR resolution), falling back to defaultNS when the
// ref carries no namespace and the resource is namespaced.
func resourceInterface(mapper meta.RESTMapper, dyn dynamic.Interface, gvk schema.GroupVersionKind, namespace, defaultNS string) (dynamic.ResourceInterface, error) {
	m, err := mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		if resetter, ok := mapper.(interface{ Reset() }); ok {
			resetter.Reset()
			m, err = mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
		}
		if err != nil {
			return nil, fmt.Errorf("could not map GVK %v: %w", gvk, err)
		}
	}

	if m.Scope.Name() == meta.RESTScopeNameNamespace {
		ns := namespace
		if ns == "" {
			ns = defaultNS
		}
		if ns == "" {
			ns = "default"
		}
		return dyn.Resource(m.Resource).Namespace(ns), nil
	}
	return dyn.Resource(m.Resource), nil
}

// isNamespaced reports whether gvk's REST mapping is namespace-scoped, so
// callers can tell a cluster-scoped kind (Namespace, ClusterRole, ...) apart
// from a namespaced one before deciding whether to default metadata.namespace.
func isNamespaced(mapper meta.RESTMapper, gvk schema.GroupVersionKind) (bool, error) {
	m, err := mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		if resetter, ok := mapper.(interface{ Reset() }); ok {
			resetter.Reset()
			m, err = mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
		}
		if err != nil {
			return false, fmt.Errorf("could not map GVK %v: %w", gvk, err)
		}
	}
	return m.Scope.Name() == meta.RESTScopeNameNamespace, nil
}

// Get fetches a single object by ResourceRef, returning the same
// apierrors.IsNotFound-compatible error client-go produces so callers can
// distinguish "does not exist" from other failures.
func (c *Clients) Get(ctx context.Context, ref ResourceRef, defaultNS string) (*unstructured.Unstructured, error) {
	dr, err := resourceInterface(c.Mapper, c.Dynamic, ref.GroupVersionKind(), ref.Namespace, defaultNS)
	if err != nil {
		return nil, err
	}
	return dr.Get(ctx, ref.Name, metav1.GetOptions{})
}
