package kube

import (
	"fmt"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// fakeMapper is a minimal meta.RESTMapper stub covering exactly the method
// (RESTMapping) resourceInterface calls, enough to drive tests against
// client-go's dynamic fake client without a real discovery round-trip.
type fakeMapper struct {
	mappings map[schema.GroupVersionKind]*meta.RESTMapping
}

func newFakeMapper(entries ...struct {
	gvk   schema.GroupVersionKind
	gvr   schema.GroupVersionResource
	scope meta.RESTScope
}) *fakeMapper {
	m := &fakeMapper{mappings: map[schema.GroupVersionKind]*meta.RESTMapping{}}
	for _, e := range entries {
		m.mappings[e.gvk] = &meta.RESTMapping{
			Resource:         e.gvr,
			GroupVersionKind: e.gvk,
			Scope:            e.scope,
		}
	}
	return m
}

func (m *fakeMapper) RESTMapping(gk schema.GroupKind, versions ...string) (*meta.RESTMapping, error) {
	version := ""
	if len(versions) > 0 {
		version = versions[0]
	}
	gvk := gk.WithVersion(version)
	if mapping, ok := m.mappings[gvk]; ok {
		return mapping, nil
	}
	return nil, fmt.Errorf("no mapping for %v", gvk)
}

func (m *fakeMapper) RESTMappings(gk schema.GroupKind, versions ...string) ([]*meta.RESTMapping, error) {
	mapping, err := m.RESTMapping(gk, versions...)
	if err != nil {
		return nil, err
	}
	return []*meta.RESTMapping{mapping}, nil
}

func (m *fakeMapper) KindsFor(schema.GroupVersionResource) ([]schema.GroupVersionKind, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *fakeMapper) KindFor(schema.GroupVersionResource) (schema.GroupVersionKind, error) {
	return schema.GroupVersionKind{}, fmt.Errorf("not implemented")
}

func (m *fakeMapper) ResourcesFor(schema.GroupVersionResource) ([]schema.GroupVersionResource, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *fakeMapper) ResourceFor(schema.GroupVersionResource) (schema.GroupVersionResource, error) {
	return schema.GroupVersionResource{}, fmt.Errorf("not implemented")
}

func (m *fakeMapper) ResourceSingularizer(resource string) (string, error) {
	return resource, nil
}
