package kube

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// SelectNodes lists cluster nodes matching a label selector, the primitive
// behind the loopNodes combinator and the execNode leaf step's node-picking.
//
// Grounded on original_source/pseudoflow/kube/resources.py's select_nodes,
// using the typed CoreV1 client rather than the dynamic client since Node is
// always core/v1 and the typed client avoids an unnecessary unstructured
// round-trip.
func (c *Clients) SelectNodes(ctx context.Context, selector string) ([]corev1.Node, error) {
	list, err := c.Core.Nodes().List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}
