package kube

import (
	"context"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// DeleteTarget deletes the single object identified by ref. A not-found
// error is swallowed (delete is idempotent from the flow author's point of
// view), matching kubectl's own `delete --ignore-not-found=false` being the
// only surprising case — here we choose idempotent, since a flow re-run
// should not fail just because a prior run already removed the object.
//
// Grounded on the teacher's per-kind delete_target table (kube/resources.py
// in original_source), generalized to any GVK via the REST mapper instead of
// a hardcoded kind switch.
func (c *Clients) DeleteTarget(ctx context.Context, ref ResourceRef, defaultNS string) error {
	dr, err := resourceInterface(c.Mapper, c.Dynamic, ref.GroupVersionKind(), ref.Namespace, defaultNS)
	if err != nil {
		return err
	}
	err = dr.Delete(ctx, ref.Name, metav1.DeleteOptions{})
	if apierrors.IsNotFound(err) {
		return nil
	}
	return err
}
