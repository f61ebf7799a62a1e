package kube

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/wait"
	"sigs.k8s.io/cli-utils/pkg/kstatus/polling"
	"sigs.k8s.io/cli-utils/pkg/kstatus/polling/aggregator"
	"sigs.k8s.io/cli-utils/pkg/kstatus/polling/collector"
	pollEvent "sigs.k8s.io/cli-utils/pkg/kstatus/polling/event"
	kstatus "sigs.k8s.io/cli-utils/pkg/kstatus/status"
	"sigs.k8s.io/cli-utils/pkg/object"

	pferrs "github.com/hashmap-kz/pseudoflow-operator/pkg/errs"
)

// Condition values of a waitFor leaf step's `condition` field, passed to
// WaitFor as until.
const (
	ConditionExist   = "exist"
	ConditionDeleted = "deleted"
	ConditionReady   = "ready"
	ConditionCustom  = "custom"
)

const pollInterval = 2 * time.Second

// CustomCheck evaluates a caller-supplied condition (a parsed JSONPath +
// comparator, in the condition package) against the live object. found is
// false when the object does not exist; obj is nil in that case.
type CustomCheck func(obj *unstructured.Unstructured, found bool) (bool, error)

// WaitFor blocks until ref satisfies until, or timeout elapses. exist and
// deleted are simple existence polls; ready (and its synonyms available,
// healthy) delegates to the cli-utils kstatus status poller exactly as the
// teacher's waitStatus does for a single resource; custom evaluates check on
// every poll tick. until is matched case-insensitively, matching the
// original's `condition.lower()`.
//
// Grounded on original_source/pseudoflow/kube/wait.py's
// wait_for_resource_condition and the teacher's waitStatus/statusObserver
// pair.
func (c *Clients) WaitFor(ctx context.Context, ref ResourceRef, until string, timeout time.Duration, defaultNS string, check CustomCheck) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	switch strings.ToLower(until) {
	case ConditionExist:
		return c.waitExistence(waitCtx, ref, defaultNS, true)
	case ConditionDeleted:
		return c.waitExistence(waitCtx, ref, defaultNS, false)
	case ConditionReady, "available", "healthy":
		return c.waitReady(waitCtx, ref, defaultNS)
	case ConditionCustom:
		return c.waitCustom(waitCtx, ref, defaultNS, check)
	default:
		return pferrs.NewBadStep("waitFor", "until")
	}
}

func (c *Clients) waitExistence(ctx context.Context, ref ResourceRef, defaultNS string, wantExists bool) error {
	err := wait.PollUntilContextCancel(ctx, pollInterval, true, func(ctx context.Context) (bool, error) {
		_, getErr := c.Get(ctx, ref, defaultNS)
		switch {
		case getErr == nil:
			return wantExists, nil
		case apierrors.IsNotFound(getErr):
			return !wantExists, nil
		default:
			return false, getErr
		}
	})
	return wrapWaitErr(err, ref)
}

func (c *Clients) waitCustom(ctx context.Context, ref ResourceRef, defaultNS string, check CustomCheck) error {
	if check == nil {
		return pferrs.NewBadStep("waitFor", "check")
	}
	err := wait.PollUntilContextCancel(ctx, pollInterval, true, func(ctx context.Context) (bool, error) {
		obj, getErr := c.Get(ctx, ref, defaultNS)
		if getErr != nil {
			if apierrors.IsNotFound(getErr) {
				return check(nil, false)
			}
			return false, getErr
		}
		return check(obj, true)
	})
	return wrapWaitErr(err, ref)
}

// waitReady polls a single resource's kstatus with the same poller/collector
// machinery the teacher uses for a whole apply plan, restricted here to one
// object since waitFor targets a single named resource.
func (c *Clients) waitReady(ctx context.Context, ref ResourceRef, defaultNS string) error {
	gvk := ref.GroupVersionKind()
	ns := ref.Namespace
	if ns == "" {
		ns = defaultNS
	}
	id := object.ObjMetadata{
		GroupKind: gvk.GroupKind(),
		Name:      ref.Name,
		Namespace: ns,
	}
	resources := []object.ObjMetadata{id}

	cancelCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	poller := polling.NewStatusPoller(c.Reader, c.Mapper, polling.Options{})
	eventCh := poller.Poll(cancelCtx, resources, polling.PollOptions{PollInterval: pollInterval})

	statusCollector := collector.NewResourceStatusCollector(resources)
	done := statusCollector.ListenWithObserver(eventCh, readyObserver(cancel, id))
	<-done

	if statusCollector.Error != nil {
		return statusCollector.Error
	}
	if ctx.Err() != nil {
		rs := statusCollector.ResourceStatuses[id]
		if rs != nil {
			return errors.Join(fmt.Errorf("resource not ready: %s (%s)", id.String(), rs.Status), ctx.Err())
		}
		return &pferrs.TimeoutExpired{Op: "waitFor ready " + ref.Kind + "/" + ref.Name}
	}
	return nil
}

// readyObserver cancels the poll once the watched resource (and any
// generated resources cli-utils tracks alongside it) aggregate to
// kstatus.CurrentStatus. kstatus's own Current computation treats a
// scaled-to-zero Deployment/StatefulSet/DaemonSet as Current (its
// specReplicas > ... comparisons all vacuously hold at 0), so id's own
// resource is additionally checked against isScaledToZero before letting
// the aggregate status win, matching the original's
// `desired == avail and desired > 0`.
func readyObserver(cancel context.CancelFunc, id object.ObjMetadata) collector.ObserverFunc {
	return func(c *collector.ResourceStatusCollector, _ pollEvent.Event) {
		target := c.ResourceStatuses[id]
		if target != nil && isScaledToZero(target.Resource) {
			return
		}

		var rss []*pollEvent.ResourceStatus
		for _, rs := range c.ResourceStatuses {
			if rs != nil {
				rss = append(rss, rs)
			}
		}
		if aggregator.AggregateStatus(rss, kstatus.CurrentStatus) == kstatus.CurrentStatus {
			cancel()
		}
	}
}

// isScaledToZero reports whether obj is a workload kind deliberately scaled
// to zero desired replicas. Grounded on
// original_source/pseudoflow/kube/wait.py's ready(), which requires
// desired == avail and desired > 0 rather than trusting a bare equality.
func isScaledToZero(obj *unstructured.Unstructured) bool {
	if obj == nil {
		return false
	}
	switch obj.GetKind() {
	case "Deployment", "StatefulSet":
		desired, _, _ := unstructured.NestedInt64(obj.Object, "spec", "replicas")
		return desired == 0
	case "DaemonSet":
		desired, _, _ := unstructured.NestedInt64(obj.Object, "status", "desiredNumberScheduled")
		return desired == 0
	default:
		return false
	}
}

func wrapWaitErr(err error, ref ResourceRef) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &pferrs.TimeoutExpired{Op: "waitFor " + ref.Kind + "/" + ref.Name}
	}
	return err
}
