// Package kube is the thin cluster-adapter façade the flow engine's step
// handlers call through: apply/delete manifests, wait for a condition,
// label-patch, list-by-selector, and run ephemeral pods. It wraps the same
// typed+dynamic client-go stack the teacher CLI uses for its atomic-apply
// algorithm, generalized from a one-shot apply tool into a set of
// independently callable primitives.
package kube

import (
	"k8s.io/apimachinery/pkg/api/meta"
	appsv1client "k8s.io/client-go/kubernetes/typed/apps/v1"
	corev1client "k8s.io/client-go/kubernetes/typed/core/v1"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"
)

// Clients bundles every cluster handle a step handler might need. A single
// instance is built once per reconcile (or once per process for the CLI
// harness) and shared read-only across the whole flow run.
type Clients struct {
	Core    corev1client.CoreV1Interface
	Apps    appsv1client.AppsV1Interface
	Dynamic dynamic.Interface
	Mapper  meta.RESTMapper
	// Reader backs the cli-utils kstatus poller used by WaitFor's
	// ready|available|healthy condition.
	Reader ctrlclient.Reader
	// RESTConfig is retained so ExecPod can build its own REST client
	// for log-streaming on top of the typed CoreV1 client.
	RESTConfig *rest.Config
}
