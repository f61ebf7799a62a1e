// Package v1alpha1 holds the wire types for the PseudoFlow custom resource,
// group ops.example.com, version v1alpha1, kind PseudoFlow, short name pflow.
//
// These are plain Go structs decoded from/through sigs.k8s.io/yaml rather
// than a generated deepcopy-gen/client-gen set, since the engine only ever
// needs to read a flow spec and write a status — it never needs informers,
// listers, or a typed clientset for its own CRD.
package v1alpha1

const (
	Group      = "ops.example.com"
	Version    = "v1alpha1"
	Kind       = "PseudoFlow"
	Plural     = "pseudoflows"
	Singular   = "pseudoflow"
	ShortName  = "pflow"
	Finalizer  = "ops.example.com/pseudoflow-finalizer"
)

// Flow phases, written to FlowStatus.Phase by the reconcile adapter.
const (
	PhasePending   = "Pending"
	PhaseRunning   = "Running"
	PhaseSucceeded = "Succeeded"
	PhaseFailed    = "Failed"
)

// ObjectMeta is the minimal subset of metav1.ObjectMeta the engine reads off
// an incoming PseudoFlow or an includeFlow lookup result.
type ObjectMeta struct {
	Name       string `json:"name"`
	Namespace  string `json:"namespace,omitempty"`
	Generation int64  `json:"generation,omitempty"`
}

// PseudoFlow is the decoded form of a pseudoflows.ops.example.com object.
type PseudoFlow struct {
	Metadata ObjectMeta `json:"metadata"`
	Spec     FlowSpec   `json:"spec"`
	Status   FlowStatus `json:"status,omitempty"`
}

// FlowSpec is the declarative input described in spec §3.
type FlowSpec struct {
	Vars    map[string]string `json:"vars,omitempty"`
	Steps   []Step            `json:"steps"`
	Options FlowOptions       `json:"options,omitempty"`
}

// FlowOptions carries run-wide knobs. TimeoutSeconds == 0 means unbounded.
type FlowOptions struct {
	TimeoutSeconds int `json:"timeoutSeconds,omitempty"`
}

// FlowStatus is written back by the reconcile adapter; it is never read by
// the engine itself.
type FlowStatus struct {
	ObservedGeneration int64       `json:"observedGeneration,omitempty"`
	Phase              string      `json:"phase,omitempty"`
	Message            string      `json:"message,omitempty"`
	Conditions         []Condition `json:"conditions,omitempty"`
}

// Condition is a single status condition entry, kubernetes-shaped.
type Condition struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}
