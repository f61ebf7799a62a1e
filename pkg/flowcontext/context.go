// Package flowcontext holds the per-execution Context threaded through a
// flow run. It is its own package (rather than living in pkg/engine) so that
// both the runner and the leaf step handlers (pkg/steps, pkg/dispatch) can
// depend on it without an import cycle.
package flowcontext

import "github.com/hashmap-kz/pseudoflow-operator/pkg/kube"

// Context is the mutable per-execution bundle: cluster handles, the flow's
// default namespace, and the variable map steps read from and write to.
//
// Context is constructed once at reconcile start and cloned at every
// lexical-scope boundary (loop iteration, loopNodes iteration, parallel
// group, includeFlow). Clone never aliases the underlying Vars map.
type Context struct {
	APIs       *kube.Clients
	OperatorNS string
	Namespace  string
	Vars       map[string]string
}

// New builds a fresh top-level Context for one reconcile.
func New(apis *kube.Clients, operatorNS, namespace string, vars map[string]string) *Context {
	if vars == nil {
		vars = map[string]string{}
	}
	return &Context{
		APIs:       apis,
		OperatorNS: operatorNS,
		Namespace:  namespace,
		Vars:       vars,
	}
}

// Clone returns a new Context sharing APIs/OperatorNS/Namespace but holding
// an independent shallow copy of Vars, so writes inside the clone are never
// observed by the context it was cloned from, or by sibling clones.
func (c *Context) Clone() *Context {
	vars := make(map[string]string, len(c.Vars))
	for k, v := range c.Vars {
		vars[k] = v
	}
	return &Context{
		APIs:       c.APIs,
		OperatorNS: c.OperatorNS,
		Namespace:  c.Namespace,
		Vars:       vars,
	}
}
