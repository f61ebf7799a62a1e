// Package dispatch routes a leaf Step to its handler function by Type. The
// runner (pkg/engine) intercepts combinator types before a step ever reaches
// here; everything Dispatch sees is a leaf.
package dispatch

import (
	"context"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/errs"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/flowcontext"
)

// Handler executes one rendered leaf step against the live cluster.
type Handler func(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error

// registry is populated by Register, called from each pkg/steps handler's
// init(). A plain map keyed by step type, built once at program startup —
// no locking needed since registration happens before any flow runs.
var registry = map[string]Handler{}

// Register adds a handler for a step type. Intended to be called from an
// init() function in pkg/steps; panics on a duplicate registration since
// that can only be a programming error.
func Register(stepType string, h Handler) {
	if _, exists := registry[stepType]; exists {
		panic("dispatch: handler already registered for step type " + stepType)
	}
	registry[stepType] = h
}

// Dispatch runs the handler registered for step.Type, or returns
// errs.UnsupportedStepType if none is registered.
func Dispatch(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	h, ok := registry[step.Type]
	if !ok {
		return &errs.UnsupportedStepType{Type: step.Type}
	}
	return h(ctx, step, fctx)
}
