// Package engine implements the composite execution runner: the control-flow
// combinators (if/when/loop/loopNodes/parallel/retry/onError/includeFlow)
// plus the sequence-walking loop that renders and dispatches leaf steps.
//
// Grounded on original_source/pseudoflow/engine/runner.py, with the
// onError-reachability open question resolved per the design notes: a
// failing step is caught in place when the immediately following step is
// onError, which runs and then execution continues; otherwise the error
// still propagates out of Run exactly as the original does.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/yaml"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/condition"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/dispatch"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/errs"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/flowcontext"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/templating"

	// Registers every leaf step handler with pkg/dispatch.
	_ "github.com/hashmap-kz/pseudoflow-operator/pkg/steps"
)

// Runner executes step lists against a Context, owning every combinator
// itself before anything reaches pkg/dispatch.
type Runner struct{}

// NewRunner builds a Runner. Runner carries no state of its own; a single
// instance may run many flows concurrently.
func NewRunner() *Runner {
	return &Runner{}
}

// RunFlow is the top-level entry point: it applies the flow's
// options.timeoutSeconds as an outer deadline (0 = unbounded) and runs its
// step list.
func (r *Runner) RunFlow(ctx context.Context, spec v1alpha1.FlowSpec, fctx *flowcontext.Context) (*RunResult, error) {
	if spec.Options.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(spec.Options.TimeoutSeconds)*time.Second)
		defer cancel()
	}
	return r.Run(ctx, spec.Steps, fctx)
}

// Run walks steps in order, deep-rendering each against fctx.Vars before
// executing it. It returns a RunResult counting only top-level attempts in
// this particular list — a combinator counts as one step no matter how many
// substeps it runs (spec invariant: "combinators count as one step").
func (r *Runner) Run(ctx context.Context, steps []v1alpha1.Step, fctx *flowcontext.Context) (*RunResult, error) {
	result := NewRunResult()
	var prevFailed bool
	var lastErr error

	for i, raw := range steps {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		step, err := renderStep(raw, fctx.Vars)
		if err != nil {
			result.StepsFail++
			return result, err
		}

		if err := r.runOne(ctx, step, fctx, prevFailed, lastErr); err != nil {
			result.StepsFail++
			prevFailed = true
			lastErr = err

			if hasOnErrorNext(steps, i) {
				continue
			}
			return result, err
		}

		result.StepsOK++
		prevFailed = false
		lastErr = nil
	}
	return result, nil
}

func hasOnErrorNext(steps []v1alpha1.Step, i int) bool {
	return i+1 < len(steps) && steps[i+1].Type == "onError"
}

// runOne intercepts every combinator type; anything else is a leaf and goes
// to the dispatcher.
func (r *Runner) runOne(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context, prevFailed bool, lastErr error) error {
	switch step.Type {
	case "retry":
		return r.runRetry(ctx, step, fctx)
	case "onError":
		return r.runOnError(ctx, step, fctx, prevFailed, lastErr)
	case "if":
		return r.runIf(ctx, step, fctx)
	case "when":
		return r.runWhen(ctx, step, fctx)
	case "loop":
		return r.runLoop(ctx, step, fctx)
	case "loopNodes":
		return r.runLoopNodes(ctx, step, fctx)
	case "parallel":
		return r.runParallel(ctx, step, fctx)
	case "includeFlow":
		return r.runIncludeFlow(ctx, step, fctx)
	default:
		return dispatch.Dispatch(ctx, step, fctx)
	}
}

// runRetry re-executes `steps` from the start on every attempt — no
// partial-progress memory — sleeping `backoffSeconds*(attempt+1)` between
// tries (linear, not exponential), up to `attempts` total.
func (r *Runner) runRetry(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	attempts := step.GetInt("attempts", 3)
	if attempts < 1 {
		attempts = 1
	}
	backoff := step.GetInt("backoffSeconds", 2)

	substeps, err := step.Steps("steps")
	if err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		_, runErr := r.Run(ctx, substeps, fctx)
		if runErr == nil {
			return nil
		}
		lastErr = runErr
		if i < attempts-1 && backoff > 0 {
			wait := time.Duration(backoff*(i+1)) * time.Second
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("retry: attempts exhausted")
	}
	return lastErr
}

// runOnError is a no-op unless the immediately preceding top-level step
// failed (prevFailed), in which case it binds __last_error__ and runs its
// body, then lets Run's loop continue normally (the resolved onError
// reachability reading).
func (r *Runner) runOnError(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context, prevFailed bool, lastErr error) error {
	if !prevFailed || lastErr == nil {
		return nil
	}
	fctx.Vars["__last_error__"] = lastErr.Error()
	substeps, err := step.Steps("steps")
	if err != nil {
		return err
	}
	_, err = r.Run(ctx, substeps, fctx)
	return err
}

func (r *Runner) runIf(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	cond, err := conditionFromStep(step)
	if err != nil {
		return err
	}
	ok := condition.Evaluate(ctx, fctx.APIs, cond, fctx.Namespace)

	var substeps []v1alpha1.Step
	if ok {
		substeps, err = step.Steps("then")
	} else {
		substeps, err = step.Steps("else")
	}
	if err != nil {
		return err
	}
	_, err = r.Run(ctx, substeps, fctx)
	return err
}

func (r *Runner) runWhen(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	cond, err := conditionFromStep(step)
	if err != nil {
		return err
	}
	if !condition.Evaluate(ctx, fctx.APIs, cond, fctx.Namespace) {
		return nil
	}
	substeps, err := step.Steps("steps")
	if err != nil {
		return err
	}
	_, err = r.Run(ctx, substeps, fctx)
	return err
}

// runLoop binds `item` to each element of forEach in its own cloned
// context, running `steps` once per element.
func (r *Runner) runLoop(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	items, err := parseForEach(step.Body["forEach"])
	if err != nil {
		return err
	}
	substeps, err := step.Steps("steps")
	if err != nil {
		return err
	}
	for _, item := range items {
		clone := fctx.Clone()
		clone.Vars["item"] = item
		if _, err := r.Run(ctx, substeps, clone); err != nil {
			return err
		}
	}
	return nil
}

// runLoopNodes binds `node` to each selected node's name, running `steps`
// once per node.
func (r *Runner) runLoopNodes(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	selector := selectorFromBody(step.Body["selector"])
	nodes, err := fctx.APIs.SelectNodes(ctx, selector)
	if err != nil {
		return err
	}
	substeps, err := step.Steps("steps")
	if err != nil {
		return err
	}
	for _, node := range nodes {
		clone := fctx.Clone()
		clone.Vars["node"] = node.Name
		if _, err := r.Run(ctx, substeps, clone); err != nil {
			return err
		}
	}
	return nil
}

// runParallel clones the context once per group and runs every group
// concurrently. waitForAll=true awaits all groups and propagates the first
// error; waitForAll=false returns on the first completion or first error
// and cancels the remaining groups' context (Open Question resolved: cancel
// siblings on both paths).
func (r *Runner) runParallel(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	groups, err := step.StepGroups("steps")
	if err != nil {
		return err
	}
	waitForAll := step.GetBool("waitForAll", true)

	if waitForAll {
		g, gctx := errgroup.WithContext(ctx)
		for _, group := range groups {
			group := group
			clone := fctx.Clone()
			g.Go(func() error {
				_, err := r.Run(gctx, group, clone)
				return err
			})
		}
		return g.Wait()
	}

	cctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, len(groups))
	for _, group := range groups {
		group := group
		clone := fctx.Clone()
		go func() {
			_, err := r.Run(cctx, group, clone)
			done <- err
		}()
	}
	first := <-done
	cancel()
	return first
}

// runIncludeFlow fetches another PseudoFlow CR by name and runs its
// spec.steps as a sub-flow. Variable writes never propagate back to the
// caller; inheritVars controls only the starting snapshot.
func (r *Runner) runIncludeFlow(ctx context.Context, step v1alpha1.Step, fctx *flowcontext.Context) error {
	name := step.GetString("name", "")
	if name == "" {
		return errs.NewBadStep("includeFlow", "name")
	}
	ns := step.GetString("namespace", fctx.Namespace)
	inherit := step.GetBool("inheritVars", false)

	gvr := schema.GroupVersionResource{Group: v1alpha1.Group, Version: v1alpha1.Version, Resource: v1alpha1.Plural}
	obj, err := fctx.APIs.Dynamic.Resource(gvr).Namespace(ns).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return &errs.ClusterApiError{Cause: err}
	}

	substeps, err := extractSteps(obj)
	if err != nil {
		return err
	}

	subVars := map[string]string{}
	if inherit {
		subVars = fctx.Clone().Vars
	}
	subCtx := flowcontext.New(fctx.APIs, fctx.OperatorNS, ns, subVars)
	_, err = r.Run(ctx, substeps, subCtx)
	return err
}

func extractSteps(obj *unstructured.Unstructured) ([]v1alpha1.Step, error) {
	rawSteps, found, err := unstructured.NestedSlice(obj.Object, "spec", "steps")
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	out := make([]v1alpha1.Step, 0, len(rawSteps))
	for _, s := range rawSteps {
		m, ok := s.(map[string]interface{})
		if !ok {
			continue
		}
		st, err := v1alpha1.FromNode(m)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// renderStep deep-renders a step's body against vars and rebuilds a Step
// from the result, keeping rendering pure (the input step is untouched).
func renderStep(step v1alpha1.Step, vars map[string]string) (v1alpha1.Step, error) {
	rendered := templating.DeepRender(step.AsNode(), vars)
	m, ok := rendered.(map[string]interface{})
	if !ok {
		return v1alpha1.Step{}, fmt.Errorf("rendered step %q is not an object", step.Type)
	}
	return v1alpha1.FromNode(m)
}

// conditionFromStep decodes an `if`/`when` step's `condition` sub-object
// into a condition.Condition.
func conditionFromStep(step v1alpha1.Step) (condition.Condition, error) {
	condMap := step.GetMap("condition")
	if condMap == nil {
		return condition.Condition{}, errs.NewBadStep(step.Type, "condition")
	}
	c := condition.Condition{
		Comparator: stringField(condMap["op"], condition.Equals),
		Value:      stringField(condMap["value"], ""),
		Path:       stringField(condMap["jsonPath"], ""),
	}
	if res, ok := condMap["resource"].(map[string]interface{}); ok {
		c.APIVersion = stringField(res["apiVersion"], "v1")
		c.Kind = stringField(res["kind"], "")
		c.Name = stringField(res["name"], "")
		c.Namespace = stringField(res["namespace"], "")
	}
	return c, nil
}

func stringField(v interface{}, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

// selectorFromBody accepts loopNodes' `selector` as either a plain selector
// string or a label key/value mapping.
func selectorFromBody(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]interface{}:
		set := make(map[string]string, len(t))
		for k, vv := range t {
			set[k] = fmt.Sprintf("%v", vv)
		}
		return labels.SelectorFromSet(set).String()
	default:
		return ""
	}
}

// parseForEach accepts loop's `forEach` as a YAML/JSON sequence, a
// bracketed-YAML string literal, or a whitespace-separated string.
func parseForEach(v interface{}) ([]string, error) {
	switch t := v.(type) {
	case []interface{}:
		out := make([]string, len(t))
		for i, e := range t {
			out[i] = fmt.Sprintf("%v", e)
		}
		return out, nil
	case string:
		s := strings.TrimSpace(t)
		if strings.HasPrefix(s, "[") {
			var arr []interface{}
			if err := yaml.Unmarshal([]byte(s), &arr); err != nil {
				return nil, err
			}
			out := make([]string, len(arr))
			for i, e := range arr {
				out[i] = fmt.Sprintf("%v", e)
			}
			return out, nil
		}
		return strings.Fields(s), nil
	default:
		return nil, fmt.Errorf("loop.forEach must be a list or string")
	}
}
