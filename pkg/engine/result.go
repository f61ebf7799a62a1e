package engine

import (
	"fmt"
	"time"
)

// RunResult is the terminal, one-shot outcome of a flow invocation: counters
// plus a duration summary. It is never mutated once Run returns.
type RunResult struct {
	StepsOK   int
	StepsFail int
	StartedAt time.Time
}

// NewRunResult starts the clock for a fresh run.
func NewRunResult() *RunResult {
	return &RunResult{StartedAt: time.Now()}
}

// Summary renders the same shape the reconcile adapter embeds in
// FlowStatus.Message on success: "steps_ok=N steps_fail=M duration_sec=X.XX".
func (r *RunResult) Summary() string {
	dur := time.Since(r.StartedAt).Seconds()
	return fmt.Sprintf("steps_ok=%d steps_fail=%d duration_sec=%.2f", r.StepsOK, r.StepsFail, dur)
}
