package steps

import (
	"context"
	"time"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/dispatch"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/errs"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/flowcontext"
)

func init() {
	dispatch.Register("sleep", handleSleep)
}

func handleSleep(ctx context.Context, step v1alpha1.Step, _ *flowcontext.Context) error {
	if _, ok := step.Body["seconds"]; !ok {
		return errs.NewBadStep("sleep", "seconds")
	}
	secs := step.GetInt("seconds", 1)
	timer := time.NewTimer(time.Duration(secs) * time.Second)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
