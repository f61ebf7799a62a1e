package steps

import (
	"context"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/dispatch"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/flowcontext"
	"github.com/hashmap-kz/pseudoflow-operator/pkg/logging"
)

func init() {
	dispatch.Register("log", handleLog)
}

func handleLog(_ context.Context, step v1alpha1.Step, _ *flowcontext.Context) error {
	msg := step.GetString("message", "")
	logging.L().Sugar().Infof("[log] %s", msg)
	return nil
}
