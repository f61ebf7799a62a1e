package steps

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
)

func TestHandleSleep_CompletesAfterDuration(t *testing.T) {
	step := v1alpha1.Step{Type: "sleep", Body: map[string]interface{}{"seconds": float64(0)}}
	start := time.Now()
	err := handleSleep(context.Background(), step, nil)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestHandleSleep_CanceledContextReturnsEarly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	step := v1alpha1.Step{Type: "sleep", Body: map[string]interface{}{"seconds": float64(30)}}
	err := handleSleep(ctx, step, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandleLog_NeverErrors(t *testing.T) {
	step := v1alpha1.Step{Type: "log", Body: map[string]interface{}{"message": "hello"}}
	assert.NoError(t, handleLog(context.Background(), step, nil))

	empty := v1alpha1.Step{Type: "log"}
	assert.NoError(t, handleLog(context.Background(), empty, nil))
}
