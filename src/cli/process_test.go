package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunExitHandlers(t *testing.T) {
	var order []int
	AtExit(func() { order = append(order, 1) })
	AtExit(func() { order = append(order, 2) })
	RunExitHandlers()
	assert.Equal(t, []int{2, 1}, order)
	RunExitHandlers()
	assert.Equal(t, []int{2, 1}, order, "handlers should only run once")
}

func TestSignalContextCancel(t *testing.T) {
	ctx, cancel := SignalContext(context.Background())
	cancel()
	<-ctx.Done()
	assert.Error(t, ctx.Err())
}
