package flow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowstream/flow"
)

func TestGroupedWithinFlushesOnCount(t *testing.T) {
	f := flow.GroupedWithin(flow.FromSlice([]int{1, 2, 3, 4, 5}), 2, time.Hour)
	out, err := collect(t, f)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, out)
}

func TestGroupedWithinFlushesOnTimer(t *testing.T) {
	ch := make(chan int)
	go func() {
		defer close(ch)
		ch <- 1
		ch <- 2
		time.Sleep(30 * time.Millisecond) // outlasts the window, forcing a timer flush
		ch <- 3
	}()
	f := flow.GroupedWithin(flow.FromChannel(ch), 10, 10*time.Millisecond)
	out, err := collect(t, f)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}, {3}}, out)
}

func TestGroupedWeightedWithin(t *testing.T) {
	f := flow.GroupedWeightedWithin(
		flow.FromSlice([]int{1, 2, 3, 10}),
		5,
		func(v int) int64 { return int64(v) },
		time.Hour,
	)
	out, err := collect(t, f)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2, 3}, {10}}, out)
}

func TestThrottleEmitsEveryElement(t *testing.T) {
	f := flow.Throttle(flow.FromSlice([]int{1, 2, 3}), 1000, 3)
	out, err := collect(t, f)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)
}
