package flow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowstream/flow"
)

func collect[T any](t *testing.T, f flow.Flow[T]) ([]T, error) {
	t.Helper()
	sc := flow.NewScope(context.Background())
	return flow.Collect(context.Background(), sc, f)
}

func TestFromSlice(t *testing.T) {
	out, err := collect(t, flow.FromSlice([]int{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestMapFilter(t *testing.T) {
	f := flow.Filter(
		flow.Map(flow.FromSlice([]int{1, 2, 3, 4, 5}), func(_ context.Context, v int) (int, error) {
			return v * v, nil
		}),
		func(_ context.Context, v int) (bool, error) { return v%2 == 0, nil },
	)
	out, err := collect(t, f)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 16}, out)
}

func TestTakeStopsUpstreamCleanly(t *testing.T) {
	var pulled []int
	src := flow.Tap(flow.FromSlice([]int{1, 2, 3, 4, 5}), func(_ context.Context, v int) error {
		pulled = append(pulled, v)
		return nil
	})
	out, err := collect(t, flow.Take(src, 2))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, out)
	assert.Equal(t, []int{1, 2}, pulled, "Take must stop pulling upstream once satisfied")
}

func TestTakeWhile(t *testing.T) {
	out, err := collect(t, flow.TakeWhile(
		flow.FromSlice([]int{1, 2, 3, 10, 4}),
		func(_ context.Context, v int) (bool, error) { return v < 5, nil },
		false,
	))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestDrop(t *testing.T) {
	out, err := collect(t, flow.Drop(flow.FromSlice([]int{1, 2, 3, 4}), 2))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, out)
}

func TestGrouped(t *testing.T) {
	out, err := collect(t, flow.Grouped(flow.FromSlice([]int{1, 2, 3, 4, 5}), 2))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, out)
}

func TestSlidingOverlappingWindows(t *testing.T) {
	out, err := collect(t, flow.Sliding(flow.FromSlice([]int{1, 2, 3, 4, 5}), 3, 1))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2, 3}, {2, 3, 4}, {3, 4, 5}}, out)
}

func TestSlidingFlushesTrailingShortWindow(t *testing.T) {
	out, err := collect(t, flow.Sliding(flow.FromSlice([]int{1, 2, 3, 4}), 3, 2))
	require.NoError(t, err)
	// Full window [1,2,3] at start 0; next start 2 only has [3,4] left.
	assert.Equal(t, [][]int{{1, 2, 3}, {3, 4}}, out)
}

func TestSlidingSourceShorterThanWindow(t *testing.T) {
	out, err := collect(t, flow.Sliding(flow.FromSlice([]int{1, 2}), 5, 1))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}}, out)
}

func TestSlidingDoesNotDuplicateAlreadyEmittedTail(t *testing.T) {
	out, err := collect(t, flow.Sliding(flow.FromSlice([]int{1, 2, 3, 4, 5, 6}), 3, 1))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2, 3}, {2, 3, 4}, {3, 4, 5}, {4, 5, 6}}, out)
}

func TestConcatAndPrepend(t *testing.T) {
	out, err := collect(t, flow.Concat(flow.FromSlice([]int{1, 2}), flow.FromSlice([]int{3, 4})))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, out)

	out, err = collect(t, flow.Prepend(flow.FromSlice([]int{2, 3}), 1))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestOrElse(t *testing.T) {
	out, err := collect(t, flow.OrElse(flow.Empty[int](), flow.FromSlice([]int{9})))
	require.NoError(t, err)
	assert.Equal(t, []int{9}, out)

	out, err = collect(t, flow.OrElse(flow.FromSlice([]int{1}), flow.FromSlice([]int{9})))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, out)
}

func TestIntersperse(t *testing.T) {
	out, err := collect(t, flow.Intersperse(flow.FromSlice([]string{"a", "b", "c"}), ",",
		flow.WithIntersperseStart[string]("["),
		flow.WithIntersperseEnd[string]("]"),
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"[", "a", ",", "b", ",", "c", "]"}, out)
}

func TestMapStatefulWithOnComplete(t *testing.T) {
	out, err := collect(t, flow.MapStateful(
		flow.FromSlice([]int{1, 2, 3}),
		0,
		func(_ context.Context, state int, v int) (int, int, error) { return state + v, v, nil },
		func(_ context.Context, state int) (int, bool, error) { return state, true, nil },
	))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 6}, out)
}

func TestMapStatefulConcat(t *testing.T) {
	out, err := collect(t, flow.MapStatefulConcat(
		flow.FromSlice([]int{1, 2, 3}),
		0,
		func(_ context.Context, state int, v int) (int, []int, error) {
			return state + v, []int{v, v}, nil
		},
		nil,
	))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 2, 2, 3, 3}, out)
}

func TestFilterMap(t *testing.T) {
	out, err := collect(t, flow.FilterMap(
		flow.FromSlice([]int{1, 2, 3, 4, 5}),
		func(_ context.Context, v int) (int, bool, error) {
			if v%2 != 0 {
				return 0, false, nil
			}
			return v * v, true, nil
		},
	))
	require.NoError(t, err)
	assert.Equal(t, []int{4, 16}, out)
}

func TestMapPropagatesCallbackError(t *testing.T) {
	boom := errors.New("boom")
	f := flow.Map(flow.FromSlice([]int{1, 2, 3}), func(_ context.Context, v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})
	_, err := collect(t, f)
	assert.ErrorIs(t, err, boom)
}
