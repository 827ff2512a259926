package flow_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowstream/flow"
	"github.com/arrowstream/flow/internal/chanx"
)

func TestMapParPreservesOrder(t *testing.T) {
	f := flow.MapPar(flow.FromSlice([]int{1, 2, 3, 4, 5}), 3, func(_ context.Context, v int) (int, error) {
		return v * 10, nil
	})
	out, err := collect(t, f)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30, 40, 50}, out)
}

func TestMapParPropagatesFirstError(t *testing.T) {
	boom := errors.New("boom")
	f := flow.MapPar(flow.FromSlice([]int{1, 2, 3}), 2, func(_ context.Context, v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})
	_, err := collect(t, f)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	idx, ok := flow.ExtractIndex(err)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	runID, ok := flow.ExtractRunID(err)
	require.True(t, ok)
	assert.NotEmpty(t, runID)
}

func TestMapParUnorderedCoversAllElements(t *testing.T) {
	f := flow.MapParUnordered(flow.FromSlice([]int{1, 2, 3, 4, 5}), 4, func(_ context.Context, v int) (int, error) {
		return v * v, nil
	})
	out, err := collect(t, f)
	require.NoError(t, err)
	sort.Ints(out)
	assert.Equal(t, []int{1, 4, 9, 16, 25}, out)
}

func TestMerge(t *testing.T) {
	f := flow.Merge(flow.FromSlice([]int{1, 2, 3}), flow.FromSlice([]int{10, 20, 30}))
	out, err := collect(t, f)
	require.NoError(t, err)
	sort.Ints(out)
	assert.Equal(t, []int{1, 2, 3, 10, 20, 30}, out)
}

func TestZipStopsOnShorter(t *testing.T) {
	type pair struct{ A, B int }
	f := flow.Zip(flow.FromSlice([]int{1, 2, 3}), flow.FromSlice([]int{10, 20}), func(a, b int) pair {
		return pair{a, b}
	})
	out, err := collect(t, f)
	require.NoError(t, err)
	assert.Equal(t, []pair{{1, 10}, {2, 20}}, out)
}

func TestZipAllContinuesWithZeroValues(t *testing.T) {
	type pair struct{ A, B int }
	f := flow.ZipAll(flow.FromSlice([]int{1, 2, 3}), flow.FromSlice([]int{10, 20}), func(a, b int) pair {
		return pair{a, b}
	}, 0, 0)
	out, err := collect(t, f)
	require.NoError(t, err)
	assert.Equal(t, []pair{{1, 10}, {2, 20}, {3, 0}}, out)
}

func TestAlsoToDeliversToSinkAndClosesIt(t *testing.T) {
	sink := chanx.New[int](4)
	f := flow.AlsoTo(flow.FromSlice([]int{1, 2, 3}), sink)
	out, err := collect(t, f)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)

	var sunk []int
	for {
		v, serr := sink.Receive(context.Background())
		if serr != nil {
			break
		}
		sunk = append(sunk, v)
	}
	assert.Equal(t, []int{1, 2, 3}, sunk)
}

func TestAlsoToTapSwallowsFullSink(t *testing.T) {
	sink := chanx.New[int](0) // unbuffered, never drained: every TrySend drops
	f := flow.AlsoToTap(flow.FromSlice([]int{1, 2, 3}), sink)
	out, err := collect(t, f)
	require.NoError(t, err, "a sink that refuses every send must not block or fail downstream emission")
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestFlatten(t *testing.T) {
	inner := flow.FromSlice([]flow.Flow[int]{
		flow.FromSlice([]int{1, 2}),
		flow.FromSlice([]int{3, 4}),
		flow.FromSlice([]int{5}),
	})
	out, err := collect(t, flow.Flatten(inner, 2))
	require.NoError(t, err)
	sort.Ints(out)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, out)
}

func TestInterleave(t *testing.T) {
	f := flow.Interleave(flow.FromSlice([]int{1, 2, 3}), flow.FromSlice([]int{10, 20, 30}), 1, false)
	out, err := collect(t, f)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 10, 2, 20, 3, 30}, out)
}

func TestInterleaveDrainsLongerSideWhenNotEager(t *testing.T) {
	f := flow.Interleave(flow.FromSlice([]int{1, 2}), flow.FromSlice([]int{10, 20, 30, 40}), 1, false)
	out, err := collect(t, f)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 10, 2, 20, 30, 40}, out)
}

func TestInterleaveStopsEagerlyWhenEitherSideCompletes(t *testing.T) {
	f := flow.Interleave(flow.FromSlice([]int{1, 2}), flow.FromSlice([]int{10, 20, 30, 40}), 1, true)
	out, err := collect(t, f)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 10, 2, 20}, out)
}
