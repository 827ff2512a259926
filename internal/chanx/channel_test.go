package chanx_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowstream/flow/internal/chanx"
)

func TestSendReceive(t *testing.T) {
	c := chanx.New[int](2)
	ctx := context.Background()
	require.NoError(t, c.Send(ctx, 1))
	require.NoError(t, c.Send(ctx, 2))

	v, err := c.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestDoneDrainsBuffered(t *testing.T) {
	c := chanx.New[int](2)
	ctx := context.Background()
	require.NoError(t, c.Send(ctx, 1))
	c.Done()

	v, err := c.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = c.Receive(ctx)
	require.Error(t, err)
	var cl chanx.Closed
	require.True(t, errors.As(err, &cl))
	assert.Equal(t, chanx.ClosedDone, cl.Kind)
}

func TestErrorSupersedesBufferedValues(t *testing.T) {
	c := chanx.New[int](2)
	ctx := context.Background()
	require.NoError(t, c.Send(ctx, 1))
	boom := errors.New("boom")
	c.Error(boom)

	_, err := c.Receive(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestTerminalIsIdempotent(t *testing.T) {
	c := chanx.New[int](1)
	c.Done()
	c.Error(errors.New("ignored"))

	_, err := c.Receive(context.Background())
	var cl chanx.Closed
	require.True(t, errors.As(err, &cl))
	assert.Equal(t, chanx.ClosedDone, cl.Kind, "first terminal transition wins")
}

func TestTrySendNonBlocking(t *testing.T) {
	c := chanx.New[int](1)
	assert.True(t, c.TrySend(1))
	assert.False(t, c.TrySend(2), "buffer is full")
}

func TestSelect2PicksReadySide(t *testing.T) {
	a := chanx.New[int](1)
	b := chanx.New[string](1)
	ctx := context.Background()
	require.NoError(t, b.Send(ctx, "x"))

	side, _, vb, err := chanx.Select2(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, 1, side)
	assert.Equal(t, "x", vb)
}
