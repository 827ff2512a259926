package scope_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowstream/flow/internal/scope"
)

func TestSupervisedWaitReturnsFirstError(t *testing.T) {
	sc := scope.NewSupervised(context.Background())
	boom := errors.New("boom")

	sc.GoUser(func(ctx context.Context) error {
		<-ctx.Done() // cancelled once the sibling below fails
		return nil
	})
	sc.GoUser(func(context.Context) error { return boom })

	err := sc.Wait()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestGoUserRecoversPanic(t *testing.T) {
	sc := scope.NewSupervised(context.Background())
	sc.GoUser(func(context.Context) error { panic("kaboom") })

	err := sc.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestUnsupervisedScopeCancel(t *testing.T) {
	sc := scope.NewUnsupervised(context.Background())
	sc.Cancel()
	assert.Error(t, sc.Context().Err())
}

func TestDefaultBufferCapacity(t *testing.T) {
	sc := scope.NewSupervised(context.Background())
	assert.Equal(t, scope.DefaultBufferCapacity, sc.BufferCapacity())

	sc = scope.NewSupervised(context.Background(), scope.WithBufferCapacity(4))
	assert.Equal(t, 4, sc.BufferCapacity())
}

func TestRunIDIsStablePerScope(t *testing.T) {
	sc := scope.NewSupervised(context.Background())
	assert.NotEmpty(t, sc.RunID())
	assert.Equal(t, sc.RunID(), sc.RunID())
}
