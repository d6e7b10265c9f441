package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	portmocks "github.com/bnema/gstin-gateway/internal/ports/mocks"
)

const secretRef = "gstin/knowyourgst/primary"

func TestStoreGetUsesFirstStoreWhenItSucceeds(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store, err := NewStore(primary, fallback)
	require.NoError(t, err)

	primary.EXPECT().Get(mock.Anything, secretRef).Return("from-pass", nil).Once()

	value, err := store.Get(context.Background(), secretRef)
	require.NoError(t, err)
	assert.Equal(t, "from-pass", value)
}

func TestStoreGetFallsBackInOrder(t *testing.T) {
	t.Parallel()

	first := portmocks.NewMockSecretStore(t)
	second := portmocks.NewMockSecretStore(t)
	third := portmocks.NewMockSecretStore(t)
	store, err := NewStore(first, second, third)
	require.NoError(t, err)

	first.EXPECT().Get(mock.Anything, secretRef).Return("", errors.New("pass unavailable")).Once()
	second.EXPECT().Get(mock.Anything, secretRef).Return("from-file", nil).Once()

	value, err := store.Get(context.Background(), secretRef)
	require.NoError(t, err)
	assert.Equal(t, "from-file", value)
}

func TestStoreGetJoinsErrorsWhenEveryStoreFails(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store, err := NewStore(primary, fallback)
	require.NoError(t, err)

	primary.EXPECT().Get(mock.Anything, secretRef).Return("", errors.New("pass failed")).Once()
	fallback.EXPECT().Get(mock.Anything, secretRef).Return("", errors.New("file failed")).Once()

	_, err = store.Get(context.Background(), secretRef)
	require.Error(t, err)
	assert.ErrorContains(t, err, secretRef)
	assert.ErrorContains(t, err, "backend 1: pass failed")
	assert.ErrorContains(t, err, "backend 2: file failed")
}

func TestStoreGetStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store, err := NewStore(primary, fallback)
	require.NoError(t, err)

	primary.EXPECT().Get(mock.Anything, secretRef).Return("", context.Canceled).Once()

	_, err = store.Get(context.Background(), secretRef)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewStoreValidatesBackends(t *testing.T) {
	t.Parallel()

	_, err := NewStore()
	require.ErrorIs(t, err, errNoStores)

	_, err = NewStore(portmocks.NewMockSecretStore(t), nil)
	require.ErrorContains(t, err, "secret store 1 is nil")
}
