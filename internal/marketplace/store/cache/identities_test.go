package cache_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"rentflow/internal/marketplace/service/mocks"
	"rentflow/internal/marketplace/store/cache"
	"rentflow/pkg/domain"
)

type brokenBackend struct{}

func (brokenBackend) Contains(context.Context, string) (bool, error) {
	return false, errors.New("connection refused")
}

func (brokenBackend) Remember(context.Context, string, time.Duration) error {
	return errors.New("connection refused")
}

func quiet() cache.Option {
	return cache.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestIdentities(t *testing.T) {
	ctx := context.Background()
	account := domain.AccountID(uuid.New())

	t.Run("positive answers are served from cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockIdentityStore(ctrl)
		inner.EXPECT().IsApplicant(gomock.Any(), account).Return(true, nil).Times(1)

		ids := cache.NewIdentities(inner, cache.NewLocal(time.Minute, time.Minute), time.Minute, quiet())
		for range 3 {
			ok, err := ids.IsApplicant(ctx, account)
			require.NoError(t, err)
			assert.True(t, ok)
		}
	})

	t.Run("negative answers are not cached", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockIdentityStore(ctrl)
		gomock.InOrder(
			inner.EXPECT().IsLandlord(gomock.Any(), account).Return(false, nil),
			inner.EXPECT().IsLandlord(gomock.Any(), account).Return(true, nil),
		)

		ids := cache.NewIdentities(inner, cache.NewLocal(time.Minute, time.Minute), time.Minute, quiet())
		ok, err := ids.IsLandlord(ctx, account)
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = ids.IsLandlord(ctx, account)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("roles are cached separately", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockIdentityStore(ctrl)
		inner.EXPECT().IsApplicant(gomock.Any(), account).Return(true, nil)
		inner.EXPECT().IsLandlord(gomock.Any(), account).Return(false, nil)

		ids := cache.NewIdentities(inner, cache.NewLocal(time.Minute, time.Minute), time.Minute, quiet())
		ok, err := ids.IsApplicant(ctx, account)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = ids.IsLandlord(ctx, account)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("writes pass through without caching", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockIdentityStore(ctrl)
		inner.EXPECT().AddApplicant(gomock.Any(), account).Return(nil)
		inner.EXPECT().AddLandlord(gomock.Any(), account).Return(nil)
		inner.EXPECT().IsApplicant(gomock.Any(), account).Return(false, nil)

		ids := cache.NewIdentities(inner, cache.NewLocal(time.Minute, time.Minute), time.Minute, quiet())
		require.NoError(t, ids.AddApplicant(ctx, account))
		require.NoError(t, ids.AddLandlord(ctx, account))
		ok, err := ids.IsApplicant(ctx, account)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("backend failure degrades to the store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockIdentityStore(ctrl)
		inner.EXPECT().IsApplicant(gomock.Any(), account).Return(true, nil).Times(2)

		ids := cache.NewIdentities(inner, brokenBackend{}, time.Minute, quiet())
		for range 2 {
			ok, err := ids.IsApplicant(ctx, account)
			require.NoError(t, err)
			assert.True(t, ok)
		}
	})

	t.Run("store errors are returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockIdentityStore(ctrl)
		boom := errors.New("boom")
		inner.EXPECT().IsApplicant(gomock.Any(), account).Return(false, boom)

		ids := cache.NewIdentities(inner, cache.NewLocal(time.Minute, time.Minute), time.Minute, quiet())
		_, err := ids.IsApplicant(ctx, account)
		assert.ErrorIs(t, err, boom)
	})
}

func TestLocalExpiry(t *testing.T) {
	ctx := context.Background()
	local := cache.NewLocal(time.Minute, time.Minute)

	require.NoError(t, local.Remember(ctx, "k", time.Millisecond))
	assert.Eventually(t, func() bool {
		ok, err := local.Contains(ctx, "k")
		return err == nil && !ok
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, local.Remember(ctx, "k", time.Minute))
	local.Flush()
	ok, err := local.Contains(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
