package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCache(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	var dest string
	hit, err := c.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "k", "v"))
	c.Invalidate(ctx, "products:")
	assert.Equal(t, Stats{}, c.Snapshot())
	require.NoError(t, c.Close())
}

func TestFetchWithoutCache(t *testing.T) {
	ctx := context.Background()
	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	got, err := Fetch(ctx, nil, "list", load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	_, err = Fetch(ctx, nil, "list", load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestFetchPropagatesLoadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Fetch(context.Background(), nil, "k", func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestConnectEmptyAddr(t *testing.T) {
	c, err := Connect(context.Background(), "", "driven:", 0, nil)
	require.NoError(t, err)
	assert.Nil(t, c)
}
