package refreshtokens

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/shiftdesk/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	require.NoError(t, r.Create(ctx, "u1", "a", time.Hour))
	require.NoError(t, r.Create(ctx, "u1", "b", time.Hour))
	require.NoError(t, r.Create(ctx, "u2", "c", time.Hour))

	rt, err := r.Find(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "u1", rt.UserID)
	assert.False(t, rt.Expired(time.Now()))

	require.NoError(t, r.Delete(ctx, "a"))
	require.NoError(t, r.Delete(ctx, "a"))
	_, err = r.Find(ctx, "a")
	require.ErrorIs(t, err, common.ErrorNotFound)

	n, err := r.DeleteByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = r.Find(ctx, "c")
	require.NoError(t, err)
}

func TestMemoryRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	require.NoError(t, r.Create(ctx, "u1", "old", -time.Minute))
	require.NoError(t, r.Create(ctx, "u1", "fresh", time.Hour))

	n, err := r.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = r.Find(ctx, "fresh")
	require.NoError(t, err)
}
