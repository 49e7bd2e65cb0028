package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_Basics(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()

	v, err := m.GetItem(ctx, "session")
	require.NoError(t, err)
	assert.Nil(t, v)

	in := []byte("value")
	require.NoError(t, m.SetItem(ctx, "session", in))
	in[0] = 'X' // caller mutation must not leak in

	v, err = m.GetItem(ctx, "session")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), v)

	require.NoError(t, m.RemoveItem(ctx, "session"))
	require.NoError(t, m.RemoveItem(ctx, "session"))

	v, err = m.GetItem(ctx, "session")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestOpen_Scopes(t *testing.T) {
	ctx := context.Background()

	kv, closeFn, err := Open(ctx, ScopeSession, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, kv)
	require.NoError(t, closeFn())

	kv, closeFn, err = Open(ctx, ScopeDevice, filepath.Join(t.TempDir(), "c.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStorage{}, kv)
	require.NoError(t, closeFn())

	_, _, err = Open(ctx, Scope("cloud"), "")
	assert.ErrorIs(t, err, ErrUnknownScope)
}
