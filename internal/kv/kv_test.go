package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "a", []byte("one")))
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "one", string(got))

	// Returned slices are copies.
	got[0] = 'X'
	again, _ := s.Get(ctx, "a")
	require.Equal(t, "one", string(again))

	require.NoError(t, s.Delete(ctx, "a"))
	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Get(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestScopedStore_Isolation(t *testing.T) {
	ctx := context.Background()
	backing := NewMemoryStore()
	tab1 := Scoped(backing, "tab-1")
	tab2 := Scoped(backing, "tab-2")

	require.NoError(t, tab1.Set(ctx, "workflow", []byte("first")))
	require.NoError(t, tab2.Set(ctx, "workflow", []byte("second")))

	v1, err := tab1.Get(ctx, "workflow")
	require.NoError(t, err)
	require.Equal(t, "first", string(v1))

	v2, err := tab2.Get(ctx, "workflow")
	require.NoError(t, err)
	require.Equal(t, "second", string(v2))

	require.NoError(t, tab1.Delete(ctx, "workflow"))
	_, err = tab1.Get(ctx, "workflow")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = tab2.Get(ctx, "workflow")
	require.NoError(t, err)

	keys, err := backing.Keys(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"tab.tab-2.workflow"}, keys)
}

func TestScopedStore_SanitizesScope(t *testing.T) {
	s := Scoped(NewMemoryStore(), "my tab.1*")
	require.Equal(t, "tab.my_tab_1_.workflow", s.key("workflow"))
	require.Equal(t, "my tab.1*", s.Scope())
}

func TestValidScope(t *testing.T) {
	for _, ok := range []string{"default", "tab-1", "a_b", "x=y", "3f2c1b"} {
		require.NoError(t, ValidScope(ok), ok)
	}
	for _, bad := range []string{"", "a.b", "my tab", "tab/1", "é"} {
		require.ErrorIs(t, ValidScope(bad), ErrInvalidScope, bad)
	}
}
