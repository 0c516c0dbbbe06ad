package kv

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	getHeaders := func() *Storage {
		return New().
			Add("Foo", "bar").
			Add("Hello", "World").
			Add("Lorem", "ipsum").
			Add("hello", "Pavlo")
	}

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		kv := getHeaders()
		require.Equal(t, "World", kv.Value("HELLO"))
		require.Equal(t, "bar", kv.Value("foo"))
		require.True(t, kv.Has("lOrEm"))
		require.False(t, kv.Has("missing"))
		require.Equal(t, "fallback", kv.ValueOr("missing", "fallback"))
		require.Equal(t, []string{"World", "Pavlo"}, slices.Collect(kv.Values("hello")))
	})

	t.Run("delete", func(t *testing.T) {
		kv := getHeaders().Delete("HELLO")

		want := []Pair{
			{"Foo", "bar"},
			{"Lorem", "ipsum"},
		}

		require.Equal(t, want, kv.Expose())
	})

	t.Run("set", func(t *testing.T) {
		kv := getHeaders().Set("HELLO", "no more Pavlo")

		want := []Pair{
			{"Foo", "bar"},
			{"HELLO", "no more Pavlo"},
			{"Lorem", "ipsum"},
		}

		require.Equal(t, want, kv.Expose())
	})

	t.Run("set new key", func(t *testing.T) {
		kv := New().
			Add("Pavlo", "the best").
			Set("Glory to", "Ukraine")

		want := []Pair{
			{"Pavlo", "the best"},
			{"Glory to", "Ukraine"},
		}

		require.Equal(t, want, kv.Expose())
	})

	t.Run("keys", func(t *testing.T) {
		require.Equal(t, []string{"Foo", "Hello", "Lorem"}, slices.Collect(getHeaders().Keys()))
	})

	t.Run("pairs", func(t *testing.T) {
		var keys []string
		for key := range getHeaders().Pairs() {
			keys = append(keys, key)
		}

		require.Equal(t, []string{"Foo", "Hello", "Lorem", "hello"}, keys)
	})

	t.Run("clone is independent", func(t *testing.T) {
		original := getHeaders()
		clone := original.Clone()
		clone.Set("Foo", "baz")

		require.Equal(t, "bar", original.Value("Foo"))
		require.Equal(t, "baz", clone.Value("Foo"))
	})

	t.Run("empty", func(t *testing.T) {
		kv := getHeaders()
		for _, key := range slices.Collect(kv.Keys()) {
			kv.Delete(key)
		}

		require.True(t, kv.Empty())
	})

	t.Run("case-sensitive", func(t *testing.T) {
		kv := New().CaseSensitive().
			Set("A", "1").
			Set("a", "2").
			Set("a", "3")

		want := []Pair{
			{"A", "1"},
			{"a", "3"},
		}

		require.Equal(t, want, kv.Expose())
		require.Equal(t, "1", kv.Value("A"))
		require.False(t, kv.Has("b"))
		require.Equal(t, []string{"A", "a"}, slices.Collect(kv.Keys()))

		clone := kv.Clone().Delete("a")
		require.Equal(t, []Pair{{"A", "1"}}, clone.Expose())
	})
}
