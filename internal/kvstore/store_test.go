package kvstore

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkarpinos/linkvault/internal/errx"
)

func newTestStore(t *testing.T, opts ...Option) (*Store, *Memory) {
	t.Helper()
	mem := NewMemory(nil)
	opts = append([]Option{WithLogger(zerolog.New(zerolog.NewTestWriter(t)))}, opts...)
	return New(mem, opts...), mem
}

func TestStoreGetDefault(t *testing.T) {
	store, _ := newTestStore(t)

	var folders []string
	assert.False(t, store.Get("folders", &folders))
	assert.Nil(t, folders)
	assert.False(t, store.Has("folders"))
	assert.Empty(t, store.Keys())
	assert.Zero(t, store.Size())
}

func TestStoreSetGet(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Set("folders", []string{"Work", "Reading"}))
	require.NoError(t, store.Set("app_initialized", true))

	var folders []string
	require.True(t, store.Get("folders", &folders))
	assert.Equal(t, []string{"Work", "Reading"}, folders)

	var initialized bool
	require.True(t, store.Get("app_initialized", &initialized))
	assert.True(t, initialized)

	assert.Equal(t, []string{"app_initialized", "folders"}, store.Keys())
	assert.Positive(t, store.Size())
}

func TestStoreSetMergesWholeBlob(t *testing.T) {
	mem := NewMemory([]byte(`{"links":[{"id":"1"}],"other":42}`))
	store := New(mem)

	require.NoError(t, store.Set("folders", []string{"Work"}))

	var blob map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(mem.Bytes(), &blob))
	assert.JSONEq(t, `[{"id":"1"}]`, string(blob["links"]))
	assert.JSONEq(t, `42`, string(blob["other"]))
	assert.JSONEq(t, `["Work"]`, string(blob["folders"]))
}

func TestStoreSetManyIsOneWrite(t *testing.T) {
	store, mem := newTestStore(t)

	require.NoError(t, store.SetMany(map[string]any{
		"links":   []string{},
		"folders": []string{"Work"},
	}))
	assert.Equal(t, 1, mem.Saves())
	assert.True(t, store.Has("links"))
	assert.True(t, store.Has("folders"))
}

func TestStoreCorruptBlobReadsEmpty(t *testing.T) {
	for name, data := range map[string]string{
		"garbage": `{not json`,
		"array":   `[1,2,3]`,
		"null":    `null`,
		"string":  `"text"`,
	} {
		t.Run(name, func(t *testing.T) {
			mem := NewMemory([]byte(data))
			store := New(mem, WithLogger(zerolog.New(zerolog.NewTestWriter(t))))

			var v any
			assert.False(t, store.Get("links", &v))
			assert.Empty(t, store.Keys())

			// A write replaces the corrupt blob.
			require.NoError(t, store.Set("folders", []string{"Work"}))
			assert.Equal(t, []string{"folders"}, store.Keys())
		})
	}
}

func TestStoreGetUndecodableValue(t *testing.T) {
	store := New(NewMemory([]byte(`{"folders":{"a":1}}`)))

	var folders []string
	assert.False(t, store.Get("folders", &folders))
	assert.True(t, store.Has("folders"))
}

func TestStoreSetFailureKeepsState(t *testing.T) {
	store, mem := newTestStore(t)
	require.NoError(t, store.Set("folders", []string{"Work"}))
	before := mem.Bytes()

	t.Run("backend failure", func(t *testing.T) {
		mem.FailSaves(true)
		defer mem.FailSaves(false)

		err := store.Set("folders", []string{"Changed"})
		require.Error(t, err)
		assert.Equal(t, errx.Unavailable, errx.KindOf(err))
		assert.Equal(t, before, mem.Bytes())
	})

	t.Run("unencodable value", func(t *testing.T) {
		err := store.Set("ratio", math.Inf(1))
		require.Error(t, err)
		assert.Equal(t, errx.Invalid, errx.KindOf(err))
		assert.Equal(t, before, mem.Bytes())
	})

	t.Run("backend read failure does not clobber", func(t *testing.T) {
		mem.FailLoads(true)
		defer mem.FailLoads(false)

		err := store.Set("links", []string{})
		require.Error(t, err)
		assert.Equal(t, errx.Unavailable, errx.KindOf(err))
		assert.Equal(t, before, mem.Bytes())
	})

	var folders []string
	require.True(t, store.Get("folders", &folders))
	assert.Equal(t, []string{"Work"}, folders)
}

func TestStoreQuota(t *testing.T) {
	store, mem := newTestStore(t, WithQuota(64))
	require.NoError(t, store.Set("a", "small"))
	before := mem.Bytes()

	err := store.Set("b", string(make([]byte, 100)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, errx.Unavailable, errx.KindOf(err))
	assert.Equal(t, before, mem.Bytes())
}

func TestStoreRemove(t *testing.T) {
	store, mem := newTestStore(t)
	require.NoError(t, store.Set("a", 1))
	require.NoError(t, store.Set("b", 2))
	saves := mem.Saves()

	require.NoError(t, store.Remove("missing"))
	assert.Equal(t, saves, mem.Saves(), "removing an absent key should not write")

	require.NoError(t, store.Remove("a"))
	assert.Equal(t, []string{"b"}, store.Keys())
}

func TestStoreClearAll(t *testing.T) {
	store, mem := newTestStore(t)
	require.NoError(t, store.Set("a", 1))

	require.NoError(t, store.ClearAll())
	assert.Empty(t, store.Keys())
	assert.Nil(t, mem.Bytes())

	require.NoError(t, store.ClearAll())
}
