package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestKV(t *testing.T) *KV {
	t.Helper()
	kv, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestBlobRoundTrip(t *testing.T) {
	kv := openTestKV(t)

	require.NoError(t, kv.PutBlob("k", []byte("hello"), 1234))

	data, storedAt, err := kv.GetBlob("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, int64(1234), storedAt)
}

func TestGetBlobMissing(t *testing.T) {
	kv := openTestKV(t)

	_, _, err := kv.GetBlob("absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutBlobOverwrites(t *testing.T) {
	kv := openTestKV(t)

	require.NoError(t, kv.PutBlob("k", []byte("one"), 1))
	require.NoError(t, kv.PutBlob("k", []byte("two"), 2))

	data, storedAt, err := kv.GetBlob("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), data)
	assert.Equal(t, int64(2), storedAt)
}

func TestJSONRoundTrip(t *testing.T) {
	kv := openTestKV(t)

	type prefs struct {
		SortBy string `json:"sortBy"`
		Max    int    `json:"max"`
	}

	kv.PutJSON("prefs", prefs{SortBy: "liquidity", Max: 500})

	var out prefs
	require.NoError(t, kv.GetJSON("prefs", &out))
	assert.Equal(t, "liquidity", out.SortBy)
	assert.Equal(t, 500, out.Max)
}

func TestGetJSONCorruptValue(t *testing.T) {
	kv := openTestKV(t)

	require.NoError(t, kv.PutBlob("bad", []byte("not json"), 1))

	var out map[string]any
	assert.Error(t, kv.GetJSON("bad", &out))
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	kv, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, kv.PutBlob("k", []byte("survives"), 7))
	require.NoError(t, kv.Close())

	kv, err = Open(path, zap.NewNop())
	require.NoError(t, err)
	defer func() { _ = kv.Close() }()

	data, storedAt, err := kv.GetBlob("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("survives"), data)
	assert.Equal(t, int64(7), storedAt)
}
