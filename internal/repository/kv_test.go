package repository

import (
	"context"
	"path/filepath"
	"testing"

	"pdf-slide-synth/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, fields ...interface{})            {}
func (nopLogger) Debug(msg string, fields ...interface{})           {}
func (nopLogger) Warn(msg string, fields ...interface{})            {}
func (nopLogger) Error(msg string, err error, fields ...interface{}) {}

func kvBackends(t *testing.T) map[string]domain.KVStore {
	t.Helper()
	sqlite, err := NewSQLiteKVStore(filepath.Join(t.TempDir(), "jobs.db"), nopLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]domain.KVStore{
		"memory": NewMemoryKVStore(),
		"sqlite": sqlite,
	}
}

func TestKVStore_Contract(t *testing.T) {
	ctx := context.Background()
	for name, kv := range kvBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get(ctx, "missing")
			assert.ErrorIs(t, err, domain.ErrKeyNotFound)

			require.NoError(t, kv.Set(ctx, "k", []byte(`["a"]`)))
			got, err := kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, `["a"]`, string(got))

			require.NoError(t, kv.Set(ctx, "k", []byte(`["b"]`)))
			got, err = kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, `["b"]`, string(got))

			require.NoError(t, kv.Delete(ctx, "k"))
			_, err = kv.Get(ctx, "k")
			assert.ErrorIs(t, err, domain.ErrKeyNotFound)

			assert.NoError(t, kv.Delete(ctx, "never-set"))
		})
	}
}

func TestMemoryKVStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKVStore()
	value := []byte("abc")
	require.NoError(t, kv.Set(ctx, "k", value))
	value[0] = 'z'

	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestSQLiteKVStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "jobs.db")

	first, err := NewSQLiteKVStore(path, nopLogger{})
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "k", []byte("v")))
	require.NoError(t, first.Close())

	second, err := NewSQLiteKVStore(path, nopLogger{})
	require.NoError(t, err)
	defer second.Close()
	got, err := second.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}
