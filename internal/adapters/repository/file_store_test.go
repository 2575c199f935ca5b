package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/core/internal/adapters/repository"
	"github.com/recipebox/core/internal/domain/entities"
)

func storePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "recipes.json")
}

func TestFileStore_ReadRawBootstrapsMissingFile(t *testing.T) {
	path := storePath(t)
	s := repository.NewFileStore(path)

	data, err := s.ReadRaw(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(onDisk))
}

func TestFileStore_ReadRawReturnsBytesVerbatim(t *testing.T) {
	path := storePath(t)
	content := "[{\"name\":\"b\",\"id\":\"1\"},   not even json"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	data, err := repository.NewFileStore(path).ReadRaw(context.Background())
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestFileStore_ReadRawCreateFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "recipes.json")

	_, err := repository.NewFileStore(path).ReadRaw(context.Background())
	assert.ErrorIs(t, err, entities.ErrStoreCreate)
}

func TestFileStore_ReadRawReadFailure(t *testing.T) {
	// A directory exists but cannot be read as a file
	path := t.TempDir()

	_, err := repository.NewFileStore(path).ReadRaw(context.Background())
	assert.ErrorIs(t, err, entities.ErrStoreRead)
}

func TestFileStore_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file is a read error", func(t *testing.T) {
		path := storePath(t)
		_, err := repository.NewFileStore(path).Load(ctx)
		assert.ErrorIs(t, err, entities.ErrStoreRead)

		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr), "Load must not create the file")
	})

	t.Run("corrupt file is empty", func(t *testing.T) {
		path := storePath(t)
		require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o644))

		coll, err := repository.NewFileStore(path).Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, coll)
	})

	t.Run("valid file", func(t *testing.T) {
		path := storePath(t)
		require.NoError(t, os.WriteFile(path, []byte(`[{"id":"1","name":"Soup"}]`), 0o644))

		coll, err := repository.NewFileStore(path).Load(ctx)
		require.NoError(t, err)
		require.Len(t, coll, 1)
		assert.Equal(t, `{"id":"1","name":"Soup"}`, string(coll[0]))
	})
}

func TestFileStore_LoadOrEmpty(t *testing.T) {
	ctx := context.Background()

	path := storePath(t)
	s := repository.NewFileStore(path)
	assert.Empty(t, s.LoadOrEmpty(ctx), "missing file")

	require.NoError(t, os.WriteFile(path, nil, 0o644))
	assert.Empty(t, s.LoadOrEmpty(ctx), "empty file")

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	assert.Empty(t, s.LoadOrEmpty(ctx), "corrupt file")

	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"1"}]`), 0o644))
	assert.Len(t, s.LoadOrEmpty(ctx), 1)
}

func TestFileStore_SaveOverwritesWithIndentation(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts []repository.FileStoreOption
	}{
		{"plain", nil},
		{"atomic", []repository.FileStoreOption{repository.WithAtomicWrites()}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			path := storePath(t)
			require.NoError(t, os.WriteFile(path, []byte("a much longer previous content that must disappear"), 0o644))

			s := repository.NewFileStore(path, tc.opts...)
			require.NoError(t, s.Save(ctx, entities.Collection{entities.Recipe(`{"id":"1","name":"Soup"}`)}))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "[\n  {\n    \"id\": \"1\",\n    \"name\": \"Soup\"\n  }\n]", string(data))

			entries, err := os.ReadDir(filepath.Dir(path))
			require.NoError(t, err)
			assert.Len(t, entries, 1, "no temporary files are left behind")
		})
	}
}

func TestFileStore_SaveFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "recipes.json")

	err := repository.NewFileStore(path).Save(context.Background(), entities.Collection{})
	assert.ErrorIs(t, err, entities.ErrStoreWrite)
}

func TestFileStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := storePath(t)
	s := repository.NewFileStore(path)

	_, err := s.ReadRaw(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Save(ctx, entities.Collection{}), context.Canceled)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileStore_Metrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	s := repository.NewFileStore(storePath(t), repository.WithMetrics(repository.NewMetrics(reg)))

	_, err := s.ReadRaw(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, entities.Collection{}))

	n, err := testutil.GatherAndCount(reg, "recipebox_store_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
