package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestListRecipes(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "recipes.json")
	content := `[{"id":"1","name":"Soup","ingredients":["water","salt"],"servings":4,"rating":4.5}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, listRecipes(ctx, &out, path, "json"))
		assert.Equal(t, content+"\n", out.String())
	})

	t.Run("yaml", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, listRecipes(ctx, &out, path, "yaml"))

		var got []map[string]interface{}
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "1", got[0]["id"])
		assert.Equal(t, 4, got[0]["servings"])
		assert.Equal(t, 4.5, got[0]["rating"])
		assert.Equal(t, []interface{}{"water", "salt"}, got[0]["ingredients"])
		assert.Contains(t, out.String(), "servings: 4\n")
	})

	t.Run("unknown format", func(t *testing.T) {
		var out bytes.Buffer
		assert.Error(t, listRecipes(ctx, &out, path, "xml"))
	})
}

func TestListRecipesBootstrapsStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.json")

	var out bytes.Buffer
	require.NoError(t, listRecipes(context.Background(), &out, path, "json"))
	assert.Equal(t, "[]\n", out.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestListRecipesCorruptStoreAsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	var out bytes.Buffer
	assert.Error(t, listRecipes(context.Background(), &out, path, "yaml"))
}

func TestVersionCommand(t *testing.T) {
	cmd := NewVersionCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "RecipeBox "+Version)
	assert.Contains(t, out.String(), "Git Commit: "+GitCommit)
}

func TestRecipesListCommand(t *testing.T) {
	t.Setenv("STORE_PATH", filepath.Join(t.TempDir(), "recipes.json"))

	cmd := NewRecipesCommand()
	cmd.PersistentFlags().String("config", "", "")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"list", "--format", "yaml"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "[]\n", out.String())
}
