package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-pluginform/pkg/form"
	"github.com/goliatone/go-pluginform/pkg/model"
	"github.com/goliatone/go-pluginform/pkg/store"
)

const existingConfig = `[basic]
name = "pingap"

[plugins.stats]
category = "stats"
step = "request"
value = "/stats"

[locations.lo]
path = "/"
upstream = "charts"
weight = 1024
proxy_plugins = ["stats"]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pingap.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestTOMLStoreLoad(t *testing.T) {
	ctx := context.Background()
	path := writeConfig(t, existingConfig)

	plugins := store.NewTOMLStore(path)
	names, err := plugins.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"stats"}, names)

	data, err := plugins.Load(ctx, "stats")
	require.NoError(t, err)
	assert.Equal(t, model.FormState{"category": "stats", "step": "request", "value": "/stats"}, data)

	locations := store.NewTOMLStore(path, store.WithSection("locations"))
	data, err = locations.Load(ctx, "lo")
	require.NoError(t, err)
	assert.Equal(t, float64(1024), data["weight"])
	assert.Equal(t, []string{"stats"}, data["proxy_plugins"])

	_, err = plugins.Load(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTOMLStoreUpsertPreservesOtherSections(t *testing.T) {
	ctx := context.Background()
	path := writeConfig(t, existingConfig)
	plugins := store.NewTOMLStore(path)

	err := plugins.Upsert(ctx, "limit", model.FormState{
		"category": "limit",
		"value":    "rate 10",
		"step":     "request",
		"remark":   nil,
		"weight":   float64(3),
	})
	require.NoError(t, err)

	names, err := plugins.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"limit", "stats"}, names)

	data, err := plugins.Load(ctx, "limit")
	require.NoError(t, err)
	assert.Equal(t, model.FormState{
		"category": "limit",
		"value":    "rate 10",
		"step":     "request",
		"weight":   float64(3),
	}, data)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "weight = 3\n")
	assert.NotContains(t, string(content), "remark")

	locations := store.NewTOMLStore(path, store.WithSection("locations"))
	lo, err := locations.Load(ctx, "lo")
	require.NoError(t, err)
	assert.Equal(t, "charts", lo["upstream"])

	basic := store.NewTOMLStore(path, store.WithSection("basic"))
	_, err = basic.Names(ctx)
	require.NoError(t, err)
}

func TestTOMLStoreCreatesFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "new.toml")
	plugins := store.NewTOMLStore(path)

	names, err := plugins.Names(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, plugins.Upsert(ctx, "ping", model.FormState{"category": "ping", "value": "/ping"}))
	_, err = os.Stat(path)
	require.NoError(t, err)

	assert.ErrorIs(t, plugins.Upsert(ctx, " ", model.FormState{}), store.ErrInvalidName)
}

func TestTOMLStoreDelete(t *testing.T) {
	ctx := context.Background()
	path := writeConfig(t, existingConfig)
	plugins := store.NewTOMLStore(path)

	require.NoError(t, plugins.Delete(ctx, "stats"))
	names, err := plugins.Names(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	assert.ErrorIs(t, plugins.Delete(ctx, "stats"), store.ErrNotFound)
}

func TestTOMLStoreRejectsNonTableSection(t *testing.T) {
	path := writeConfig(t, "plugins = \"nope\"\n")
	_, err := store.NewTOMLStore(path).Names(context.Background())
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore(map[string]model.FormState{
		"b": {"value": "x"},
	})

	require.NoError(t, mem.Upsert(ctx, "a", model.FormState{"value": "y"}))
	names, err := mem.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	data, err := mem.Load(ctx, "a")
	require.NoError(t, err)
	data["value"] = "mutated"
	again, err := mem.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "y", again["value"])

	assert.ErrorIs(t, mem.Delete(ctx, "c"), store.ErrNotFound)
}

func TestControllerWithStore(t *testing.T) {
	ctx := context.Background()
	path := writeConfig(t, existingConfig)
	plugins := store.NewTOMLStore(path)

	data, err := plugins.Load(ctx, "stats")
	require.NoError(t, err)
	items := []model.FieldDescriptor{
		{ID: "category", Category: model.CategorySelect, DefaultValue: data["category"]},
		{ID: "value", Category: model.CategoryPlugin, DefaultValue: data["value"]},
		{ID: "step", Category: model.CategoryPluginStep, DefaultValue: data["step"]},
	}
	ctrl := form.NewController(items, plugins,
		form.WithName("stats"),
		form.WithRemover(store.Bind(plugins, "stats")),
	)

	ctrl.UpdateText("value", "/status")
	require.NoError(t, ctrl.Submit(ctx))
	saved, err := plugins.Load(ctx, "stats")
	require.NoError(t, err)
	assert.Equal(t, "/status", saved["value"])

	require.NoError(t, ctrl.OpenRemoveDialog())
	require.NoError(t, ctrl.ConfirmRemove(ctx))
	_, err = plugins.Load(ctx, "stats")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
