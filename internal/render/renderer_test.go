package render

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/projectdeck/internal/cache"
	"github.com/fyrsmithlabs/projectdeck/internal/mutation"
	"github.com/fyrsmithlabs/projectdeck/internal/project"
	"github.com/fyrsmithlabs/projectdeck/internal/registry"
	"github.com/fyrsmithlabs/projectdeck/internal/settings"
)

type fakeSource struct {
	coll     project.Collection
	favicons bool
	err      error
}

func (f *fakeSource) Current(context.Context) (project.Collection, error) {
	return f.coll, f.err
}

func (f *fakeSource) FetchFavicons(context.Context) bool {
	return f.favicons
}

func TestRender_Rows(t *testing.T) {
	src := &fakeSource{coll: project.Collection{
		{
			ID:            "Xq3v_9Tf",
			Name:          "Web <App>",
			Path:          "/work/web",
			Color:         project.Value("#ff8800"),
			ProductionURL: project.Value("https://web.example.com/home"),
			DevURL:        project.Null(),
		},
		{ID: "b2", Name: "API", Path: "/work/api", Color: project.Value("red; background: url(x)")},
	}}
	out, err := NewRenderer(src).Render(context.Background())
	require.NoError(t, err)

	assert.Contains(t, out, `id="project-xq3v_9tf"`)
	assert.Contains(t, out, `data-id="Xq3v_9Tf"`)
	assert.Contains(t, out, "Web &lt;App&gt;")
	assert.NotContains(t, out, "<App>")
	assert.Contains(t, out, `style="border-left-color: #ff8800"`)
	assert.NotContains(t, out, "background: url", "malformed color is dropped")
	assert.Contains(t, out, `<a href="https://web.example.com/home">prod</a>`)
	assert.NotContains(t, out, ">dev<", "null URL renders no link")
	assert.NotContains(t, out, "favicon.ico")
	assert.Contains(t, out, ".deck-project", "stylesheet is inlined")
	assert.Less(t, strings.Index(out, "Web &lt;App&gt;"), strings.Index(out, "API"), "deck order is kept")
}

func TestRender_Favicons(t *testing.T) {
	src := &fakeSource{
		favicons: true,
		coll: project.Collection{
			{ID: "a1", Name: "A", Path: "/a", StagingURL: project.Value("https://staging.example.com:8443/x")},
			{ID: "b2", Name: "B", Path: "/b"},
		},
	}
	out, err := NewRenderer(src).Render(context.Background())
	require.NoError(t, err)

	assert.Contains(t, out, `<img class="favicon" src="https://staging.example.com:8443/favicon.ico" alt="">`)
	assert.Equal(t, 1, strings.Count(out, `class="favicon"`), "no favicon without a URL")
	assert.Contains(t, out, `data-command="favicons" checked`)
}

func TestRender_UnsafeURL(t *testing.T) {
	src := &fakeSource{coll: project.Collection{
		{ID: "a1", Name: "A", Path: "/a", ManagementURL: project.Value("javascript:alert(1)")},
	}}
	out, err := NewRenderer(src).Render(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, out, "javascript:")
}

func TestRender_Empty(t *testing.T) {
	out, err := NewRenderer(&fakeSource{}).Render(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out, `class="deck-empty"`)
	assert.NotContains(t, out, `class="deck-list"`)
}

func TestRender_SourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewRenderer(&fakeSource{err: boom}).Render(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestRender_BlocksMemoized(t *testing.T) {
	metrics := cache.NewMetrics(prometheus.NewRegistry())
	blocks := NewBlocks(cache.NewMemo("blocks", metrics))
	assets := NewAssets(cache.NewMemo("assets", metrics))
	src := &fakeSource{coll: project.Collection{{ID: "a1", Name: "A", Path: "/a"}}}
	r := NewRenderer(src, WithBlocks(blocks), WithAssets(assets))
	ctx := context.Background()

	for range 3 {
		_, err := r.Render(ctx)
		require.NoError(t, err)
	}
	src.favicons = true
	_, err := r.Render(ctx)
	require.NoError(t, err)

	// menu(off), menu(on), empty-state
	assert.Equal(t, 3, blocks.memo.Len())
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.Misses.WithLabelValues("blocks")))
	assert.Equal(t, 5.0, testutil.ToFloat64(metrics.Hits.WithLabelValues("blocks")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Misses.WithLabelValues("assets")))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.Hits.WithLabelValues("assets")))
}

func TestRender_RedrawsShareOneLoad(t *testing.T) {
	metrics := cache.NewMetrics(prometheus.NewRegistry())
	mem := settings.NewMemory()
	mem.Set(settings.DefaultProjectsKey, json.RawMessage(`[{"id":"a1","name":"A","path":"/a"}]`))
	snap := cache.NewSnapshot[project.Collection]("snapshot", metrics)
	store := registry.NewStore(mem, registry.WithSnapshot(snap))
	r := NewRenderer(store)
	ctx := context.Background()

	require.NoError(t, store.ReplaceAll(ctx, project.Collection{{ID: "b2", Name: "B", Path: "/b"}}))
	store.Invalidate(cache.ReasonLocalWrite)

	for range 3 {
		out, err := r.Render(ctx)
		require.NoError(t, err)
		assert.Contains(t, out, `data-id="b2"`)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Misses.WithLabelValues("snapshot")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Hits.WithLabelValues("snapshot")))
}

func TestRender_OneBackendReadPerMutation(t *testing.T) {
	mem := settings.NewMemory()
	mem.Set(settings.DefaultProjectsKey, json.RawMessage(`[{"id":"a1","name":"A","path":"/a"}]`))
	mem.Set(settings.DefaultFaviconsKey, json.RawMessage(`true`))
	store := registry.NewStore(mem)
	coord, err := mutation.New(mutation.Deps{Registry: store})
	require.NoError(t, err)
	r := NewRenderer(store)
	ctx := context.Background()

	_, err = r.Render(ctx)
	require.NoError(t, err)

	_, err = coord.Update(ctx, mutation.UpdateRequest{ID: "a1", Patch: project.Patch{Color: project.Set("#000")}})
	require.NoError(t, err)

	reads := mem.Reads()
	for range 3 {
		out, err := r.Render(ctx)
		require.NoError(t, err)
		assert.Contains(t, out, "border-left-color: #000")
		assert.Contains(t, out, "checked", "favicon preference is served from cache")
	}
	assert.Equal(t, 1, mem.Reads()-reads)

	// Toggling the preference costs one read of that key only.
	_, err = coord.SetFetchFavicons(ctx, false)
	require.NoError(t, err)
	reads = mem.Reads()
	for range 3 {
		_, err := r.Render(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, mem.Reads()-reads)
}

func TestAssets(t *testing.T) {
	a := NewAssets(cache.NewMemo("assets", nil))

	css, err := a.Stylesheet()
	require.NoError(t, err)
	assert.Contains(t, css, ".deck-list")

	log, err := a.Changelog()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(log, "# Changelog"))

	_, err = a.Get("assets/missing.txt")
	require.Error(t, err)
	assert.Equal(t, 2, a.memo.Len(), "failures are not cached")

	reads := 0
	a.read = func(name string) ([]byte, error) {
		reads++
		return assetFS.ReadFile(name)
	}
	_, err = a.Stylesheet()
	require.NoError(t, err)
	assert.Zero(t, reads, "served from the memo")
}
