package registry

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/projectdeck/internal/cache"
	"github.com/fyrsmithlabs/projectdeck/internal/logging"
	"github.com/fyrsmithlabs/projectdeck/internal/project"
	"github.com/fyrsmithlabs/projectdeck/internal/settings"
)

func seed(t *testing.T, mem *settings.Memory, raw string) {
	t.Helper()
	require.True(t, json.Valid([]byte(raw)), "seed must be valid JSON")
	mem.Set(settings.DefaultProjectsKey, json.RawMessage(raw))
}

func TestStore_LoadEmpty(t *testing.T) {
	s := NewStore(settings.NewMemory())

	coll, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, coll)
	assert.Empty(t, coll)
}

func TestStore_LoadLenient(t *testing.T) {
	mem := settings.NewMemory()
	seed(t, mem, `[
		{"id": "a1", "name": "Alpha", "path": "/src/alpha"},
		{"id": 42, "name": "broken"},
		{"name": "", "path": "/src/nameless"},
		{"name": "No Path"},
		{"name": "Relative", "path": "src/rel"},
		{"id": "a1", "name": "Twin", "path": "/src/twin"},
		{"id": "a1", "name": "Alpha", "path": "/src/alpha"}
	]`)
	tl := logging.NewTestLogger()
	s := NewStore(mem, WithLogger(tl.Logger))

	coll, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, coll, 4)

	assert.Equal(t, "a1", coll[0].ID)
	assert.Equal(t, "nameless", coll[1].Name)
	assert.Equal(t, project.Identify("nameless", "/src/nameless"), coll[1].ID)
	assert.Equal(t, "Twin", coll[2].Name)
	assert.Equal(t, project.Identify("Twin", "/src/twin"), coll[2].ID, "duplicate id re-derived")
	assert.Equal(t, "Alpha", coll[3].Name)
	assert.Equal(t, project.Identify("Alpha", "/src/alpha"), coll[3].ID)

	tl.AssertLogged(t, zapcore.WarnLevel, "skipping corrupt project entry")
	tl.AssertLogged(t, zapcore.WarnLevel, "without usable path")
	tl.AssertLogged(t, zapcore.WarnLevel, "re-derived duplicate project id")
}

func TestStore_LoadSkipsUnresolvableDuplicate(t *testing.T) {
	mem := settings.NewMemory()
	derived := project.Identify("Alpha", "/src/alpha")
	seed(t, mem, `[
		{"id": "`+derived+`", "name": "Alpha", "path": "/src/alpha"},
		{"id": "`+derived+`", "name": "Alpha", "path": "/SRC/alpha/"}
	]`)
	s := NewStore(mem)

	coll, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, coll, 1)
}

func TestStore_LoadCorrupted(t *testing.T) {
	mem := settings.NewMemory()
	seed(t, mem, `{"not": "a list"}`)
	s := NewStore(mem)

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, settings.ErrCorrupted)
}

func TestStore_ReplaceAllRoundTrip(t *testing.T) {
	mem := settings.NewMemory()
	s := NewStore(mem)
	ctx := context.Background()

	p, err := project.NewProject("Deck", "/src/deck")
	require.NoError(t, err)
	p.Color = project.Null()
	p.DevURL = project.Value("http://localhost:3000")

	require.NoError(t, s.ReplaceAll(ctx, project.Collection{p}))

	coll, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, coll, 1)
	assert.Equal(t, p, coll[0])

	var fields map[string]any
	var list []map[string]any
	require.NoError(t, json.Unmarshal(mem.Raw(settings.DefaultProjectsKey), &list))
	fields = list[0]
	assert.Contains(t, fields, "color")
	assert.Nil(t, fields["color"])
	assert.NotContains(t, fields, "stagingUrl")

	assert.Equal(t, DigestRaw(mem.Raw(settings.DefaultProjectsKey)), s.Digest())
}

func TestStore_ReplaceAllFailure(t *testing.T) {
	mem := settings.NewMemory()
	seed(t, mem, `[{"id":"a1","name":"A","path":"/a"}]`)
	s := NewStore(mem)
	ctx := context.Background()

	before, err := s.Current(ctx)
	require.NoError(t, err)
	digest := s.Digest()

	mem.FailWrites = errors.New("disk full")
	err = s.ReplaceAll(ctx, project.Collection{{ID: "b2", Name: "B", Path: "/b"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Contains(t, err.Error(), "disk full")

	after, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, digest, s.Digest())
	assert.JSONEq(t, `[{"id":"a1","name":"A","path":"/a"}]`, string(mem.Raw(settings.DefaultProjectsKey)))
}

func TestStore_ReplaceAllRejectsDuplicateIDs(t *testing.T) {
	s := NewStore(settings.NewMemory())
	err := s.ReplaceAll(context.Background(), project.Collection{
		{ID: "x", Name: "A", Path: "/a"},
		{ID: "x", Name: "B", Path: "/b"},
	})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, project.ErrDuplicateID)
}

func TestStore_SnapshotCoalescing(t *testing.T) {
	mem := settings.NewMemory()
	seed(t, mem, `[{"id":"a1","name":"A","path":"/a"}]`)
	metrics := cache.NewMetrics(prometheus.NewRegistry())
	s := NewStore(mem, WithSnapshot(cache.NewSnapshot[project.Collection]("snapshot", metrics)))
	ctx := context.Background()

	_, err := s.Current(ctx)
	require.NoError(t, err)

	// One mutation, then three redraws.
	coll, err := s.Load(ctx)
	require.NoError(t, err)
	coll = append(coll, project.Project{ID: "b2", Name: "B", Path: "/b"})
	require.NoError(t, s.ReplaceAll(ctx, coll))
	s.Invalidate(cache.ReasonLocalWrite)

	readsBefore := mem.Reads()
	for range 3 {
		got, err := s.Current(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	}
	assert.Equal(t, 1, mem.Reads()-readsBefore)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Misses.WithLabelValues("snapshot")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Hits.WithLabelValues("snapshot")))
}

func TestStore_Lookups(t *testing.T) {
	mem := settings.NewMemory()
	seed(t, mem, `[{"id":"a1","name":"A","path":"/src/a"},{"id":"b2","name":"B","path":"/src/b"}]`)
	s := NewStore(mem)
	ctx := context.Background()

	p, err := s.FindByID(ctx, "b2")
	require.NoError(t, err)
	assert.Equal(t, "B", p.Name)

	p, err = s.FindByPath(ctx, "/src/a/")
	require.NoError(t, err)
	assert.Equal(t, "a1", p.ID)

	p, err = s.Resolve(ctx, "missing", "/src/b")
	require.NoError(t, err)
	assert.Equal(t, "b2", p.ID)

	_, err = s.FindByID(ctx, "zz")
	assert.ErrorIs(t, err, project.ErrProjectNotFound)

	assert.Equal(t, 1, mem.Reads(), "lookups share one snapshot load")
}

func TestStore_DigestIgnoresFormatting(t *testing.T) {
	a := DigestRaw(json.RawMessage(`[{"id":"a","name":"A","path":"/a"}]`))
	b := DigestRaw(json.RawMessage("[\n  {\"id\": \"a\", \"name\": \"A\", \"path\": \"/a\"}\n]"))
	assert.Equal(t, a, b)
	assert.Empty(t, DigestRaw(nil))
	assert.NotEqual(t, a, DigestRaw(json.RawMessage(`[]`)))
}

func TestStore_DigestMatchesFileRoundTrip(t *testing.T) {
	f, err := settings.NewFile(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)
	s := NewStore(f)
	ctx := context.Background()

	require.NoError(t, s.ReplaceAll(ctx, project.Collection{{ID: "a1", Name: "A <&>", Path: "/a"}}))

	disk, err := s.ReadDigest(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.Digest(), disk, "own write is recognised after the file re-indents it")

	_, err = os.Stat(f.Path())
	require.NoError(t, err)
}

func TestStore_FetchFavicons(t *testing.T) {
	mem := settings.NewMemory()
	s := NewStore(mem)
	ctx := context.Background()

	assert.False(t, s.FetchFavicons(ctx))
	require.NoError(t, s.SetFetchFavicons(ctx, true))
	assert.False(t, s.FetchFavicons(ctx), "cached until invalidated")

	s.InvalidatePreferences(cache.ReasonLocalWrite)
	assert.True(t, s.FetchFavicons(ctx))

	mem.Set(settings.DefaultFaviconsKey, json.RawMessage(`"yes"`))
	s.InvalidatePreferences(cache.ReasonExternalChange)
	assert.False(t, s.FetchFavicons(ctx))

	mem.FailWrites = errors.New("read-only")
	assert.ErrorIs(t, s.SetFetchFavicons(ctx, false), ErrPersistence)
}

func TestStore_FetchFaviconsReadsOncePerInvalidation(t *testing.T) {
	mem := settings.NewMemory()
	mem.Set(settings.DefaultFaviconsKey, json.RawMessage(`true`))
	s := NewStore(mem)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, s.FetchFavicons(ctx))
	}
	assert.Equal(t, 1, mem.Reads())

	// A project write leaves the preference cached.
	require.NoError(t, s.ReplaceAll(ctx, project.Collection{{ID: "a", Name: "A", Path: "/a"}}))
	s.Invalidate(cache.ReasonLocalWrite)
	assert.True(t, s.FetchFavicons(ctx))
	assert.Equal(t, 1, mem.Reads())
}

func TestStore_Digests(t *testing.T) {
	mem := settings.NewMemory()
	s := NewStore(mem)
	ctx := context.Background()

	assert.Equal(t, Digests{}, s.Digests())

	require.NoError(t, s.ReplaceAll(ctx, project.Collection{{ID: "a", Name: "A", Path: "/a"}}))
	require.NoError(t, s.SetFetchFavicons(ctx, true))

	disk, err := s.ReadDigests(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.Digests(), disk, "own writes are recognised")
	assert.Equal(t, DigestRaw(json.RawMessage(`true`)), disk.Favicons)

	mem.Set(settings.DefaultFaviconsKey, json.RawMessage(`false`))
	disk, err = s.ReadDigests(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.Digest(), disk.Projects)
	assert.NotEqual(t, s.Digests().Favicons, disk.Favicons)
}

func TestStore_CustomKeys(t *testing.T) {
	mem := settings.NewMemory()
	s := NewStore(mem, WithKeys("deck.items", "deck.icons"))
	ctx := context.Background()

	require.NoError(t, s.ReplaceAll(ctx, project.Collection{{ID: "a", Name: "A", Path: "/a"}}))
	assert.NotEmpty(t, mem.Raw("deck.items"))
	assert.Empty(t, mem.Raw(settings.DefaultProjectsKey))
	assert.Equal(t, "deck.items", s.ProjectsKey())
}
