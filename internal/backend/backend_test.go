package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/MimeLyc/deep-research-agent/internal/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "/final_report.md", want: "/final_report.md"},
		{in: "notes/a.md", want: "/notes/a.md"},
		{in: "/notes/./a.md", want: "/notes/a.md"},
		{in: "/memories/", want: "/memories"},
		{in: "/", want: "/"},
		{in: "", wantErr: true},
		{in: "/../etc/passwd", wantErr: true},
		{in: `\windows\path`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CleanPath(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilesystemBackend_VirtualMode(t *testing.T) {
	root := t.TempDir()
	b := NewFilesystemBackend(root, true)
	ctx := context.Background()
	assert.Equal(t, root, b.Root())

	require.NoError(t, b.Write(ctx, "/final_report.md", "# Report"))
	data, err := os.ReadFile(filepath.Join(root, "final_report.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Report", string(data))

	got, err := b.Read(ctx, "/final_report.md")
	require.NoError(t, err)
	assert.Equal(t, "# Report", got)

	err = b.Write(ctx, "/final_report.md", "again")
	assert.ErrorIs(t, err, ErrExists)

	err = b.Write(ctx, "/../escape.md", "x")
	assert.ErrorIs(t, err, ErrInvalidPath)
	_, statErr := os.Stat(filepath.Join(filepath.Dir(root), "escape.md"))
	assert.True(t, os.IsNotExist(statErr))

	_, err = b.Read(ctx, "/missing.md")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.Write(ctx, "/drafts/a.md", "a"))
	infos, err := b.List(ctx, "/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "/drafts/", infos[0].Path)
	assert.True(t, infos[0].IsDir)
	assert.Equal(t, "/final_report.md", infos[1].Path)
	assert.Equal(t, int64(len("# Report")), infos[1].Size)
}

func TestFilesystemBackend_Edit(t *testing.T) {
	b := NewFilesystemBackend(t.TempDir(), true)
	ctx := context.Background()
	require.NoError(t, b.Write(ctx, "/a.md", "foo bar foo"))

	_, err := b.Edit(ctx, "/a.md", "foo", "baz", false)
	assert.ErrorIs(t, err, ErrAmbiguousMatch)

	_, err = b.Edit(ctx, "/a.md", "qux", "baz", false)
	assert.ErrorIs(t, err, ErrNoMatch)

	n, err := b.Edit(ctx, "/a.md", "bar", "BAR", false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = b.Edit(ctx, "/a.md", "foo", "baz", true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := b.Read(ctx, "/a.md")
	require.NoError(t, err)
	assert.Equal(t, "baz BAR baz", got)
}

func TestStoreBackend(t *testing.T) {
	store := persistence.NewMemoryStore()
	b := NewStoreBackend(store, "filesystem")
	ctx := context.Background()

	require.NoError(t, b.Write(ctx, "/prefs.md", "concise"))
	require.NoError(t, b.Write(ctx, "/topics/ai.md", "agents"))
	assert.ErrorIs(t, b.Write(ctx, "/prefs.md", "x"), ErrExists)

	item, err := store.Get(ctx, "filesystem", "/prefs.md")
	require.NoError(t, err)
	assert.Equal(t, "concise", string(item.Value))

	infos, err := b.List(ctx, "/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "/prefs.md", infos[0].Path)
	assert.Equal(t, "/topics/", infos[1].Path)
	assert.True(t, infos[1].IsDir)

	n, err := b.Edit(ctx, "/prefs.md", "concise", "detailed", false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	got, err := b.Read(ctx, "/prefs.md")
	require.NoError(t, err)
	assert.Equal(t, "detailed", got)

	_, err = b.Read(ctx, "/nope.md")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompositeBackend_RoutesMemories(t *testing.T) {
	root := t.TempDir()
	store := persistence.NewMemoryStore()
	fsBackend := NewFilesystemBackend(root, true)
	b := NewCompositeBackend(fsBackend, map[string]Backend{
		"/memories/": NewStoreBackend(store, "filesystem"),
	})
	ctx := context.Background()

	assert.Equal(t, []string{"/memories/"}, b.Routes())

	require.NoError(t, b.Write(ctx, "/research_request.md", "question"))
	require.NoError(t, b.Write(ctx, "/memories/notes.md", "long-lived"))

	// default route lands on disk, the memories route in the store with the prefix stripped
	_, err := os.Stat(filepath.Join(root, "research_request.md"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "memories"))
	assert.True(t, os.IsNotExist(err))
	item, err := store.Get(ctx, "filesystem", "/notes.md")
	require.NoError(t, err)
	assert.Equal(t, "long-lived", string(item.Value))

	got, err := b.Read(ctx, "/memories/notes.md")
	require.NoError(t, err)
	assert.Equal(t, "long-lived", got)

	infos, err := b.List(ctx, "/memories/")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "/memories/notes.md", infos[0].Path)

	rootInfos, err := b.List(ctx, "/")
	require.NoError(t, err)
	paths := make([]string, 0, len(rootInfos))
	for _, info := range rootInfos {
		paths = append(paths, info.Path)
	}
	assert.Equal(t, []string{"/memories/", "/research_request.md"}, paths)

	n, err := b.Edit(ctx, "/memories/notes.md", "long", "short", false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, b.Write(ctx, "/memories/../../x.md", "x"), ErrInvalidPath)
}
