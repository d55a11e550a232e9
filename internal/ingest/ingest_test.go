package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/constants"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/common"
)

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	touch(t, filepath.Join(root, "ECF 2025.pdf"), "ecf")
	touch(t, filepath.Join(root, "sales-2024.txt"), "sales")
	touch(t, filepath.Join(root, "copy of sales-2024.TXT"), "sales")
	touch(t, filepath.Join(root, "notes.md"), "ignored")
	touch(t, filepath.Join(root, ".hidden.pdf"), "hidden")
	touch(t, filepath.Join(root, ".cache", "land.pdf"), "cached")
	touch(t, filepath.Join(root, "2026", "land 2026.pdf"), "land")
	return root
}

func TestScanDirectory(t *testing.T) {
	root := fixtureDir(t)
	files, stats, err := ScanDirectory(context.Background(), root, Options{SkipHidden: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "2026", "land 2026.pdf"),
		filepath.Join(root, "ECF 2025.pdf"),
		filepath.Join(root, "copy of sales-2024.TXT"),
		filepath.Join(root, "sales-2024.txt"),
	}, files)
	assert.Equal(t, uint32(4), stats.Matched)
	assert.Zero(t, stats.Failed)

	all, _, err := ScanDirectory(context.Background(), root, Options{})
	require.NoError(t, err)
	assert.Len(t, all, 6)

	pdfOnly, _, err := ScanDirectory(context.Background(), root, Options{SkipHidden: true, Exts: map[string]struct{}{"pdf": {}}})
	require.NoError(t, err)
	assert.Len(t, pdfOnly, 2)
}

func TestScanDirectoryRequiresRoot(t *testing.T) {
	_, _, err := ScanDirectory(context.Background(), " ", Options{})
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	root := fixtureDir(t)
	extra := filepath.Join(t.TempDir(), "land.txt")
	touch(t, extra, "explicit")

	inputs, stats, err := Resolve(context.Background(), []string{extra, root}, Options{SkipHidden: true})
	require.NoError(t, err)
	require.Len(t, inputs, 4)
	assert.Equal(t, extra, inputs[0].Path)
	assert.Equal(t, constants.TEXT, inputs[0].Format)
	assert.Equal(t, int64(len("explicit")), inputs[0].Size)
	assert.Len(t, inputs[0].HashHex, 64)
	assert.Equal(t, constants.PDF, inputs[1].Format)
	assert.Equal(t, uint32(1), stats.Deduplicated)
}

func TestResolveMissingPath(t *testing.T) {
	_, stats, err := Resolve(context.Background(), []string{filepath.Join(t.TempDir(), "nope.pdf")}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnreadableInput)
	assert.Equal(t, uint32(1), stats.Failed)
}

func TestAllowedExtAndHidden(t *testing.T) {
	assert.True(t, AllowedExt(".PDF"))
	assert.True(t, AllowedExt("txt"))
	assert.False(t, AllowedExt(".png"))
	assert.True(t, IsHidden("/a/.b"))
	assert.False(t, IsHidden("/a/b"))
}

func TestWatch(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "ecf 2025.pdf")
	touch(t, existing, "ecf")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := Watch(ctx, WatchConfig{
		Roots:       []string{root},
		InitialScan: true,
		Debounce:    20 * time.Millisecond,
		SkipHidden:  true,
	}, nil)
	require.NoError(t, err)

	next := func() string {
		select {
		case p := <-events:
			return p
		case <-time.After(5 * time.Second):
			t.Fatal("no watch event")
			return ""
		}
	}
	assert.Equal(t, existing, next())

	created := filepath.Join(root, "land 2026.txt")
	touch(t, filepath.Join(root, "ignored.md"), "x")
	touch(t, created, "land")
	assert.Equal(t, created, next())

	cancel()
	for range events {
	}
}

func TestWatchRequiresRoots(t *testing.T) {
	_, _, err := Watch(context.Background(), WatchConfig{}, nil)
	assert.Error(t, err)
}
