package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIngestDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.pdf"), "invoice b")
	writeFile(t, filepath.Join(root, "a.pdf"), "invoice a")
	writeFile(t, filepath.Join(root, "sub", "c.txt"), "invoice c")
	writeFile(t, filepath.Join(root, "sub", "copy-of-a.pdf"), "invoice a")
	writeFile(t, filepath.Join(root, "notes.docx"), "ignored")
	writeFile(t, filepath.Join(root, ".hidden", "d.pdf"), "hidden")

	s := NewScanner(nil)
	results, stats, err := s.IngestDirectory(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, results, 4)
	assert.Equal(t, "a.pdf", results[0].Document.Name)
	assert.Equal(t, "b.pdf", results[1].Document.Name)
	assert.Equal(t, "c.txt", results[2].Document.Name)
	assert.Equal(t, "copy-of-a.pdf", results[3].Document.Name)

	assert.True(t, results[3].Duplicate)
	assert.Equal(t, results[0].Document.Path, results[3].DuplicateOf)
	assert.Equal(t, results[0].Document.ContentHash, results[3].Document.ContentHash)
	assert.Len(t, results[0].Document.ContentHash, 64)
	assert.Equal(t, int64(len("invoice a")), results[0].Document.Size)

	assert.Equal(t, uint32(4), stats.Matched)
	assert.Equal(t, uint32(4), stats.Succeeded)
	assert.Equal(t, uint32(1), stats.Deduplicated)
	assert.Equal(t, uint32(0), stats.Failed)
}

func TestIngestDirectory_WithExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.pdf"), "a")
	writeFile(t, filepath.Join(root, "b.txt"), "b")

	results, _, err := NewScanner(nil, WithExtensions(".TXT")).IngestDirectory(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b.txt", results[0].Document.Name)
}

func TestIngestDirectory_EmptyRoot(t *testing.T) {
	_, _, err := NewScanner(nil).IngestDirectory(context.Background(), " ")
	assert.Error(t, err)
}

func TestCollect(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "in")
	writeFile(t, filepath.Join(dir, "a.pdf"), "a")
	writeFile(t, filepath.Join(dir, "b.pdf"), "b")
	single := filepath.Join(root, "single.txt")
	writeFile(t, single, "single")
	dup := filepath.Join(root, "dup.pdf")
	writeFile(t, dup, "a")
	bad := filepath.Join(root, "photo.bmp")
	writeFile(t, bad, "x")

	docs, stats, err := NewScanner(nil).Collect(context.Background(),
		[]string{dir, bad, single, dup, filepath.Join(root, "missing.pdf")})
	require.NoError(t, err)

	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"a.pdf", "b.pdf", "photo.bmp", "single.txt", "missing.pdf"}, names)

	assert.Empty(t, docs[0].IngestError)
	assert.Contains(t, docs[2].IngestError, "unsupported")
	assert.Empty(t, docs[3].IngestError)
	assert.NotEmpty(t, docs[4].IngestError)
	assert.Equal(t, uint32(1), stats.Deduplicated)
	assert.Equal(t, uint32(2), stats.Failed)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden("/x/.git"))
	assert.False(t, IsHidden("/x/a.pdf"))
	assert.False(t, IsHidden("."))
	assert.True(t, AllowedExt(".PDF"))
	assert.False(t, AllowedExt("docx"))
}

func TestWatch_InitialScanAndCreate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "existing.pdf"), "e")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := NewScanner(nil).Watch(ctx, WatchConfig{Roots: []string{root}, InitialScan: true})
	require.NoError(t, err)

	next := func() string {
		select {
		case p := <-events:
			return p
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for watch event")
			return ""
		}
	}
	assert.Equal(t, filepath.Join(root, "existing.pdf"), next())

	writeFile(t, filepath.Join(root, "notes.docx"), "ignored")
	writeFile(t, filepath.Join(root, "new.pdf"), "n")
	assert.Equal(t, filepath.Join(root, "new.pdf"), next())

	cancel()
	for range events {
	}
}

func TestWatch_NoRoots(t *testing.T) {
	_, _, err := NewScanner(nil).Watch(context.Background(), WatchConfig{})
	assert.Error(t, err)
}
