package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qjlxg/fe/internal/config"
)

func TestLocalFS_PutGetKeys(t *testing.T) {
	store, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, "snapshots/2024-06-05/README.md", []byte("board")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, "snapshots/2024-06-05/signal_history.csv", []byte("rows")); err != nil {
		t.Fatalf("put: %v", err)
	}

	data, err := store.Get(ctx, "snapshots/2024-06-05/README.md")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "board" {
		t.Errorf("get = %q, want %q", data, "board")
	}

	keys, err := store.Keys(ctx, "snapshots/2024-06-05")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("got %d keys, want 2: %v", len(keys), keys)
	}
	for _, k := range keys {
		if !strings.HasPrefix(k, "snapshots/2024-06-05/") {
			t.Errorf("key %q missing dated prefix", k)
		}
	}
}

func TestLocalFS_KeysMissingPrefix(t *testing.T) {
	store, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}
	keys, err := store.Keys(context.Background(), "snapshots/2099-01-01")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("got %d keys, want 0", len(keys))
	}
}

func TestSnapshotter_SkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "README.md")
	if err := os.WriteFile(src, []byte("board"), 0644); err != nil {
		t.Fatal(err)
	}

	store, err := NewLocalFS(filepath.Join(dir, "archive"))
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}

	snap := NewSnapshotter(store, nil)
	err = snap.Snapshot(context.Background(), "2024-06-05", []string{
		src,
		filepath.Join(dir, "missing.csv"),
	})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	keys, err := store.Keys(context.Background(), "snapshots")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "snapshots/2024-06-05/README.md" {
		t.Errorf("unexpected keys: %v", keys)
	}
}

func TestOpen(t *testing.T) {
	if _, err := Open(config.ArchiveConfig{Type: "localfs", Path: t.TempDir()}); err != nil {
		t.Errorf("localfs: %v", err)
	}
	if _, err := Open(config.ArchiveConfig{Type: "tape"}); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestS3Store_ImplementsStorage(t *testing.T) {
	var _ Storage = (*S3Store)(nil)
}

func TestS3Store_ObjectKey(t *testing.T) {
	tests := []struct {
		prefix string
		key    string
		want   string
	}{
		{"", "file.txt", "file.txt"},
		{"cold", "file.txt", "cold/file.txt"},
	}
	for _, tt := range tests {
		s := &S3Store{prefix: tt.prefix}
		if got := s.objectKey(tt.key); got != tt.want {
			t.Errorf("objectKey(%q) with prefix %q = %q, want %q", tt.key, tt.prefix, got, tt.want)
		}
	}
}
