package file

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
)

func TestReadMissingSnapshotReturnsNil(t *testing.T) {
	store := NewSnapshotStore(filepath.Join(t.TempDir(), "missing.snapshot"))

	data, err := store.Read(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if data != nil {
		t.Errorf("expected nil for missing snapshot, got %d bytes", len(data))
	}
}

func TestWriteThenRead(t *testing.T) {
	store := NewSnapshotStore(filepath.Join(t.TempDir(), "nested", "dir", "ledger.snapshot"))
	ctx := context.Background()

	blob := []byte("opaque aggregate bytes")
	if err := store.Write(ctx, blob); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, blob) {
		t.Errorf("read back %q, want %q", got, blob)
	}
}

func TestWriteReplacesPreviousSnapshot(t *testing.T) {
	store := NewSnapshotStore(filepath.Join(t.TempDir(), "ledger.snapshot"))
	ctx := context.Background()

	if err := store.Write(ctx, []byte("old")); err != nil {
		t.Fatal(err)
	}
	if err := store.Write(ctx, []byte("new")); err != nil {
		t.Fatal(err)
	}

	got, err := store.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Errorf("read back %q, want %q", got, "new")
	}
}
