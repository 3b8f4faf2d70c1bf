package storage

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestDiskStorePutGet(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}

	ctx := context.Background()
	key, err := store.Put(ctx, strings.NewReader("plan revision B"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if key == "" {
		t.Fatal("expected non-empty key")
	}

	rc, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "plan revision B" {
		t.Errorf("expected 'plan revision B', got %q", string(data))
	}
}

func TestDiskStoreDistinctKeys(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}

	ctx := context.Background()
	k1, _ := store.Put(ctx, strings.NewReader("a"))
	k2, _ := store.Put(ctx, strings.NewReader("a"))
	if k1 == k2 {
		t.Errorf("expected distinct keys for separate uploads, got %q twice", k1)
	}
}

func TestDiskStoreGetMissing(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}

	if _, err := store.Get(context.Background(), "no-such-key"); err != ErrBlobNotFound {
		t.Errorf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestDiskStoreRejectsTraversal(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}

	for _, key := range []string{"", "../etc/passwd", "a/b", `a\b`} {
		if _, err := store.Get(context.Background(), key); err != ErrBlobNotFound {
			t.Errorf("key %q: expected ErrBlobNotFound, got %v", key, err)
		}
	}
}

func TestDiskStoreDelete(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}

	ctx := context.Background()
	key, _ := store.Put(ctx, strings.NewReader("x"))
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, key); err != ErrBlobNotFound {
		t.Errorf("expected ErrBlobNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, key); err != ErrBlobNotFound {
		t.Errorf("expected ErrBlobNotFound on double delete, got %v", err)
	}
}
