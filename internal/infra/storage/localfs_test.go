package storage

import (
	"bytes"
	"context"
	"io"
	"testing"
)

func TestLocalFSRoundtrip(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS failed: %v", err)
	}
	ctx := context.Background()

	payload := []byte("helmet bytes")
	etag, size, err := fs.Put(ctx, "media/rider-a/helmet.jpg", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if size != int64(len(payload)) || etag == "" {
		t.Fatalf("unexpected put result: size=%d etag=%q", size, etag)
	}

	rc, size, err := fs.Get(ctx, "media/rider-a/helmet.jpg")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.Equal(got, payload) || size != int64(len(payload)) {
		t.Fatalf("stored bytes differ")
	}

	if err := fs.Delete(ctx, "media/rider-a/helmet.jpg"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, _, err := fs.Get(ctx, "media/rider-a/helmet.jpg"); err == nil {
		t.Fatalf("expected get after delete to fail")
	}
}

func TestLocalFSOverwrite(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS failed: %v", err)
	}
	ctx := context.Background()

	first, _, err := fs.Put(ctx, "media/rider-a/x", bytes.NewReader([]byte("one")))
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	second, _, err := fs.Put(ctx, "media/rider-a/x", bytes.NewReader([]byte("two")))
	if err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	if first == second {
		t.Fatalf("expected etag to change on overwrite")
	}
}

func TestLocalFSRejectsEscape(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS failed: %v", err)
	}
	ctx := context.Background()

	// cleaned paths stay inside the base; an empty key is refused outright
	if _, _, err := fs.Put(ctx, "", bytes.NewReader(nil)); err == nil {
		t.Fatalf("expected empty key to be rejected")
	}
	if _, _, err := fs.Get(ctx, "../../etc/passwd"); err == nil {
		t.Fatalf("expected escaped key to miss")
	}
}
