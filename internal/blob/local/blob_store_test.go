package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPutObjectWritesFile(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	s, err := New(Config{BaseDir: base})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	uri, err := s.PutObject(context.Background(), "payloads/a.html", "text/html", strings.NewReader("<html></html>"))
	if err != nil {
		t.Fatalf("PutObject: %v", err)
	}
	if !strings.HasPrefix(uri, "file://") {
		t.Fatalf("uri = %q", uri)
	}

	written, err := os.ReadFile(filepath.Join(base, "payloads", "a.html"))
	if err != nil {
		t.Fatalf("read written file: %v", err)
	}
	if string(written) != "<html></html>" {
		t.Fatalf("content = %q", written)
	}
}

func TestPutObjectRejectsTraversal(t *testing.T) {
	t.Parallel()

	s, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := s.PutObject(context.Background(), "../escape", "", strings.NewReader("x")); err == nil {
		t.Fatalf("expected traversal rejection")
	}
}

func TestPutObjectRequiresPath(t *testing.T) {
	t.Parallel()

	s, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := s.PutObject(context.Background(), "  ", "", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for blank path")
	}
}

func TestNewCreatesMissingBaseDir(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "nested", "blobs")
	if _, err := New(Config{BaseDir: base}); err != nil {
		t.Fatalf("New: %v", err)
	}
	info, err := os.Stat(base)
	if err != nil || !info.IsDir() {
		t.Fatalf("base dir not created: %v", err)
	}
}

func TestNewRejectsBlankBaseDir(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for blank base dir")
	}
}
