package runtime

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDenyAccessorRejectsBoth(t *testing.T) {
	var a DenyAccessor
	if _, err := a.OpenRead("x"); err == nil {
		t.Fatal("expected OpenRead to fail")
	}
	if _, err := a.OpenWrite("x"); err == nil {
		t.Fatal("expected OpenWrite to fail")
	}
}

func TestReadOnlyAccessor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.ss")
	if err := os.WriteFile(path, []byte("(+ 1 2)"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	var a ReadOnlyAccessor
	rc, err := a.OpenRead(path)
	if err != nil {
		t.Fatalf("OpenRead: %v", err)
	}
	rc.Close()

	if _, err := a.OpenWrite(path); err == nil {
		t.Fatal("expected OpenWrite to fail")
	}
}
