package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFile_CreatesParentsAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.png")

	if err := WriteFile(path, []byte("first")); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	if err := WriteFile(path, []byte("second")); err != nil {
		t.Fatalf("WriteFile() overwrite failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("expected %q, got %q", "second", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected no temp files left behind, found %d entries", len(entries))
	}
}
