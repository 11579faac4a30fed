package safeio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileCreatesParents(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewSafeFS(filepath.Join(dir, "checkout"))
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	if err := fs.WriteFile("/edge-functions/api-proxy.js", []byte("export default {}"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := fs.ReadFile("edge-functions/api-proxy.js")
	if err != nil || string(got) != "export default {}" {
		t.Fatalf("ReadFile = %q, %v", got, err)
	}
	ok, err := fs.Exists("/edge-functions/api-proxy.js")
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
	ok, err = fs.Exists("esa.jsonc")
	if err != nil || ok {
		t.Fatalf("Exists(missing) = %v, %v", ok, err)
	}
}

func TestRejectsTraversal(t *testing.T) {
	fs, err := NewSafeFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	for _, p := range []string{"../x", "a/../../x", "", "/"} {
		if err := fs.WriteFile(p, nil, 0o644); err == nil {
			t.Fatalf("WriteFile(%q) succeeded", p)
		}
	}
	if err := fs.WriteFile("../x", nil, 0o644); !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("err = %v, want ErrOutsideRoot", err)
	}
}

func TestRejectsSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	fs, err := NewSafeFS(root)
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	if err := fs.WriteFile("link/esa.jsonc", []byte("{}"), 0o644); !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("err = %v, want ErrOutsideRoot", err)
	}
	if _, err := os.Stat(filepath.Join(outside, "esa.jsonc")); err == nil {
		t.Fatalf("file written outside root")
	}
}
