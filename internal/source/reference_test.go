package source

import (
	"errors"
	"strings"
	"testing"
)

func TestParseReference(t *testing.T) {
	cases := []struct {
		in    string
		owner string
		repo  string
	}{
		{"https://github.com/acme/web", "acme", "web"},
		{"https://github.com/acme/web/", "acme", "web"},
		{"https://github.com/acme/web.git", "acme", "web"},
		{"https://github.com/acme/web/tree/main/src", "acme", "web"},
		{"  http://github.example.com//acme//web  ", "acme", "web"},
	}
	for _, tc := range cases {
		got, err := ParseReference(tc.in)
		if err != nil {
			t.Fatalf("ParseReference(%q) error = %v", tc.in, err)
		}
		if got.Owner != tc.owner || got.Repo != tc.repo {
			t.Fatalf("ParseReference(%q) = %+v, want %s/%s", tc.in, got, tc.owner, tc.repo)
		}
	}
}

func TestParseReferenceRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"   ",
		"acme/web",
		"github.com/acme/web",
		"https://github.com",
		"https://github.com/acme",
		"https://github.com/acme/.git",
		"http://[::1",
		"not a url at all",
	}
	for _, in := range bad {
		_, err := ParseReference(in)
		if !errors.Is(err, ErrInvalidReference) {
			t.Fatalf("ParseReference(%q) error = %v, want ErrInvalidReference", in, err)
		}
	}
}

func TestBuildFileTreeFiltersAndCaps(t *testing.T) {
	paths := []string{"node_modules/a.js", "web/.git/HEAD", ".github/workflows/ci.yml"}
	for i := 0; i < MaxTreeEntries+20; i++ {
		paths = append(paths, "src/f.ts")
	}
	tree := buildFileTree(paths)
	lines := strings.Split(tree, "\n")
	if len(lines) != MaxTreeEntries {
		t.Fatalf("lines = %d, want %d", len(lines), MaxTreeEntries)
	}
	if lines[0] != ".github/workflows/ci.yml" {
		t.Fatalf("first line = %q", lines[0])
	}
	if strings.Contains(tree, "node_modules") || strings.Contains(tree, ".git/") {
		t.Fatalf("tree contains excluded paths")
	}
}

func TestScanFilesRootOnly(t *testing.T) {
	res := scanFiles([]string{"docs/esa.jsonc", "apps/yarn.lock", "Esa.Json", "PNPM-LOCK.yaml"})
	if res.configPath != "Esa.Json" {
		t.Fatalf("configPath = %q", res.configPath)
	}
	if res.hasYarnLock {
		t.Fatalf("nested yarn.lock must not count")
	}
	if !res.hasPnpmLock {
		t.Fatalf("pnpm lock not detected case-insensitively")
	}
}
