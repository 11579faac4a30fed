package safeio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrOutsideRoot is returned for paths that escape the root.
var ErrOutsideRoot = errors.New("safeio: path outside root")

// SafeFS reads and writes files under a fixed root directory. Paths are
// repository-style ("/esa.jsonc" and "esa.jsonc" name the same file).
type SafeFS struct {
	absRoot string // absolute root with symlinks resolved
}

// NewSafeFS binds a SafeFS to root, creating the directory if needed.
func NewSafeFS(root string) (*SafeFS, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("safeio: empty root")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("safeio: root is not a directory")
	}
	return &SafeFS{absRoot: abs}, nil
}

func (s *SafeFS) Root() string {
	if s == nil {
		return ""
	}
	return s.absRoot
}

// Exists reports whether userPath names an existing file under the root.
func (s *SafeFS) Exists(userPath string) (bool, error) {
	p, err := s.resolve(userPath)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

// ReadFile reads a file relative to the root.
func (s *SafeFS) ReadFile(userPath string) ([]byte, error) {
	p, err := s.resolve(userPath)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// WriteFile writes data to userPath, creating parent directories.
func (s *SafeFS) WriteFile(userPath string, data []byte, perm fs.FileMode) error {
	p, err := s.resolve(userPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	// MkdirAll may have walked through a symlink created after resolve.
	if err := s.checkExisting(filepath.Dir(p)); err != nil {
		return err
	}
	return os.WriteFile(p, data, perm)
}

// resolve maps userPath into the root. Missing path components are
// allowed; the deepest existing ancestor must resolve inside the root.
func (s *SafeFS) resolve(userPath string) (string, error) {
	if s == nil {
		return "", errors.New("safeio: filesystem not configured")
	}
	rel := strings.TrimLeft(filepath.ToSlash(strings.TrimSpace(userPath)), "/")
	if rel == "" {
		return "", errors.New("safeio: empty path")
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, userPath)
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, userPath)
	}
	joined := filepath.Join(s.absRoot, clean)

	existing := joined
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		existing = parent
	}
	if err := s.checkExisting(existing); err != nil {
		return "", err
	}
	return joined, nil
}

func (s *SafeFS) checkExisting(p string) error {
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		return err
	}
	if !hasPathPrefix(resolved, s.absRoot) {
		return fmt.Errorf("%w: root=%s path=%s", ErrOutsideRoot, s.absRoot, resolved)
	}
	return nil
}

func hasPathPrefix(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if runtime.GOOS == "windows" {
		path = strings.ToLower(path)
		root = strings.ToLower(root)
	}
	if len(root) == 0 || path == root {
		return true
	}
	sep := string(os.PathSeparator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	if !strings.HasSuffix(path, sep) {
		path += sep
	}
	return strings.HasPrefix(path, root)
}
