package source

import (
	"strings"
)

const (
	// MaxTreeEntries caps the number of paths forwarded to the oracle.
	MaxTreeEntries = 300

	ConfigFileJSONC = "esa.jsonc"
	ConfigFileJSON  = "esa.json"
	PackageManifest = "package.json"
	YarnLockFile    = "yarn.lock"
	PnpmLockFile    = "pnpm-lock.yaml"
)

// Context is the transient, fetch-scoped view of a repository used for a
// single diagnosis run.
type Context struct {
	Ref           Reference
	DefaultBranch string
	// Files holds every blob path reported by the host, unfiltered.
	Files []string
	// FileTree is the filtered, capped, newline-joined path list.
	FileTree       string
	PackageJSON    string
	ConfigPath     string
	ExistingConfig string
	HasConfig      bool
	HasYarnLock    bool
	HasPnpmLock    bool
}

// LockFiles mirrors the lockfile flags in the shape the prompt embeds.
type LockFiles struct {
	HasYarnLock bool `json:"hasYarnLock"`
	HasPnpmLock bool `json:"hasPnpmLock"`
}

func (c *Context) LockFiles() LockFiles {
	if c == nil {
		return LockFiles{}
	}
	return LockFiles{HasYarnLock: c.HasYarnLock, HasPnpmLock: c.HasPnpmLock}
}

type scanResult struct {
	configPath  string
	packagePath string
	hasYarnLock bool
	hasPnpmLock bool
}

// scanFiles matches root-level file names case-insensitively.
func scanFiles(paths []string) scanResult {
	var res scanResult
	for _, p := range paths {
		switch strings.ToLower(p) {
		case ConfigFileJSONC, ConfigFileJSON:
			if res.configPath == "" {
				res.configPath = p
			}
		case PackageManifest:
			res.packagePath = p
		case YarnLockFile:
			res.hasYarnLock = true
		case PnpmLockFile:
			res.hasPnpmLock = true
		}
	}
	return res
}

// buildFileTree drops dependency caches and VCS internals, keeps the first
// MaxTreeEntries paths and joins them with newlines.
func buildFileTree(paths []string) string {
	kept := make([]string, 0, min(len(paths), MaxTreeEntries))
	for _, p := range paths {
		if strings.Contains(p, "node_modules") || strings.Contains(p, ".git/") {
			continue
		}
		kept = append(kept, p)
		if len(kept) == MaxTreeEntries {
			break
		}
	}
	return strings.Join(kept, "\n")
}
