// Package resolver locates template and asset files referenced by
// tasks. Lookups walk an ordered list of search roots derived from the
// playbook's base directory, with an environment override for vendored
// or out-of-tree file layouts.
package resolver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/up-stack/up/internal/errors"
)

// EnvFilesPath overrides the search roots when set:
//
//	"..."          search the base directory only
//	".../<suffix>" search <basedir>/<suffix> only
//	anything else  search that path verbatim, ignoring the base directory
//
// Without the override, lookups try the base directory first and then
// its files/ subdirectory. An override is exclusive: the default roots
// are never consulted as a fallback.
const EnvFilesPath = "UP_FILES_PATH"

// Sentinel is the override token standing for the base directory.
const Sentinel = "..."

// FilesSubdir is the conventional asset subdirectory tried after the
// base directory when no override is set.
const FilesSubdir = "files"

// Resolver finds files under a fixed base directory.
type Resolver struct {
	// BaseDir is the directory holding the playbook.
	BaseDir string
}

// New creates a resolver rooted at baseDir.
func New(baseDir string) *Resolver {
	return &Resolver{BaseDir: baseDir}
}

// SearchRoots computes the ordered candidate directories for a lookup.
// The override variable is re-read on every call so external mutation
// of the environment mid-run is observed.
func (r *Resolver) SearchRoots() []string {
	override, ok := os.LookupEnv(EnvFilesPath)
	if !ok {
		return []string{r.BaseDir, filepath.Join(r.BaseDir, FilesSubdir)}
	}

	if override == Sentinel {
		return []string{r.BaseDir}
	}
	if suffix, found := strings.CutPrefix(override, Sentinel+"/"); found {
		return []string{filepath.Join(r.BaseDir, suffix)}
	}
	return []string{override}
}

// FindFile returns the first root/name that exists on the filesystem,
// trying the roots strictly in order. The lookup is read-only.
func (r *Resolver) FindFile(name string) (string, error) {
	roots := r.SearchRoots()
	for _, root := range roots {
		candidate := filepath.Join(root, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", errors.FileNotFound(name, roots)
}
