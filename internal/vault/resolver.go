// ABOUTME: FileResolver locates files by name anywhere under a vault root
// ABOUTME: Breadth-first search with deterministic tie-breaks and a listing cache
package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ErrNotFound indicates no file with the requested name exists under the root
var ErrNotFound = errors.New("file not found")

// Resolver locates files by bare name inside a directory tree. Matching is
// exact and case-sensitive. Directory listings are cached per root until
// Invalidate is called.
type Resolver struct {
	mu    sync.Mutex
	cache map[string][]string // root -> relative paths in BFS order
}

// NewResolver creates a resolver with an empty cache
func NewResolver() *Resolver {
	return &Resolver{cache: make(map[string][]string)}
}

// Locate returns the vault-relative path of the first file named name under
// root. The shallowest match wins; matches at equal depth are ordered
// lexicographically by full relative path. Returns ErrNotFound after a full
// traversal with no match.
func (r *Resolver) Locate(root, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty file name under %s", ErrNotFound, root)
	}

	listing, err := r.listing(root)
	if err != nil {
		return "", err
	}

	base := filepath.ToSlash(name)
	for _, rel := range listing {
		if filepath.Base(rel) == base {
			return rel, nil
		}
	}
	return "", fmt.Errorf("%w: %q under %s", ErrNotFound, name, root)
}

// Invalidate drops the cached listing for root. Callers signal this after
// the corpus changed on disk.
func (r *Resolver) Invalidate(root string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, root)
}

// listing returns the cached BFS file listing for root, building it on miss
func (r *Resolver) listing(root string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if files, ok := r.cache[root]; ok {
		return files, nil
	}

	files, err := walkBreadthFirst(root)
	if err != nil {
		return nil, err
	}
	r.cache[root] = files
	return files, nil
}

// walkBreadthFirst lists every file under root, shallowest directories
// first, entries sorted by name within each directory. Symlinked directories
// are resolved and visited at most once so link cycles terminate.
func walkBreadthFirst(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("vault root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault root %s is not a directory", root)
	}

	visited := make(map[string]bool)
	if real, err := filepath.EvalSymlinks(root); err == nil {
		visited[real] = true
	}

	var files []string
	queue := []string{""}

	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(filepath.Join(root, dir))
		if err != nil {
			// Unreadable subdirectory: skip rather than fail the traversal
			continue
		}

		var subdirs []string
		for _, entry := range entries {
			rel := entry.Name()
			if dir != "" {
				rel = dir + "/" + entry.Name()
			}

			isDir := entry.IsDir()
			if entry.Type()&os.ModeSymlink != 0 {
				target, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
				if err != nil {
					continue // dangling link
				}
				isDir = target.IsDir()
			}

			if isDir {
				real, err := filepath.EvalSymlinks(filepath.Join(root, filepath.FromSlash(rel)))
				if err != nil || visited[real] {
					continue
				}
				visited[real] = true
				subdirs = append(subdirs, rel)
				continue
			}
			files = append(files, rel)
		}

		sort.Strings(subdirs)
		queue = append(queue, subdirs...)
	}

	return files, nil
}

// ReadFile reads a file given either a vault-relative path or a bare file
// name. Bare names (no separator) are resolved recursively first.
func (r *Resolver) ReadFile(root, path string) (string, error) {
	rel := filepath.ToSlash(path)
	if filepath.Dir(rel) == "." {
		found, err := r.Locate(root, rel)
		if err != nil {
			return "", err
		}
		rel = found
	}

	full := filepath.Join(root, filepath.FromSlash(rel))
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q under %s", ErrNotFound, rel, root)
		}
		return "", fmt.Errorf("reading %s: %w", full, err)
	}
	return string(data), nil
}
