package naming

import (
	"fmt"
	"os"
	"strings"
)

// Resolve picks a final filename for base+ext that does not collide with
// any of entries:
//  1. base+ext is returned when it is free.
//  2. When it is taken and base contains the full separator token (padding
//     included), the existing file is assumed to be an earlier result of this
//     tool for the same source and base+ext is returned unchanged. A bare
//     "|" or "｜" in a user's own file name does not qualify.
//  3. Otherwise "_1", "_2", ... is appended to base until a free name is found.
func Resolve(base, ext string, sep Separator, entries []string) string {
	taken := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		taken[e] = struct{}{}
	}

	candidate := base + ext
	if _, ok := taken[candidate]; !ok {
		return candidate
	}
	if sep != "" && strings.Contains(base, string(sep)) {
		return candidate
	}

	for n := 1; ; n++ {
		candidate = fmt.Sprintf("%s_%d%s", base, n, ext)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

// Resolver resolves names against a live directory. The listing is read on
// every call, never cached, because earlier renames in the same batch change
// it.
type Resolver struct {
	Separator Separator

	// ListDir returns the entry names of a directory. Defaults to os.ReadDir.
	ListDir func(dir string) ([]string, error)
}

// NewResolver returns a Resolver reading directories from disk.
func NewResolver(sep Separator) *Resolver {
	return &Resolver{Separator: sep, ListDir: ReadDirNames}
}

// Resolve lists dir and applies the package-level Resolve policy. claimed
// names count as taken even though they are not on disk.
func (r *Resolver) Resolve(dir, base, ext string, claimed ...string) (string, error) {
	list := r.ListDir
	if list == nil {
		list = ReadDirNames
	}
	entries, err := list(dir)
	if err != nil {
		return "", fmt.Errorf("failed to list %s: %w", dir, err)
	}
	return Resolve(base, ext, r.Separator, append(entries, claimed...)), nil
}

// ReadDirNames returns the names of all entries in dir.
func ReadDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}
