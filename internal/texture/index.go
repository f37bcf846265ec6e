package texture

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// extRank orders formats when several files share a stem; lower wins.
var extRank = map[string]int{
	".png":  0,
	".tga":  1,
	".webp": 2,
	".jpg":  3,
	".jpeg": 3,
}

// Index maps lowercase texture stems to filesystem paths.
type Index struct {
	entries map[string]string
}

// BuildIndex scans dirs recursively for texture files.
func BuildIndex(dirs ...string) *Index {
	idx := &Index{entries: make(map[string]string)}

	for _, dir := range dirs {
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			rank, ok := extRank[ext]
			if !ok {
				return nil
			}
			stem := stemOf(path)
			existing, exists := idx.entries[stem]
			if !exists || rank < extRank[strings.ToLower(filepath.Ext(existing))] {
				idx.entries[stem] = path
			}
			return nil
		})
	}

	return idx
}

// ResolvePath returns the filesystem path for a texture reference, or ("", false).
// References may be resource-pack paths ("textures/entity/crate"), file names
// or geometry identifiers ("geometry.crate").
func (idx *Index) ResolvePath(ref string) (string, bool) {
	ref = strings.ReplaceAll(ref, "\\", "/")
	stem := stemOf(ref)
	if base := strings.ToLower(filepath.Base(ref)); strings.HasPrefix(base, "geometry.") {
		stem = strings.TrimPrefix(base, "geometry.")
	}
	path, ok := idx.entries[stem]
	return path, ok
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}
