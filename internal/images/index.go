package images

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JonMunkholm/leadsync/internal/core"
)

// File is one local image matched to a normalized key.
type File struct {
	Key    string // Normalized key
	Path   string // Local path
	Object string // Canonical object name: key + extension
}

// Index maps normalized keys to local image files.
type Index struct {
	dir   string
	ext   string
	files map[string]File
}

// Scan indexes every file in dir with extension ext (case-insensitive).
// File names are keys; hyphenated legacy names normalize to the same key as
// their underscore form, and the first in sorted order wins.
func Scan(dir, ext string) (*Index, error) {
	ext = strings.ToLower(ext)

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = fmt.Errorf("%s: not a directory", dir)
		}
		return nil, &core.ConfigError{
			Field:       "IMAGES_DIR",
			Problem:     "image directory not found: " + dir,
			Remediation: "set IMAGES_DIR or pass --images-dir",
			Err:         err,
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.ToLower(filepath.Ext(e.Name())) != ext {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	idx := &Index{dir: dir, ext: ext, files: make(map[string]File, len(names))}
	for _, name := range names {
		key := core.NormalizeKey(name[:len(name)-len(ext)])
		if key == "" {
			continue
		}
		if prev, dup := idx.files[key]; dup {
			slog.Debug("duplicate image for key", "key", key, "kept", prev.Path, "ignored", name)
			continue
		}
		idx.files[key] = File{
			Key:    key,
			Path:   filepath.Join(dir, name),
			Object: key + ext,
		}
	}

	return idx, nil
}

// Len returns the number of indexed keys.
func (i *Index) Len() int {
	return len(i.files)
}

// Lookup returns the image for a normalized key.
func (i *Index) Lookup(key string) (File, bool) {
	f, ok := i.files[key]
	return f, ok
}

// Keys returns the indexed keys, sorted.
func (i *Index) Keys() []string {
	keys := make([]string, 0, len(i.files))
	for k := range i.files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Read returns the bytes of f.
func (f File) Read() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("image disappeared: %s", f.Path)
	}
	return data, err
}

// AttachURLs returns an enrich hook that sets field to the public URL of the
// entry's image when one exists locally and the field is still empty.
func AttachURLs(idx *Index, store ObjectStore, field string) func(*core.Entry) {
	return func(e *core.Entry) {
		f, ok := idx.Lookup(e.Key)
		if !ok || !core.IsEmpty(e.Record[field]) {
			return
		}
		e.Record[field] = store.PublicURL(f.Object)
	}
}
