package examples

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Cache remembers the checksum of every rendered example so unchanged
// scripts are skipped on rebuild. It persists as a single JSON file
// under the site's cache folder.
type Cache struct {
	path string
	sums map[string]string
}

// LoadCache reads the cache file, returning an empty cache when it does
// not exist yet.
func LoadCache(dir string) (*Cache, error) {
	c := &Cache{
		path: filepath.Join(dir, "examples.json"),
		sums: map[string]string{},
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("examples: read cache: %w", err)
	}
	if err := json.Unmarshal(data, &c.sums); err != nil {
		// A corrupt cache only costs a full rebuild.
		c.sums = map[string]string{}
	}
	return c, nil
}

// UpToDate reports whether key was last rendered from content with the
// given checksum.
func (c *Cache) UpToDate(key, sum string) bool {
	return c.sums[key] == sum
}

// Record notes that key was rendered from content with the given checksum.
func (c *Cache) Record(key, sum string) {
	c.sums[key] = sum
}

// Save writes the cache back to disk. encoding/json sorts map keys, so
// the file is stable across runs.
func (c *Cache) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("examples: ensure cache dir: %w", err)
	}
	data, err := json.MarshalIndent(c.sums, "", "  ")
	if err != nil {
		return fmt.Errorf("examples: encode cache: %w", err)
	}
	return os.WriteFile(c.path, data, 0o644)
}
