// Package assets resolves logical sprite keys to asset paths for the
// rendering service. The simulation only ever sees the resolved strings.
package assets

import (
	"path"
	"sort"
)

// Catalog maps sprite keys to asset paths.
type Catalog struct {
	refs map[string]string
}

// NewCatalog registers every key under root as "<root>/<key>.png", then
// applies overrides. An override with an empty path removes the key.
func NewCatalog(root string, keys []string, overrides map[string]string) *Catalog {
	c := &Catalog{refs: make(map[string]string, len(keys)+len(overrides))}
	for _, k := range keys {
		c.refs[k] = path.Join(root, k+".png")
	}
	for k, v := range overrides {
		if v == "" {
			delete(c.refs, k)
			continue
		}
		c.refs[k] = v
	}
	return c
}

// Lookup returns the asset path registered for key.
func (c *Catalog) Lookup(key string) (string, bool) {
	ref, ok := c.refs[key]
	return ref, ok
}

// Keys returns the registered keys in sorted order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.refs))
	for k := range c.refs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
