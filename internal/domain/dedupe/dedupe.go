// Package dedupe tracks keys that were already claimed during a build, such
// as member ids and article output paths.
package dedupe

import (
	"strings"
	"sync"
)

// Deduper records claimed keys.
type Deduper interface {
	// SeenAndRecord checks whether key was claimed and claims it if not.
	// Returns true if key was already claimed, along with the owner that
	// claimed it first.
	SeenAndRecord(key, owner string) (bool, string)

	// Size returns the number of claimed keys.
	Size() int
}

// inMemoryDeduper implements Deduper with a map from normalized key to owner.
type inMemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]string
	fold bool
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]string)
	return d
}

func (d *inMemoryDeduper) normalize(key string) string {
	key = strings.TrimSpace(key)
	if d.fold {
		return strings.ToLower(key)
	}
	return key
}

// SeenAndRecord claims key for owner unless it is already claimed.
func (d *inMemoryDeduper) SeenAndRecord(key, owner string) (bool, string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	k := d.normalize(key)
	if prev, exists := d.seen[k]; exists {
		return true, prev
	}
	d.seen[k] = owner
	return false, ""
}

// Size returns the number of claimed keys.
func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
