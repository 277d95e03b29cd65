package contour

import (
	"fmt"
	"image"
	"sort"
	"sync"
)

// Finder extracts contours from a binary mask.
type Finder func(mask *image.Gray, mode Mode) []Contour

// DefaultBackend is the backend used when none is configured.
const DefaultBackend = "native"

var (
	backendsMu sync.RWMutex
	backends   = map[string]Finder{
		DefaultBackend: Find,
	}
)

// Register makes a Finder available under name, replacing any previous one.
func Register(name string, f Finder) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[name] = f
}

// Lookup returns the Finder registered under name. An empty name selects the
// default backend.
func Lookup(name string) (Finder, error) {
	if name == "" {
		name = DefaultBackend
	}

	backendsMu.RLock()
	defer backendsMu.RUnlock()
	f, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown contour backend %q (available: %v)", name, backendNames())
	}
	return f, nil
}

// Backends returns the registered backend names in sorted order.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	return backendNames()
}

func backendNames() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
