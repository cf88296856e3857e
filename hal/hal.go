// Package hal is the consumed contract for the hardware abstraction layer:
// a registry of named I/O channels. Concrete channel
// backends (CAN bus nodes, GPIO, simulated peripherals) are external
// collaborators -- out of scope for this module, per spec.md §1.
package hal

import (
	"sync"

	"github.com/ferrodyne/rtcore/control"
	"github.com/ferrodyne/rtcore/core"
)

// Channel is a named device I/O channel: Get/Set a typed Signal plus a
// timestamp, and an optional device-specific configuration call (e.g. a
// PWM frequency).
type Channel interface {
	Get() control.Signal
	Set(control.Signal)
	CallOutputFeature(name string, args ...any) error
}

// Registry is the HAL channel table consumed by block and safety
// constructors: they obtain channels by string key, and an unknown key
// fails construction with HalBindingMissing. The package keeps no
// process-wide instance; each NewRegistry call creates an independent
// table, which the application passes to whatever needs it.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]Channel
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]Channel)}
}

// Register binds a channel under key, overwriting any previous binding.
func (r *Registry) Register(key string, ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[key] = ch
}

// Get resolves a channel by key, failing with HalBindingMissing if the key
// was never registered.
func (r *Registry) Get(key string) (Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[key]
	if !ok {
		return nil, core.New(core.KindHalBindingMissing, "unknown HAL channel key '"+key+"'")
	}
	return ch, nil
}

// Keys returns every currently registered channel key, for diagnostics.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.channels))
	for k := range r.channels {
		keys = append(keys, k)
	}
	return keys
}
