package server

import (
	"sync"
	"time"

	"elite-rental-funnel/internal/config"
)

// staleAfter is how long a warm container may sit idle before it reports unhealthy
const staleAfter = 5 * time.Minute

// WarmContainer keeps one Container alive across invocations of a warm
// function instance
type WarmContainer struct {
	mu        sync.RWMutex
	container *Container
	lastUsed  time.Time
	load      func() (*config.Config, error)
}

var (
	globalWarm     *WarmContainer
	globalWarmOnce sync.Once
)

// GetWarmContainer returns the process-wide warm container
func GetWarmContainer() *WarmContainer {
	globalWarmOnce.Do(func() {
		globalWarm = NewWarmContainer(config.GetOptimizedConfig)
	})
	return globalWarm
}

// NewWarmContainer creates a warm container that loads configuration with load
func NewWarmContainer(load func() (*config.Config, error)) *WarmContainer {
	return &WarmContainer{load: load}
}

// Get returns the container, building it on first use.
// A failed build is retried on the next call.
func (w *WarmContainer) Get() (*Container, error) {
	w.mu.RLock()
	if w.container != nil {
		container := w.container
		w.mu.RUnlock()
		w.touch()
		return container, nil
	}
	w.mu.RUnlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.container == nil {
		cfg, err := w.load()
		if err != nil {
			return nil, err
		}
		container, err := NewContainer(cfg)
		if err != nil {
			return nil, err
		}
		w.container = container
	}

	w.lastUsed = time.Now()
	return w.container, nil
}

// IsHealthy reports whether a container is built and was used recently
func (w *WarmContainer) IsHealthy() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.container == nil {
		return false
	}
	return time.Since(w.lastUsed) < staleAfter
}

// Cleanup closes the container; the next Get builds a fresh one
func (w *WarmContainer) Cleanup() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.container == nil {
		return nil
	}
	err := w.container.Close()
	w.container = nil
	return err
}

func (w *WarmContainer) touch() {
	w.mu.Lock()
	w.lastUsed = time.Now()
	w.mu.Unlock()
}
