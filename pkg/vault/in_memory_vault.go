package vault

import (
	"context"
	"fmt"
	"sync"
)

// InMemorySourceConfig is a SourceConfig for tests.
type InMemorySourceConfig struct {
	mu   sync.Mutex
	data map[string]map[string]any
}

func NewInMemorySourceConfig() *InMemorySourceConfig {
	return &InMemorySourceConfig{
		data: make(map[string]map[string]any),
	}
}

func (v *InMemorySourceConfig) Write(_ context.Context, pathRef string, config map[string]any) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.data[pathRef] = config
	return nil
}

func (v *InMemorySourceConfig) Read(_ context.Context, pathRef string) (map[string]any, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	config, ok := v.data[pathRef]
	if !ok {
		return nil, fmt.Errorf("invalid pathRef: %s", pathRef)
	}
	return config, nil
}

func (v *InMemorySourceConfig) Delete(_ context.Context, pathRef string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	delete(v.data, pathRef)
	return nil
}

func (v *InMemorySourceConfig) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return len(v.data)
}
