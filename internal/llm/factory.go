package llm

import (
	"fmt"
	"sync"

	"github.com/nulzo/butler/internal/config"
)

// Factory builds an adapter from its provider configuration.
type Factory func(cfg config.ProviderConfig) (Provider, error)

var (
	mu        sync.RWMutex
	factories = make(map[ProviderName]Factory)
)

// Register is called from adapter package init functions.
func Register(name ProviderName, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("provider factory %s already registered", name))
	}
	factories[name] = f
}

func Get(name ProviderName) (Factory, error) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("provider factory not found for type: %s", name)
	}
	return f, nil
}
