package instance

import (
	"fmt"
	"sync"

	"github.com/streamspace/automationd/internal/logger"
)

// factories maps a Kind ID ("namespace/plugin_type") to the Factory that
// builds its Handler. Plugin packages register their Kind from init(); their
// factories are registered here by main (they close over a live Dispatcher),
// the same two-registry split the teacher's global plugin registry and
// built-in plugin map keep separate.
var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory associates a Factory with a Kind ID. Re-registering the
// same ID overwrites the previous factory and logs a warning.
func RegisterFactory(kindID string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	if _, exists := factories[kindID]; exists {
		logger.Component("instance").Warn().Str("kind", kindID).Msg("factory already registered, overwriting")
	}
	factories[kindID] = f
}

func lookupFactory(kindID string) (Factory, error) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	f, ok := factories[kindID]
	if !ok {
		return nil, fmt.Errorf("instance: no factory registered for kind %q", kindID)
	}
	return f, nil
}
