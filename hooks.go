package placemap

import (
	"sync"

	"github.com/agentstation/placemap/pkg/finalize"
	"github.com/agentstation/placemap/pkg/place"
	"github.com/agentstation/placemap/pkg/store"
)

// Hook function types for entity events
type (
	// EntityCreatedHook is called when a resolve run persists a new entity
	EntityCreatedHook func(entity *place.CanonicalEntity)

	// EntityUpdatedHook is called when a resolve run changes a stored entity
	EntityUpdatedHook func(entity *place.CanonicalEntity)
)

// Hooks provides access to event callback registration.
type Hooks interface {
	// OnEntityCreated registers a callback for newly persisted entities
	OnEntityCreated(EntityCreatedHook)

	// OnEntityUpdated registers a callback for changed entities
	OnEntityUpdated(EntityUpdatedHook)
}

// hooks manages event callbacks for persisted entity changes
type hooks struct {
	mu              sync.RWMutex
	onEntityCreated []EntityCreatedHook
	onEntityUpdated []EntityUpdatedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnEntityCreated registers a callback for newly persisted entities.
func (c *client) OnEntityCreated(fn EntityCreatedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onEntityCreated = append(c.hooks.onEntityCreated, fn)
}

// OnEntityUpdated registers a callback for changed entities.
func (c *client) OnEntityUpdated(fn EntityUpdatedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onEntityUpdated = append(c.hooks.onEntityUpdated, fn)
}

// trigger dispatches callbacks for every persisted change in the
// report. Unchanged and failed groups fire nothing; dry runs never
// reach here.
func (h *hooks) trigger(report *finalize.Report) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, result := range report.Results {
		if result.Err != nil || result.Entity == nil {
			continue
		}
		switch result.Outcome {
		case store.OutcomeCreated:
			for _, hook := range h.onEntityCreated {
				hook(result.Entity)
			}
		case store.OutcomeUpdated:
			for _, hook := range h.onEntityUpdated {
				hook(result.Entity)
			}
		}
	}
}
