// Package placemap resolves venue observations collected by independent
// data connectors into canonical place entities. It wraps the full
// pipeline behind a single client: identity matching across connectors
// (shared external ids, coordinate proximity, fuzzy names, class
// fingerprints), deterministic metadata-driven merge ranked by a
// connector trust table, and idempotent persistence keyed by stable
// slugs. Resolving the same batch twice leaves the store byte-identical.
//
// Example usage:
//
//	// Create a client with the embedded trust table and an in-memory store
//	pm, err := placemap.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pm.Close()
//
//	// Register event hooks
//	pm.OnEntityCreated(func(entity *place.CanonicalEntity) {
//	    log.Printf("New entity: %s", entity.Slug)
//	})
//
//	// Resolve a batch of connector observations
//	result, err := pm.Resolve(ctx, observations)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Summary())
//
//	// Configure with custom options
//	pm, err = placemap.New(
//	    placemap.WithTrustFile("trust.yaml"),
//	    placemap.WithStore(st),
//	    placemap.WithMatchThreshold(90),
//	)
package placemap

import (
	"github.com/agentstation/placemap/pkg/constants"
	"github.com/agentstation/placemap/pkg/finalize"
	"github.com/agentstation/placemap/pkg/match"
	"github.com/agentstation/placemap/pkg/store"
	"github.com/agentstation/placemap/pkg/store/memory"
	"github.com/agentstation/placemap/pkg/trust"
)

// Compile-time interface check to ensure proper implementation.
var _ Placemap = (*client)(nil)

// Placemap is the resolution client.
type Placemap interface {

	// Resolver runs observation batches through the pipeline
	Resolver

	// Hooks provides access to event callback registration
	Hooks

	// Store returns the backing entity store
	Store() store.Store

	// Trust returns the connector trust model in use
	Trust() *trust.Model

	// Close releases the backing store
	Close() error
}

// client is the internal implementation of the Placemap interface.
type client struct {

	// options are the configured options for the client
	options *options

	// trust ranks connectors per field group during merge
	trust *trust.Model

	// store persists canonical entities
	store store.Store

	// matcher groups observations by the identity cascade
	matcher *match.Matcher

	// finalizer merges groups and upserts the results
	finalizer *finalize.Finalizer

	// hooks are the event callbacks for entity changes
	hooks *hooks
}

// New creates a new Placemap client with the given options. Without
// options it uses the embedded trust table and an in-memory store.
func New(opts ...Option) (Placemap, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	c := &client{
		options: options,
		trust:   options.trust,
		store:   options.store,
		hooks:   newHooks(),
	}
	if c.trust == nil {
		c.trust = trust.Default()
	}
	if c.store == nil {
		c.store = memory.New()
	}

	c.matcher = match.New(
		match.WithThreshold(options.threshold),
		match.WithGeoPrecision(constants.DefaultGeoPrecision),
	)
	c.finalizer = finalize.New(c.trust, c.store, finalize.WithConcurrency(options.concurrency))

	return c, nil
}

// Store returns the backing entity store.
func (c *client) Store() store.Store {
	return c.store
}

// Trust returns the connector trust model in use.
func (c *client) Trust() *trust.Model {
	return c.trust
}

// Close releases the backing store. The client owns the store even when
// one was supplied via WithStore.
func (c *client) Close() error {
	return c.store.Close()
}
