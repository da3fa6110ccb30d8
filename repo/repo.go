package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"crm-api/storage"
)

// ErrNotFound is returned when an identifier names no entity in its
// collection. Updates and removals of unknown identifiers are errors, not
// silent no-ops.
var ErrNotFound = errors.New("repo: entity not found")

// writeAttempts bounds the read-modify-write retry loop on revision conflicts.
const writeAttempts = 3

// hooks wires entity-specific identity access and timestamp stamping into the
// generic collection repository.
type hooks[T any] struct {
	getID    func(T) string
	setID    func(*T, string)
	onCreate func(*T, time.Time)
	onUpdate func(*T, time.Time)
}

// Collection is a repository over one named collection. Every write rewrites
// the whole collection under the store's revision check; no write touches
// another collection.
type Collection[T any] struct {
	store  storage.CollectionStore
	name   string
	logger *log.Logger
	now    func() time.Time
	newID  func() string
	hooks  hooks[T]
}

func newCollection[T any](store storage.CollectionStore, name string, logger *log.Logger, h hooks[T]) *Collection[T] {
	if store == nil {
		panic("repo: store is nil")
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Collection[T]{
		store:  store,
		name:   name,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
		hooks:  h,
	}
}

// List returns a snapshot of the collection. A missing collection is empty.
func (c *Collection[T]) List(ctx context.Context, userID string) ([]T, error) {
	raw, _, err := c.store.ReadCollection(ctx, userID, c.name)
	if err != nil {
		return nil, err
	}
	return c.decode(userID, raw), nil
}

// Get returns the entity with the given identifier.
func (c *Collection[T]) Get(ctx context.Context, userID, id string) (T, error) {
	var zero T
	items, err := c.List(ctx, userID)
	if err != nil {
		return zero, err
	}
	for _, item := range items {
		if c.hooks.getID(item) == id {
			return item, nil
		}
	}
	return zero, ErrNotFound
}

// Create assigns a fresh identifier, stamps creation metadata, appends the
// entity and persists the collection.
func (c *Collection[T]) Create(ctx context.Context, userID string, draft T) (T, error) {
	var created T
	err := c.mutate(ctx, userID, func(items []T) ([]T, error) {
		entity := draft
		c.hooks.setID(&entity, c.newID())
		if c.hooks.onCreate != nil {
			c.hooks.onCreate(&entity, c.now())
		}
		created = entity
		return append(items, entity), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return created, nil
}

// Update replaces the entry matching the entity's identifier. Other entries
// are untouched.
func (c *Collection[T]) Update(ctx context.Context, userID string, entity T) (T, error) {
	id := c.hooks.getID(entity)
	var updated T
	err := c.mutate(ctx, userID, func(items []T) ([]T, error) {
		for i := range items {
			if c.hooks.getID(items[i]) == id {
				e := entity
				if c.hooks.onUpdate != nil {
					c.hooks.onUpdate(&e, c.now())
				}
				items[i] = e
				updated = e
				return items, nil
			}
		}
		return nil, ErrNotFound
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return updated, nil
}

// Remove filters the identifier out of the collection. The collection is
// untouched when the identifier is unknown.
func (c *Collection[T]) Remove(ctx context.Context, userID, id string) error {
	return c.mutate(ctx, userID, func(items []T) ([]T, error) {
		for i := range items {
			if c.hooks.getID(items[i]) == id {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

// mutate runs a read-modify-write cycle under the store's revision check,
// retrying on conflict with a freshly read snapshot.
func (c *Collection[T]) mutate(ctx context.Context, userID string, fn func([]T) ([]T, error)) error {
	for attempt := 0; attempt < writeAttempts; attempt++ {
		raw, rev, err := c.store.ReadCollection(ctx, userID, c.name)
		if err != nil {
			return err
		}
		next, err := fn(c.decode(userID, raw))
		if err != nil {
			return err
		}
		data, err := json.Marshal(next)
		if err != nil {
			return err
		}
		err = c.store.WriteCollection(ctx, userID, c.name, rev, data)
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrRevisionConflict) {
			return err
		}
	}
	return storage.ErrRevisionConflict
}

// decode fails closed: items that no longer match the expected shape read as
// the empty collection rather than propagating a malformed object upward.
func (c *Collection[T]) decode(userID string, raw json.RawMessage) []T {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		c.logger.WithFields(log.Fields{
			"user":       userID,
			"collection": c.name,
		}).Warn("discarding stored items with unexpected shape")
		return []T{}
	}
	if items == nil {
		items = []T{}
	}
	return items
}
