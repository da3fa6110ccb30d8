package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"
)

// ErrRevisionConflict is returned when a write's expected revision no longer
// matches the stored one. Callers re-read and retry.
var ErrRevisionConflict = errors.New("storage: revision conflict")

// Collection names. One JSON envelope per (user, collection).
const (
	CollectionContacts       = "contacts"
	CollectionTasks          = "tasks"
	CollectionTaskTemplates  = "task_templates"
	CollectionTransactions   = "transactions"
	CollectionNotes          = "notes"
	CollectionPipeline       = "pipeline"
	CollectionActivities     = "activities"
	CollectionCalendarEvents = "calendar_events"
)

var emptyItems = json.RawMessage("[]")

// envelope wraps a collection's items with an optimistic-concurrency counter.
type envelope struct {
	Revision uint64          `json:"revision"`
	Items    json.RawMessage `json:"items"`
}

// CollectionStore reads and rewrites whole collections. Writes carry the
// revision observed at read time and fail with ErrRevisionConflict when the
// stored collection has moved on.
type CollectionStore interface {
	ReadCollection(ctx context.Context, userID, collection string) (json.RawMessage, uint64, error)
	WriteCollection(ctx context.Context, userID, collection string, expectedRevision uint64, items json.RawMessage) error
}

// Store keeps each collection as a single revisioned JSON envelope in the
// underlying KV. A missing collection reads as the empty list at revision 0,
// never as an error. Malformed stored data is recoverable: it reads as the
// empty list with a logged warning.
type Store struct {
	kv     KV
	logger *log.Logger

	// Guards the read-compare-write in WriteCollection. The revision check
	// still protects against a second Store over the same KV.
	mu sync.Mutex
}

// New creates a Store over the given KV.
func New(kv KV, logger *log.Logger) *Store {
	if kv == nil {
		panic("storage.New: kv is nil")
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Store{kv: kv, logger: logger}
}

func collectionKey(userID, collection string) string {
	return "crm:" + userID + ":" + collection
}

// ReadCollection returns the collection's items and revision.
func (s *Store) ReadCollection(ctx context.Context, userID, collection string) (json.RawMessage, uint64, error) {
	raw, err := s.kv.Get(ctx, collectionKey(userID, collection))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return emptyItems, 0, nil
		}
		return nil, 0, err
	}
	env, ok := s.decodeEnvelope(userID, collection, raw)
	if !ok {
		return emptyItems, 0, nil
	}
	return env.Items, env.Revision, nil
}

// WriteCollection replaces the collection's items, bumping the revision. The
// expected revision must match the one observed by the preceding read.
func (s *Store) WriteCollection(ctx context.Context, userID, collection string, expectedRevision uint64, items json.RawMessage) error {
	if items == nil {
		items = emptyItems
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := uint64(0)
	raw, err := s.kv.Get(ctx, collectionKey(userID, collection))
	switch {
	case err == nil:
		if env, ok := s.decodeEnvelope(userID, collection, raw); ok {
			current = env.Revision
		}
	case errors.Is(err, ErrKeyNotFound):
	default:
		return err
	}
	if current != expectedRevision {
		return ErrRevisionConflict
	}

	data, err := json.Marshal(envelope{Revision: expectedRevision + 1, Items: items})
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, collectionKey(userID, collection), data)
}

// decodeEnvelope parses a stored blob. Bare JSON arrays (the legacy layout,
// before revisions) decode as revision 0. Anything else malformed is dropped.
func (s *Store) decodeEnvelope(userID, collection string, raw []byte) (envelope, bool) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			return envelope{Revision: 0, Items: items}, true
		}
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Items == nil {
		s.logger.WithFields(log.Fields{
			"user":       userID,
			"collection": collection,
		}).Warn("discarding malformed stored collection")
		return envelope{}, false
	}
	return env, true
}
