package docstore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps documents in process. It is used for local development and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]*memoryEntry
	seq         uint64
	now         func() time.Time
}

type memoryEntry struct {
	seq  uint64
	data Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]*memoryEntry),
		now:         nowUTC,
	}
}

// WithClock replaces the clock used to resolve ServerTimestamp.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	if now != nil {
		m.now = now
	}
	return m
}

func (m *MemoryStore) Create(_ context.Context, collection string, doc Document) (string, error) {
	if err := validateCollection(collection); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	fields, stamped := splitServerTimestamps(doc)
	data := cloneDocument(fields)
	now := m.now()
	for _, key := range stamped {
		data[key] = now
	}

	id := uuid.NewString()
	docs, ok := m.collections[collection]
	if !ok {
		docs = make(map[string]*memoryEntry)
		m.collections[collection] = docs
	}
	m.seq++
	docs[id] = &memoryEntry{seq: m.seq, data: data}
	return id, nil
}

func (m *MemoryStore) Get(_ context.Context, collection, id string) (Document, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return withID(entry.data, id), nil
}

func (m *MemoryStore) List(_ context.Context, collection string) ([]Document, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := m.collections[collection]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return docs[ids[i]].seq < docs[ids[j]].seq
	})

	out := make([]Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, withID(docs[id].data, id))
	}
	return out, nil
}

func (m *MemoryStore) Update(_ context.Context, collection, id string, fields Document, preconditions ...Precondition) error {
	if err := validateCollection(collection); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for _, pre := range preconditions {
		if !valuesEqual(entry.data[pre.Field], pre.Value) {
			return fmt.Errorf("%w: %s", ErrPreconditionFailed, pre.Field)
		}
	}

	literal, stamped := splitServerTimestamps(fields)
	for key, value := range cloneDocument(literal) {
		entry.data[key] = value
	}
	now := m.now()
	for _, key := range stamped {
		entry.data[key] = now
	}
	return nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func withID(data Document, id string) Document {
	out := cloneDocument(data)
	out["id"] = id
	return out
}

func valuesEqual(stored, expected any) bool {
	if stored == nil || expected == nil {
		return stored == nil && expected == nil
	}
	if reflect.DeepEqual(stored, expected) {
		return true
	}
	return fmt.Sprint(stored) == fmt.Sprint(expected)
}

func cloneDocument(doc Document) Document {
	out := make(Document, len(doc))
	for key, value := range doc {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case Document:
		return cloneDocument(v)
	case map[string]any:
		return map[string]any(cloneDocument(v))
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = cloneValue(v[i])
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = map[string]any(cloneDocument(v[i]))
		}
		return out
	default:
		return v
	}
}
