// Package docstore provides schema-less document storage addressed by collection and id.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound           = errors.New("document not found")
	ErrPreconditionFailed = errors.New("document precondition failed")
)

// Document is a schema-less record. Stores return it with the generated id
// under the "id" key.
type Document map[string]any

type serverTimestamp struct{}

// ServerTimestamp is a field value the backend replaces with its own clock at write time.
var ServerTimestamp = serverTimestamp{}

// Precondition restricts an update to documents whose field currently equals Value.
type Precondition struct {
	Field string
	Value any
}

func FieldEquals(field string, value any) Precondition {
	return Precondition{Field: field, Value: value}
}

// Store is the document store contract shared by all backends.
type Store interface {
	Create(ctx context.Context, collection string, doc Document) (string, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	List(ctx context.Context, collection string) ([]Document, error)
	Update(ctx context.Context, collection, id string, fields Document, preconditions ...Precondition) error
	Ping(ctx context.Context) error
	Close() error
}

type Config struct {
	Provider      string
	MongoURI      string
	MongoDatabase string
	DatabaseURL   string
}

func NewStore(ctx context.Context, cfg Config) (Store, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}

	switch cfg.Provider {
	case "", "memory":
		return NewMemoryStore(), nil
	case "mongo":
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case "postgres":
		return NewPostgresStore(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported document store provider: %s", cfg.Provider)
	}
}

// splitServerTimestamps separates ServerTimestamp placeholders from literal fields.
func splitServerTimestamps(doc Document) (Document, []string) {
	fields := make(Document, len(doc))
	var stamped []string
	for key, value := range doc {
		if key == "id" {
			continue
		}
		if _, ok := value.(serverTimestamp); ok {
			stamped = append(stamped, key)
			continue
		}
		fields[key] = value
	}
	return fields, stamped
}

func validateCollection(collection string) error {
	if collection == "" {
		return fmt.Errorf("collection is required")
	}
	return nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
