package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id UUID NOT NULL DEFAULT gen_random_uuid(),
	data JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (collection, id)
)`

// PostgresStore keeps documents as JSONB rows in a single documents table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, documentsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure documents table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	config.ConnConfig.Tracer = newQueryTracer()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

func (s *PostgresStore) Create(ctx context.Context, collection string, doc Document) (string, error) {
	if err := validateCollection(collection); err != nil {
		return "", err
	}

	fields, stamped := splitServerTimestamps(doc)
	payload, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	args := []any{collection, payload}
	dataExpr := stampedExpression("$2::jsonb", stamped, &args)
	query := `INSERT INTO documents (collection, data) VALUES ($1, ` + dataExpr + `) RETURNING id`

	var id uuid.UUID
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to create document: %w", err)
	}
	return id.String(), nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	docID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var data []byte
	err = s.pool.QueryRow(ctx, `SELECT data FROM documents WHERE collection = $1 AND id = $2`, collection, docID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return decodeRow(docID, data)
}

func (s *PostgresStore) List(ctx context.Context, collection string) ([]Document, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `SELECT id, data FROM documents WHERE collection = $1 ORDER BY created_at, id`, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			id   uuid.UUID
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc, err := decodeRow(id, data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields Document, preconditions ...Precondition) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	docID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	query, args, err := buildUpdateQuery(collection, docID, fields, preconditions)
	if err != nil {
		return err
	}

	cmdTag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if cmdTag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM documents WHERE collection = $1 AND id = $2)`, collection, docID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check document: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrPreconditionFailed
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func buildUpdateQuery(collection string, id uuid.UUID, fields Document, preconditions []Precondition) (string, []any, error) {
	literal, stamped := splitServerTimestamps(fields)
	payload, err := json.Marshal(literal)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode fields: %w", err)
	}

	args := []any{collection, id, payload}
	dataExpr := stampedExpression("data || $3::jsonb", stamped, &args)

	var b strings.Builder
	b.WriteString(`UPDATE documents SET data = `)
	b.WriteString(dataExpr)
	b.WriteString(`, updated_at = NOW() WHERE collection = $1 AND id = $2`)
	for _, pre := range preconditions {
		args = append(args, pre.Field)
		fieldArg := len(args)
		args = append(args, fmt.Sprint(pre.Value))
		valueArg := len(args)
		b.WriteString(` AND data->>$` + strconv.Itoa(fieldArg) + ` = $` + strconv.Itoa(valueArg))
	}
	return b.String(), args, nil
}

// stampedExpression appends jsonb_build_object(key, NOW()) terms for server timestamps.
func stampedExpression(base string, stamped []string, args *[]any) string {
	expr := base
	for _, key := range stamped {
		*args = append(*args, key)
		expr += ` || jsonb_build_object($` + strconv.Itoa(len(*args)) + `::text, to_jsonb(NOW()))`
	}
	return expr
}

func decodeRow(id uuid.UUID, data []byte) (Document, error) {
	doc := Document{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
	}
	doc["id"] = id.String()
	return doc, nil
}
