package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	client   *mongo.Client
	database *mongo.Database
}

func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}
	if database == "" {
		return nil, fmt.Errorf("mongo database is required")
	}

	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(50)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background()) //nolint
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoStore{
		client:   client,
		database: client.Database(database),
	}, nil
}

func (s *MongoStore) Create(ctx context.Context, collection string, doc Document) (string, error) {
	if err := validateCollection(collection); err != nil {
		return "", err
	}

	id := primitive.NewObjectID()
	fields, stamped := splitServerTimestamps(doc)

	// Upsert instead of InsertOne so $currentDate can assign server timestamps.
	update := mongoUpdate(fields, stamped)
	if len(update) == 0 {
		update = bson.M{"$setOnInsert": bson.M{}}
	}
	_, err := s.database.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	if err != nil {
		return "", fmt.Errorf("failed to create document: %w", err)
	}
	return id.Hex(), nil
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var raw bson.M
	err = s.database.Collection(collection).FindOne(ctx, bson.M{"_id": oid}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return fromMongo(raw), nil
}

func (s *MongoStore) List(ctx context.Context, collection string) ([]Document, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}

	cursor, err := s.database.Collection(collection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	var rows []bson.M
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, fromMongo(row))
	}
	return docs, nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields Document, preconditions ...Precondition) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	filter := bson.M{"_id": oid}
	for _, pre := range preconditions {
		filter[pre.Field] = pre.Value
	}

	literal, stamped := splitServerTimestamps(fields)
	update := mongoUpdate(literal, stamped)
	if len(update) == 0 {
		return nil
	}

	coll := s.database.Collection(collection)
	result, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	count, err := coll.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to check document: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrPreconditionFailed
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func mongoUpdate(fields Document, stamped []string) bson.M {
	update := bson.M{}
	if len(fields) > 0 {
		set := bson.M{}
		for key, value := range fields {
			set[key] = value
		}
		update["$set"] = set
	}
	if len(stamped) > 0 {
		current := bson.M{}
		for _, key := range stamped {
			current[key] = true
		}
		update["$currentDate"] = current
	}
	return update
}

func fromMongo(raw bson.M) Document {
	doc := make(Document, len(raw))
	for key, value := range raw {
		if key == "_id" {
			if oid, ok := value.(primitive.ObjectID); ok {
				doc["id"] = oid.Hex()
			}
			continue
		}
		doc[key] = normalizeMongoValue(value)
	}
	return doc
}

func normalizeMongoValue(value any) any {
	switch v := value.(type) {
	case primitive.DateTime:
		return v.Time().UTC()
	case primitive.M:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[key] = normalizeMongoValue(inner)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(v))
		for _, elem := range v {
			out[elem.Key] = normalizeMongoValue(elem.Value)
		}
		return out
	case primitive.A:
		out := make([]any, len(v))
		for i := range v {
			out[i] = normalizeMongoValue(v[i])
		}
		return out
	case primitive.ObjectID:
		return v.Hex()
	default:
		return v
	}
}
