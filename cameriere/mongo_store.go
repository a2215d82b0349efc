package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Document is a stored record keyed by field name.
type Document = bson.M

// DocumentStore is a collection-scoped pass-through to the database.
// It never inspects or enforces the shape of what it stores.
type DocumentStore interface {
	Insert(ctx context.Context, collection string, document any) (string, error)
	List(ctx context.Context, collection string) ([]Document, error)
	Ping(ctx context.Context) error
	CollectionNames(ctx context.Context) ([]string, error)
	Initialized() bool
	Name() string
}

type MongoDocumentStore struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

var _ DocumentStore = (*MongoDocumentStore)(nil)

// NewMongoDocumentStore accepts a nil client; every operation then fails with ErrStoreUnavailable.
func NewMongoDocumentStore(client *mongo.Client, database string) *MongoDocumentStore {
	store := &MongoDocumentStore{
		client: client,
		now:    time.Now,
	}
	if client != nil {
		store.db = client.Database(database)
	}
	return store
}

func (s *MongoDocumentStore) Initialized() bool {
	return s.db != nil
}

func (s *MongoDocumentStore) Name() string {
	if s.db == nil {
		return ""
	}
	return s.db.Name()
}

// Insert implements DocumentStore.
func (s *MongoDocumentStore) Insert(ctx context.Context, collection string, document any) (string, error) {
	ctx, span := tracer.Start(ctx, "MongoDocumentStore.Insert", trace.WithAttributes(
		attribute.String("db.mongodb.collection", collection),
	))
	defer span.End()

	if s.db == nil {
		return "", s.fail(ctx, span, "insert", collection, ErrStoreUnavailable)
	}

	doc, err := toDocument(document)
	if err != nil {
		return "", s.fail(ctx, span, "insert", collection, err)
	}
	doc = stampTimestamps(doc, s.now().UTC())

	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", s.fail(ctx, span, "insert", collection, err)
	}

	id := insertedID(res.InsertedID)
	span.SetAttributes(attribute.String("db.mongodb.document_id", id))
	slog.DebugContext(ctx, "inserted document", slog.String("collection", collection), slog.String("document-id", id))

	return id, nil
}

// List implements DocumentStore. An empty collection yields an empty slice.
func (s *MongoDocumentStore) List(ctx context.Context, collection string) ([]Document, error) {
	ctx, span := tracer.Start(ctx, "MongoDocumentStore.List", trace.WithAttributes(
		attribute.String("db.mongodb.collection", collection),
	))
	defer span.End()

	if s.db == nil {
		return nil, s.fail(ctx, span, "list", collection, ErrStoreUnavailable)
	}

	cursor, err := s.db.Collection(collection).Find(ctx, bson.D{})
	if err != nil {
		return nil, s.fail(ctx, span, "list", collection, err)
	}

	docs := make([]Document, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, s.fail(ctx, span, "list", collection, err)
	}

	span.SetAttributes(attribute.Int("db.mongodb.documents", len(docs)))
	return docs, nil
}

func (s *MongoDocumentStore) Ping(ctx context.Context) error {
	if s.client == nil {
		return ErrStoreUnavailable
	}
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoDocumentStore) CollectionNames(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, ErrStoreUnavailable
	}
	return s.db.ListCollectionNames(ctx, bson.D{})
}

func (s *MongoDocumentStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *MongoDocumentStore) fail(ctx context.Context, span trace.Span, op, collection string, err error) error {
	storeErr := &StoreError{Op: op, Collection: collection, Err: err}
	slog.ErrorContext(ctx, "document store operation failed", slog.String("op", op), slog.String("collection", collection), slog.Any("err", err))
	span.RecordError(storeErr)
	span.SetStatus(codes.Error, storeErr.Error())
	return storeErr
}

// toDocument round-trips any BSON-encodable value into an ordered document.
func toDocument(v any) (bson.D, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// stampTimestamps appends created_at and updated_at unless the document already has them.
func stampTimestamps(doc bson.D, now time.Time) bson.D {
	hasCreated, hasUpdated := false, false
	for _, e := range doc {
		switch e.Key {
		case "created_at":
			hasCreated = true
		case "updated_at":
			hasUpdated = true
		}
	}

	if !hasCreated {
		doc = append(doc, bson.E{Key: "created_at", Value: now})
	}
	if !hasUpdated {
		doc = append(doc, bson.E{Key: "updated_at", Value: now})
	}
	return doc
}

func insertedID(v any) string {
	if oid, ok := v.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(v)
}
