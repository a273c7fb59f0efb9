package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pacscope/pacscope/pkg/snapshot"
)

// Mongo database and collection names.
const (
	mongoDatabase   = "pacscope"
	mongoCollection = "snapshots"
)

// MongoStore appends every snapshot to a collection, keeping history.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects using a mongodb:// URI and verifies the
// connection.
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(mongoDatabase).Collection(mongoCollection),
	}, nil
}

// Save inserts the snapshot as a new document keyed by its envelope ID.
func (m *MongoStore) Save(ctx context.Context, s *snapshot.Snapshot) error {
	_, err := m.coll.InsertOne(ctx, s)
	return err
}

// Latest returns the newest snapshot by collection timestamp.
func (m *MongoStore) Latest(ctx context.Context) (*snapshot.Snapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	var s snapshot.Snapshot
	err := m.coll.FindOne(ctx, bson.D{}, opts).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get returns the snapshot document with the given envelope ID.
func (m *MongoStore) Get(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	var s snapshot.Snapshot
	err := m.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns summaries of all stored snapshots, newest first. Package
// maps are not fetched, only envelope metadata and the package count.
func (m *MongoStore) List(ctx context.Context) ([]Meta, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: -1}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "hostname", Value: 1},
			{Key: "timestamp", Value: 1},
			{Key: "packages", Value: bson.D{{Key: "$size", Value: bson.D{{Key: "$objectToArray", Value: "$packages"}}}}},
		}}},
	}

	cursor, err := m.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var metas []Meta
	if err := cursor.All(ctx, &metas); err != nil {
		return nil, err
	}
	return metas, nil
}

// Close disconnects from Mongo.
func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
