package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wbkit/waymark/pkg/observability"
)

// Mongo is the library backend for server deployments, where multiple
// instances share one library.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongo connects to uri and uses the "records" collection of database db.
// An index on target and fetched_at is ensured on connect.
func NewMongo(ctx context.Context, uri, db string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(db).Collection("records")
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "target", Value: 1}, {Key: "fetched_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ensure index: %w", err)
	}

	return &Mongo{client: client, coll: coll}, nil
}

// Save upserts rec by ID, assigning an ID and FetchedAt when missing.
func (m *Mongo) Save(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.FetchedAt.IsZero() {
		rec.FetchedAt = time.Now().UTC()
	}

	_, err := m.coll.ReplaceOne(ctx,
		bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}

	observability.Store().OnSave(ctx, "mongo", rec.Length)
	return nil
}

// Get returns the full record for id, or ErrNotFound.
func (m *Mongo) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return &rec, nil
}

// List returns matching records newest-first, HTML omitted.
func (m *Mongo) List(ctx context.Context, f Filter) ([]*Record, error) {
	filter := bson.M{}
	if f.Target != "" {
		filter["target"] = f.Target
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "fetched_at", Value: -1}}).
		SetProjection(bson.M{"html": 0})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cur, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer cur.Close(ctx)

	var out []*Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return out, nil
}

// Delete removes the record for id, or returns ErrNotFound.
func (m *Mongo) Delete(ctx context.Context, id string) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	observability.Store().OnDelete(ctx, "mongo")
	return nil
}

// Close disconnects from the server.
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
