package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "github.com/matzehuels/craneplan/pkg/errors"
	"github.com/matzehuels/craneplan/pkg/pipeline"
)

// Mongo defaults.
const (
	DefaultDatabase   = "craneplan"
	DefaultCollection = "plans"
)

// planDoc is the stored form of a plan. Summary fields are top-level so
// listing and filtering never decode the body; the full plan is kept as
// its JSON encoding.
type planDoc struct {
	ID           string    `bson:"_id"`
	Kind         string    `bson:"kind"`
	ManifestHash string    `bson:"manifest_hash"`
	Moves        int       `bson:"moves"`
	TotalTime    int       `bson:"total_time"`
	CreatedAt    time.Time `bson:"created_at"`
	Body         []byte    `bson:"body"`
}

func (d planDoc) summary() (Summary, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return Summary{}, fmt.Errorf("stored plan id %q: %w", d.ID, err)
	}
	return Summary{
		ID:           id,
		Kind:         d.Kind,
		ManifestHash: d.ManifestHash,
		Moves:        d.Moves,
		TotalTime:    d.TotalTime,
		CreatedAt:    d.CreatedAt,
	}, nil
}

// MongoStore archives plans in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri, pings the server and ensures the listing
// index exists. An empty database name means DefaultDatabase.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = DefaultDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(database).Collection(DefaultCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "kind", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create plan index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Save(ctx context.Context, p *pipeline.Plan) error {
	if p.ID == uuid.Nil {
		return errs.New(errs.ErrCodeInvalidPlan, "plan has no id")
	}
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	sum := Summarize(p)
	doc := planDoc{
		ID:           p.ID.String(),
		Kind:         sum.Kind,
		ManifestHash: sum.ManifestHash,
		Moves:        sum.Moves,
		TotalTime:    sum.TotalTime,
		CreatedAt:    sum.CreatedAt,
		Body:         body,
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) Get(ctx context.Context, id uuid.UUID) (*pipeline.Plan, error) {
	var doc planDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.New(errs.ErrCodeNotFound, "plan %s", id)
	}
	if err != nil {
		return nil, err
	}
	var p pipeline.Plan
	if err := json.Unmarshal(doc.Body, &p); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "decode plan %s", id)
	}
	return &p, nil
}

func (s *MongoStore) List(ctx context.Context, q Query) ([]Summary, error) {
	filter := bson.M{}
	if q.Kind != "" {
		filter["kind"] = q.Kind
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(q.limit())).
		SetProjection(bson.M{"body": 0})

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Summary
	for cur.Next(ctx) {
		var doc planDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		sum, err := doc.summary()
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, cur.Err()
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
