package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/autoleague/internal/domain/model"
	"github.com/okian/autoleague/internal/domain/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultMongoCollection holds one document per match result.
const DefaultMongoCollection = "match_results"

type resultDocument struct {
	Key        string            `bson:"_id"`
	Scope      string            `bson:"scope"`
	A          string            `bson:"a"`
	B          string            `bson:"b"`
	Result     model.MatchResult `bson:"result"`
	RecordedAt time.Time         `bson:"recorded_at"`
}

// MongoResultStore keeps results in a MongoDB collection keyed by the
// scoped pairing name.
type MongoResultStore struct {
	client     *mongo.Client // nil when the collection was supplied by the caller
	coll       *mongo.Collection
	collection string
}

// MongoOption configures a MongoResultStore.
type MongoOption func(*MongoResultStore)

// WithMongoCollection overrides DefaultMongoCollection.
func WithMongoCollection(name string) MongoOption {
	return func(s *MongoResultStore) {
		if name != "" {
			s.collection = name
		}
	}
}

// NewMongoResultStore connects to uri and uses database.
func NewMongoResultStore(ctx context.Context, uri, database string, opts ...MongoOption) (*MongoResultStore, error) {
	s := &MongoResultStore{collection: DefaultMongoCollection}
	for _, opt := range opts {
		opt(s)
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s.client = client
	s.coll = client.Database(database).Collection(s.collection)
	return s, nil
}

// NewMongoResultStoreFromCollection wraps an existing collection.
func NewMongoResultStoreFromCollection(coll *mongo.Collection) *MongoResultStore {
	return &MongoResultStore{coll: coll, collection: coll.Name()}
}

// Get finds the document for key. A document that does not decode is corrupt.
func (s *MongoResultStore) Get(ctx context.Context, key types.PairKey) (model.MatchResult, bool, error) {
	sr := s.coll.FindOne(ctx, bson.M{"_id": key.String()})
	if err := sr.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.MatchResult{}, false, nil
		}
		return model.MatchResult{}, false, fmt.Errorf("find %s: %w", key, err)
	}
	raw, err := sr.Raw()
	if err != nil {
		return model.MatchResult{}, false, fmt.Errorf("read %s: %w", key, err)
	}
	r, err := s.decode(raw, key.String())
	if err != nil {
		return model.MatchResult{}, false, err
	}
	return r, true, nil
}

func (s *MongoResultStore) decode(raw bson.Raw, id string) (model.MatchResult, error) {
	resource := "mongo:" + s.collection + "/" + id
	var doc resultDocument
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return model.MatchResult{}, &model.CorruptResultError{Resource: resource, Err: err}
	}
	res := doc.Result.Normalized()
	if err := res.Validate(); err != nil {
		return model.MatchResult{}, &model.CorruptResultError{Resource: resource, Err: err}
	}
	return res, nil
}

// Put inserts the result; an existing document is left untouched.
func (s *MongoResultStore) Put(ctx context.Context, key types.PairKey, result model.MatchResult) error {
	doc := resultDocument{
		Key:        key.String(),
		Scope:      key.Scope,
		A:          key.A,
		B:          key.B,
		Result:     result,
		RecordedAt: time.Now().UTC(),
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrResultExists, key)
		}
		return fmt.Errorf("insert %s: %w", key, err)
	}
	return nil
}

// List returns every result of scope.
func (s *MongoResultStore) List(ctx context.Context, scope string) (map[types.PairKey]model.MatchResult, error) {
	cur, err := s.coll.Find(ctx, bson.M{"scope": scope})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", scope, err)
	}
	defer cur.Close(ctx)

	out := make(map[types.PairKey]model.MatchResult)
	for cur.Next(ctx) {
		var head struct {
			Key string `bson:"_id"`
			A   string `bson:"a"`
			B   string `bson:"b"`
		}
		if err := bson.Unmarshal(cur.Current, &head); err != nil {
			return nil, &model.CorruptResultError{Resource: "mongo:" + s.collection, Err: err}
		}
		r, err := s.decode(cur.Current, head.Key)
		if err != nil {
			return nil, err
		}
		out[types.NewPairKey(scope, head.A, head.B)] = r
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", scope, err)
	}
	return out, nil
}

// Close disconnects the client this store opened.
func (s *MongoResultStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
