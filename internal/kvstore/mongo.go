package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore keeps one document per key in a single collection, with the
// value stored as its raw JSON encoding.
type MongoStore struct {
	coll *mongo.Collection
}

type kvDocument struct {
	Key       string    `bson:"key"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// ConnectMongo opens a client and verifies the connection.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection("kv")}
}

// EnsureIndexes creates the unique key index backing upserts.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	keyIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "key", Value: 1}},
		Options: options.Index().SetName("key_unique").SetUnique(true),
	}

	_, err := s.coll.Indexes().CreateOne(indexCtx, keyIndex)
	if err != nil {
		return fmt.Errorf("create key index: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, key string, out interface{}) error {
	var doc kvDocument
	err := s.coll.FindOne(ctx, bson.M{"key": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return ErrKeyNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(doc.Value), out)
}

func (s *MongoStore) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = s.coll.UpdateOne(ctx,
		bson.M{"key": key},
		bson.M{"$set": bson.M{"value": string(data), "updatedAt": time.Now()}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *MongoStore) SetMulti(ctx context.Context, values map[string]interface{}) error {
	writes := make([]mongo.WriteModel, 0, len(values))
	now := time.Now()
	for key, value := range values {
		data, err := json.Marshal(value)
		if err != nil {
			return err
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"key": key}).
			SetUpdate(bson.M{"$set": bson.M{"value": string(data), "updatedAt": now}}).
			SetUpsert(true))
	}
	if len(writes) == 0 {
		return nil
	}
	_, err := s.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	return err
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"key": key})
	return err
}
