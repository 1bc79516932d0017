package store

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
)

// Defaults for MongoConfig.
const (
	DefaultMongoURI        = "mongodb://localhost:27017"
	DefaultMongoDatabase   = "mindcanvas"
	DefaultMongoCollection = "maps"
)

// MongoConfig holds connection settings for a MongoStore.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps one document per map, keyed by name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mapDocument struct {
	Name      string    `bson:"_id"`
	ID        string    `bson:"doc_id"`
	Tree      string    `bson:"tree"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		cfg.URI = DefaultMongoURI
	}
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, storageErr(err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, storageErr(err, "ping mongo")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *MongoStore) find(ctx context.Context, name string) (*mapDocument, error) {
	var doc mapDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(err, "mongo find %q", name)
	}
	return &doc, nil
}

func (s *MongoStore) Save(ctx context.Context, name string, data []byte) error {
	if err := checkSave(name, data); err != nil {
		return err
	}
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{"tree": string(data), "updated_at": now},
		"$setOnInsert": bson.M{
			"doc_id":     uuid.NewString(),
			"created_at": now,
		},
	}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": name}, update, options.Update().SetUpsert(true))
	if err != nil {
		return storageErr(err, "mongo save %q", name)
	}
	return nil
}

func (s *MongoStore) Load(ctx context.Context, name string) ([]byte, bool, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, false, err
	}
	doc, err := s.find(ctx, name)
	if err != nil || doc == nil {
		return nil, false, err
	}
	return []byte(doc.Tree), true, nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return storageErr(err, "mongo delete %q", name)
	}
	if res.DeletedCount == 0 {
		return notFound(name)
	}
	return nil
}

// Rename inserts the document under the new id and then removes the old
// one. A unique-key conflict on insert reports ALREADY_EXISTS.
func (s *MongoStore) Rename(ctx context.Context, oldName, newName string) error {
	if err := checkRename(oldName, newName); err != nil {
		return err
	}
	doc, err := s.find(ctx, oldName)
	if err != nil {
		return err
	}
	if doc == nil {
		return notFound(oldName)
	}
	if oldName == newName {
		return nil
	}
	doc.Name = newName
	doc.UpdatedAt = time.Now().UTC()
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return alreadyExists(newName)
		}
		return storageErr(err, "mongo insert %q", newName)
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": oldName}); err != nil {
		return storageErr(err, "mongo delete %q", oldName)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storageErr(err, "mongo list")
	}
	defer cur.Close(ctx)

	var names []string
	for cur.Next(ctx) {
		var doc struct {
			Name string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, storageErr(err, "mongo decode")
		}
		names = append(names, doc.Name)
	}
	if err := cur.Err(); err != nil {
		return nil, storageErr(err, "mongo cursor")
	}
	return names, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
