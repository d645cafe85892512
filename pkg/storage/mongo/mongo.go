// Package mongo stores drafts in a MongoDB collection.
package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage"
)

// Defaults for Config.
const (
	DefaultDatabase   = "sitebuilder"
	DefaultCollection = "drafts"
)

// Config configures the MongoDB connection.
type Config struct {
	URI        string
	Database   string
	Collection string
}

// record is the stored shape. Content is kept as a JSON string so any
// draft, including legacy shapes, round-trips byte for byte.
type record struct {
	ProjectID string    `bson:"_id"`
	Content   string    `bson:"content"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Store keeps one document per project, keyed by _id.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewStore connects to MongoDB and verifies the connection.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &Store{client: client, coll: client.Database(cfg.Database).Collection(cfg.Collection)}, nil
}

func (s *Store) GetDraft(ctx context.Context, projectID string) (*storage.Response, error) {
	if err := storage.ValidateProjectID(projectID); err != nil {
		return nil, err
	}
	var rec record
	err := s.coll.FindOne(ctx, bson.M{"_id": projectID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.NotFound(projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("find draft: %w", err)
	}
	return storage.Found(json.RawMessage(rec.Content), rec.UpdatedAt.UTC()), nil
}

func (s *Store) SaveDraft(ctx context.Context, projectID string, content json.RawMessage) error {
	if err := storage.CheckSave(projectID, content); err != nil {
		return err
	}
	rec := record{ProjectID: projectID, Content: string(content), UpdatedAt: time.Now().UTC()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": projectID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *Store) DeleteDraft(ctx context.Context, projectID string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": projectID}); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// ListProjects returns the ids with a draft, sorted.
func (s *Store) ListProjects(ctx context.Context) ([]string, error) {
	cur, err := s.coll.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var rec struct {
			ProjectID string `bson:"_id"`
		}
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode draft id: %w", err)
		}
		ids = append(ids, rec.ProjectID)
	}
	return ids, cur.Err()
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var (
	_ storage.Store   = (*Store)(nil)
	_ storage.Lister  = (*Store)(nil)
	_ storage.Deleter = (*Store)(nil)
)
