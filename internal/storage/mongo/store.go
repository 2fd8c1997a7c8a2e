// Package mongo is the document-oriented storage adapter. Users are keyed by
// username directly (the document ID); groups and messages carry ObjectID hex
// strings as their opaque IDs.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuslink/campuslink-be/internal/models"
	"github.com/campuslink/campuslink-be/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store provides MongoDB-backed persistence for users, groups, and messages.
type Store struct {
	client   *mongo.Client
	users    *mongo.Collection
	groups   *mongo.Collection
	messages *mongo.Collection
}

// NewStore connects to MongoDB and ensures the indexes the adapter relies on.
func NewStore(ctx context.Context, uri, dbName string, opts storage.Options) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{
		client:   client,
		users:    db.Collection("users"),
		groups:   db.Collection("groups"),
		messages: db.Collection("messages"),
	}
	if err := s.ensureIndexes(ctx, opts); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Disconnect(ctx)
}

// ensureIndexes is idempotent and called at startup so constraint violations,
// not read-then-write checks, drive duplicate detection.
func (s *Store) ensureIndexes(ctx context.Context, opts storage.Options) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure users indexes: %w", err)
	}

	if opts.UniqueGroupNames {
		_, err = s.groups.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("ensure groups indexes: %w", err)
		}
	}

	_, err = s.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "timestamp", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("ensure messages indexes: %w", err)
	}
	return nil
}

// CreateUser inserts a user document keyed by username.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	user.ID = user.Username
	user.CreatedAt = time.Now().UTC()
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// FindByUsername loads a user by its document ID.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": username}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// CreateGroup inserts a group with a generated ID and creation time.
func (s *Store) CreateGroup(ctx context.Context, group models.Group) (models.Group, error) {
	group.ID = primitive.NewObjectID().Hex()
	group.CreatedAt = time.Now().UTC()
	if _, err := s.groups.InsertOne(ctx, group); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Group{}, storage.ErrAlreadyExists
		}
		return models.Group{}, fmt.Errorf("insert group: %w", err)
	}
	return group, nil
}

// ListGroups returns groups in insertion order with offset/limit applied.
func (s *Store) ListGroups(ctx context.Context, offset, limit int) ([]models.Group, error) {
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := s.groups.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	groups := []models.Group{}
	if err := cur.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}
	return groups, nil
}

// FindGroup loads a group by ID.
func (s *Store) FindGroup(ctx context.Context, id string) (models.Group, error) {
	var group models.Group
	if err := s.groups.FindOne(ctx, bson.M{"_id": id}).Decode(&group); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Group{}, storage.ErrNotFound
		}
		return models.Group{}, fmt.Errorf("find group: %w", err)
	}
	return group, nil
}

// CreateMessage verifies the group exists, then inserts the message with a
// server-assigned timestamp.
func (s *Store) CreateMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	if err := s.requireGroup(ctx, msg.GroupID); err != nil {
		return models.Message{}, err
	}

	msg.ID = primitive.NewObjectID().Hex()
	msg.Timestamp = time.Now().UTC()
	if _, err := s.messages.InsertOne(ctx, msg); err != nil {
		return models.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

// ListMessages returns the group's messages ordered ascending by timestamp.
func (s *Store) ListMessages(ctx context.Context, groupID string) ([]models.Message, error) {
	if err := s.requireGroup(ctx, groupID); err != nil {
		return nil, err
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.messages.Find(ctx, bson.M{"group_id": groupID}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	msgs := []models.Message{}
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return msgs, nil
}

func (s *Store) requireGroup(ctx context.Context, groupID string) error {
	n, err := s.groups.CountDocuments(ctx, bson.M{"_id": groupID})
	if err != nil {
		return fmt.Errorf("check group: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
