// Package mongodb stores users as documents in a MongoDB collection. It is the
// persistence backend used when a MongoDB connection string is configured.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/msomdec/credgate/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	usersCollection = "users"
	closeTimeout    = 5 * time.Second
)

// DB wraps a MongoDB client and implements domain.Store.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
	users  *UserRepository
}

var _ domain.Store = (*DB)(nil)

// New connects to the MongoDB deployment at uri and verifies the connection.
func New(ctx context.Context, uri, database string) (*DB, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(database)
	return &DB{
		client: client,
		db:     db,
		users:  NewUserRepository(db.Collection(usersCollection)),
	}, nil
}

// Migrate creates the unique index on the users' email.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (d *DB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return d.client.Disconnect(ctx)
}

// Users returns the user repository backed by this database.
func (d *DB) Users() domain.UserRepository {
	return d.users
}
