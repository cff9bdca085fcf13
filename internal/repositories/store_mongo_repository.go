package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"microstore/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StoresCollection is the collection holding one document per store.
const StoresCollection = "stores"

// MongoStoreRepository is a MongoDB implementation of StoreRepository. The
// slug is the document _id.
type MongoStoreRepository struct {
	coll *mongo.Collection
}

// NewMongoStoreRepository creates a repository over the stores collection of db.
func NewMongoStoreRepository(db *mongo.Database) *MongoStoreRepository {
	return &MongoStoreRepository{
		coll: db.Collection(StoresCollection),
	}
}

// ConnectMongo opens a client for uri and verifies it with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongodb connection uri is empty")
	}

	opts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetSocketTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

func storeFields(store *models.Store) bson.M {
	products := store.Products
	if products == nil {
		products = []models.Product{}
	}
	return bson.M{
		"shopName":    store.ShopName,
		"description": store.Description,
		"phone":       store.Phone,
		"upi":         store.UPI,
		"products":    products,
	}
}

// Put upserts the document and lets the server stamp createdAt.
func (r *MongoStoreRepository) Put(ctx context.Context, slug string, store *models.Store) error {
	update := bson.M{
		"$set":         storeFields(store),
		"$currentDate": bson.M{"createdAt": true},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.M{"createdAt": 1})

	var written struct {
		CreatedAt time.Time `bson:"createdAt"`
	}
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": slug}, update, opts).Decode(&written)
	if err != nil {
		return fmt.Errorf("failed to write store %s: %w", slug, err)
	}
	store.CreatedAt = written.CreatedAt
	return nil
}

// Create inserts the document and fails with ErrSlugTaken on a duplicate _id.
func (r *MongoStoreRepository) Create(ctx context.Context, slug string, store *models.Store) error {
	doc := storeFields(store)
	doc["_id"] = slug
	createdAt := time.Now().UTC().Truncate(time.Millisecond)
	doc["createdAt"] = createdAt

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("store %s: %w", slug, ErrSlugTaken)
		}
		return fmt.Errorf("failed to create store %s: %w", slug, err)
	}
	store.CreatedAt = createdAt
	return nil
}

// Get reads the document at slug.
func (r *MongoStoreRepository) Get(ctx context.Context, slug string) (*models.Store, error) {
	var store models.Store
	err := r.coll.FindOne(ctx, bson.M{"_id": slug}).Decode(&store)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("store %s: %w", slug, ErrStoreNotFound)
		}
		return nil, fmt.Errorf("failed to get store %s: %w", slug, err)
	}
	store.Slug = slug
	return &store, nil
}
