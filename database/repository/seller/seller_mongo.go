package sellerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"harvestmap/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const sellersCollection = "sellers"

// MongoSellerRepo implements SellerRepository using MongoDB.
type MongoSellerRepo struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

// NewMongoSellerRepo creates a new instance of SellerRepository using MongoDB.
func NewMongoSellerRepo(db *mongo.Database, logger *zap.Logger) SellerRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	repo := &MongoSellerRepo{coll: db.Collection(sellersCollection), logger: logger}

	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("failed to create seller indexes", zap.Error(err))
	}
	return repo
}

// newContext derives a bounded context for a single store round-trip.
func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, timeout)
}

func (r *MongoSellerRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "uid", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoSellerRepo) GetByID(ctx context.Context, id string) (*models.Seller, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	raw, err := r.coll.FindOne(ctx, bson.M{"uid": id}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("failed to fetch seller with id %s: %w", id, err)
	}
	seller, err := decodeSeller(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode seller with id %s: %w", id, err)
	}
	return &seller, nil
}

func (r *MongoSellerRepo) Upsert(ctx context.Context, id, name string) (*models.Seller, bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{"name": name, "updated_at": now},
		"$setOnInsert": bson.M{
			"uid":        id,
			"listings":   bson.A{},
			"created_at": now,
		},
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"uid": id}, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert seller with id %s: %w", id, err)
	}

	seller, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return seller, result.UpsertedCount > 0, nil
}

func (r *MongoSellerRepo) AppendListing(ctx context.Context, sellerID string, listing models.ListingEvent) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"listings": listing},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"uid": sellerID}, update)
	if err != nil {
		return fmt.Errorf("failed to append listing for seller %s: %w", sellerID, err)
	}
	if result.MatchedCount == 0 {
		return ErrSellerNotFound
	}
	return nil
}

func (r *MongoSellerRepo) Scan(ctx context.Context) ([]models.Seller, error) {
	ctx, cancel := newContext(ctx, 30*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to scan sellers: %w", err)
	}
	defer cursor.Close(ctx)

	var sellers []models.Seller
	for cursor.Next(ctx) {
		seller, err := decodeSeller(cursor.Current)
		if err != nil {
			r.logger.Warn("skipping undecodable seller record", zap.Error(err))
			continue
		}
		sellers = append(sellers, seller)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("seller scan interrupted: %w", err)
	}
	return sellers, nil
}

// sellerDocument keeps listings raw so one bad listing cannot poison the whole seller.
type sellerDocument struct {
	ID        string          `bson:"uid"`
	Name      string          `bson:"name"`
	Listings  []bson.RawValue `bson:"listings"`
	CreatedAt time.Time       `bson:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at"`
}

func decodeSeller(raw bson.Raw) (models.Seller, error) {
	var doc sellerDocument
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return models.Seller{}, err
	}

	seller := models.Seller{
		ID:        doc.ID,
		Name:      doc.Name,
		Listings:  make([]models.StoredListing, 0, len(doc.Listings)),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	for i, rv := range doc.Listings {
		var l models.StoredListing
		if rv.Type != bsontype.EmbeddedDocument {
			l.Malformed = fmt.Errorf("listing %d is a %s, not a document", i, rv.Type)
		} else if err := rv.Unmarshal(&l); err != nil {
			l = models.StoredListing{Malformed: fmt.Errorf("listing %d: %w", i, err)}
		}
		seller.Listings = append(seller.Listings, l)
	}
	return seller, nil
}
