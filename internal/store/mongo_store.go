package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	productsCollection    = "products"
	collectionsCollection = "collections"
)

// NewMongoStore creates the MongoDB backed stores on database.
// Identifiers are stored as their canonical string form in _id.
func NewMongoStore(database *mongo.Database) Stores {
	return Stores{
		Products:    &MongoProductStore{c: database.Collection(productsCollection)},
		Collections: &MongoCollectionStore{c: database.Collection(collectionsCollection)},
	}
}

type productDoc struct {
	ID          string               `bson:"_id"`
	Title       string               `bson:"title"`
	Description string               `bson:"description"`
	Media       []string             `bson:"media"`
	Category    string               `bson:"category"`
	Collections []string             `bson:"collections"`
	Tags        []string             `bson:"tags"`
	Sizes       []string             `bson:"sizes"`
	Colors      []string             `bson:"colors"`
	Price       primitive.Decimal128 `bson:"price"`
	Expense     primitive.Decimal128 `bson:"expense"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

type collectionDoc struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Image       string    `bson:"image"`
	Products    []string  `bson:"products"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

// MongoProductStore implements ProductStore on a MongoDB collection.
type MongoProductStore struct {
	c *mongo.Collection
}

func (m *MongoProductStore) FindByID(ctx context.Context, id model.ID) (*model.Product, error) {
	var doc productDoc
	if err := m.c.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return doc.toModel()
}

func (m *MongoProductStore) Create(ctx context.Context, fields model.ProductFields) (*model.Product, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	set, err := productSet(fields)
	if err != nil {
		return nil, err
	}
	id := uuid.New()
	set["_id"] = id.String()
	set["createdAt"] = now
	set["updatedAt"] = now
	if _, err := m.c.InsertOne(ctx, set); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return m.FindByID(ctx, id)
}

func (m *MongoProductStore) Update(ctx context.Context, id model.ID, fields model.ProductFields) (*model.Product, error) {
	set, err := productSet(fields)
	if err != nil {
		return nil, err
	}
	set["updatedAt"] = time.Now().UTC().Truncate(time.Millisecond)

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc productDoc
	err = m.c.FindOneAndUpdate(ctx, bson.M{"_id": id.String()}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return doc.toModel()
}

func (m *MongoProductStore) DeleteByID(ctx context.Context, id model.ID) error {
	res, err := m.c.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if res.DeletedCount == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// MongoCollectionStore implements CollectionStore on a MongoDB collection.
type MongoCollectionStore struct {
	c *mongo.Collection
}

func (m *MongoCollectionStore) FindByIDs(ctx context.Context, ids []model.ID) ([]model.Collection, error) {
	if len(ids) == 0 {
		return []model.Collection{}, nil
	}
	return m.find(ctx, bson.M{"_id": bson.M{"$in": idStrings(ids)}}, options.Find())
}

func (m *MongoCollectionStore) FindAll(ctx context.Context) ([]model.Collection, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	return m.find(ctx, bson.M{}, opts)
}

func (m *MongoCollectionStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Collection, error) {
	cursor, err := m.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find collections: %w", err)
	}
	var docs []collectionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode collections: %w", err)
	}
	out := make([]model.Collection, 0, len(docs))
	for _, d := range docs {
		c, err := d.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func (m *MongoCollectionStore) Create(ctx context.Context, fields model.CollectionFields) (*model.Collection, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := collectionDoc{
		ID:          uuid.NewString(),
		Title:       fields.Title,
		Description: fields.Description,
		Image:       fields.Image,
		Products:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := m.c.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	return doc.toModel()
}

func (m *MongoCollectionStore) AddProduct(ctx context.Context, collectionID, productID model.ID) error {
	return m.updateMembership(ctx, collectionID, bson.M{
		"$addToSet": bson.M{"products": productID.String()},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (m *MongoCollectionStore) RemoveProduct(ctx context.Context, collectionID, productID model.ID) error {
	return m.updateMembership(ctx, collectionID, bson.M{
		"$pull": bson.M{"products": productID.String()},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (m *MongoCollectionStore) updateMembership(ctx context.Context, collectionID model.ID, update bson.M) error {
	res, err := m.c.UpdateOne(ctx, bson.M{"_id": collectionID.String()}, update)
	if err != nil {
		return fmt.Errorf("failed to update collection products: %w", err)
	}
	if res.MatchedCount == 0 {
		return perrors.ErrCollectionNotFound
	}
	return nil
}

func productSet(f model.ProductFields) (bson.M, error) {
	price, err := toDecimal128(f.Price)
	if err != nil {
		return nil, err
	}
	expense, err := toDecimal128(f.Expense)
	if err != nil {
		return nil, err
	}
	return bson.M{
		"title":       f.Title,
		"description": f.Description,
		"media":       nonNil(f.Media),
		"category":    f.Category,
		"collections": idStrings(f.Collections),
		"tags":        nonNil(f.Tags),
		"sizes":       nonNil(f.Sizes),
		"colors":      nonNil(f.Colors),
		"price":       price,
		"expense":     expense,
	}, nil
}

func (d productDoc) toModel() (*model.Product, error) {
	collections, err := parseIDs(d.Collections)
	if err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return nil, fmt.Errorf("invalid stored price %q: %w", d.Price.String(), err)
	}
	expense, err := decimal.NewFromString(d.Expense.String())
	if err != nil {
		return nil, fmt.Errorf("invalid stored expense %q: %w", d.Expense.String(), err)
	}
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid stored product id %q: %w", d.ID, err)
	}
	return &model.Product{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Media:       nonNil(d.Media),
		Category:    d.Category,
		Collections: collections,
		Tags:        nonNil(d.Tags),
		Sizes:       nonNil(d.Sizes),
		Colors:      nonNil(d.Colors),
		Price:       price,
		Expense:     expense,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

func (d collectionDoc) toModel() (*model.Collection, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid stored collection id %q: %w", d.ID, err)
	}
	products, err := parseIDs(d.Products)
	if err != nil {
		return nil, err
	}
	return &model.Collection{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Image:       d.Image,
		Products:    products,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("invalid decimal %s: %w", d, err)
	}
	return v, nil
}

func idStrings(ids []model.ID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func parseIDs(ss []string) ([]model.ID, error) {
	out := make([]model.ID, 0, len(ss))
	for _, s := range ss {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid stored id %q: %w", s, err)
		}
		out = append(out, id)
	}
	return out, nil
}
