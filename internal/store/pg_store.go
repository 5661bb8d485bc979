package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/model"
	"github.com/abgdnv/catalog/internal/store/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// NewPgStore creates the PostgreSQL backed stores sharing one connection pool.
func NewPgStore(dbp *pgxpool.Pool) Stores {
	q := db.New(dbp)
	return Stores{
		Products:    &PgProductStore{q: q},
		Collections: &PgCollectionStore{q: q},
	}
}

// PgProductStore implements ProductStore using PostgreSQL as the data store.
type PgProductStore struct {
	q *db.Queries
}

// FindByID retrieves a product by its unique identifier.
func (p *PgProductStore) FindByID(ctx context.Context, id model.ID) (*model.Product, error) {
	product, err := p.q.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return productFromRow(product), nil
}

// Create adds a new product to the system.
func (p *PgProductStore) Create(ctx context.Context, fields model.ProductFields) (*model.Product, error) {
	product, err := p.q.CreateProduct(ctx, productParams(fields))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return productFromRow(product), nil
}

// Update replaces the product's fields in a single statement.
func (p *PgProductStore) Update(ctx context.Context, id model.ID, fields model.ProductFields) (*model.Product, error) {
	product, err := p.q.UpdateProduct(ctx, id, productParams(fields))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return productFromRow(product), nil
}

// DeleteByID removes a product by its unique identifier.
func (p *PgProductStore) DeleteByID(ctx context.Context, id model.ID) error {
	count, err := p.q.DeleteProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if count == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// PgCollectionStore implements CollectionStore using PostgreSQL as the data store.
type PgCollectionStore struct {
	q *db.Queries
}

// FindByIDs retrieves the existing collections among ids.
func (p *PgCollectionStore) FindByIDs(ctx context.Context, ids []model.ID) ([]model.Collection, error) {
	if len(ids) == 0 {
		return []model.Collection{}, nil
	}
	rows, err := p.q.FindCollectionsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find collections by IDs: %w", err)
	}
	return collectionsFromRows(rows), nil
}

// FindAll retrieves all collections.
func (p *PgCollectionStore) FindAll(ctx context.Context) ([]model.Collection, error) {
	rows, err := p.q.FindAllCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find all collections: %w", err)
	}
	return collectionsFromRows(rows), nil
}

// Create adds a new collection.
func (p *PgCollectionStore) Create(ctx context.Context, fields model.CollectionFields) (*model.Collection, error) {
	c, err := p.q.CreateCollection(ctx, db.CreateCollectionParams{
		Title:       fields.Title,
		Description: fields.Description,
		Image:       fields.Image,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	return collectionFromRow(c), nil
}

// AddProduct appends productID to the collection's products with set semantics.
func (p *PgCollectionStore) AddProduct(ctx context.Context, collectionID, productID model.ID) error {
	count, err := p.q.AddProductToCollection(ctx, collectionID, productID)
	if err != nil {
		return fmt.Errorf("failed to add product to collection: %w", err)
	}
	if count == 0 {
		return perrors.ErrCollectionNotFound
	}
	return nil
}

// RemoveProduct removes productID from the collection's products.
func (p *PgCollectionStore) RemoveProduct(ctx context.Context, collectionID, productID model.ID) error {
	count, err := p.q.RemoveProductFromCollection(ctx, collectionID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove product from collection: %w", err)
	}
	if count == 0 {
		return perrors.ErrCollectionNotFound
	}
	return nil
}

func productParams(f model.ProductFields) db.ProductParams {
	return db.ProductParams{
		Title:       f.Title,
		Description: f.Description,
		Media:       nonNil(f.Media),
		Category:    f.Category,
		Collections: nonNil(f.Collections),
		Tags:        nonNil(f.Tags),
		Sizes:       nonNil(f.Sizes),
		Colors:      nonNil(f.Colors),
		Price:       toNumeric(f.Price),
		Expense:     toNumeric(f.Expense),
	}
}

func productFromRow(r db.Product) *model.Product {
	return &model.Product{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Media:       nonNil(r.Media),
		Category:    r.Category,
		Collections: nonNil(r.Collections),
		Tags:        nonNil(r.Tags),
		Sizes:       nonNil(r.Sizes),
		Colors:      nonNil(r.Colors),
		Price:       fromNumeric(r.Price),
		Expense:     fromNumeric(r.Expense),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func collectionFromRow(r db.Collection) *model.Collection {
	return &model.Collection{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Image:       r.Image,
		Products:    nonNil(r.Products),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func collectionsFromRows(rows []db.Collection) []model.Collection {
	out := make([]model.Collection, 0, len(rows))
	for _, r := range rows {
		out = append(out, *collectionFromRow(r))
	}
	return out
}

func toNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func fromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
