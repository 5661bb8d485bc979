// Package store provides the storage collaborators for products and collections.
package store

import (
	"context"

	"github.com/abgdnv/catalog/internal/model"
)

// ProductStore is an interface for product storage operations.
// Every method is atomic for the single record it touches.
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id model.ID) (*model.Product, error)

	// Create adds a new product to the system.
	Create(ctx context.Context, fields model.ProductFields) (*model.Product, error)

	// Update replaces every mutable field of the product and returns the persisted record.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id model.ID, fields model.ProductFields) (*model.Product, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id model.ID) error
}

// CollectionStore is an interface for collection storage operations.
// AddProduct and RemoveProduct make it a relation.MembershipStore.
type CollectionStore interface {
	// FindByIDs returns the collections that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []model.ID) ([]model.Collection, error)

	// FindAll returns every collection, newest first.
	FindAll(ctx context.Context) ([]model.Collection, error)

	// Create adds a new, empty collection.
	Create(ctx context.Context, fields model.CollectionFields) (*model.Collection, error)

	// AddProduct appends productID to the collection's products unless already present.
	// Returns ErrCollectionNotFound if no collection exists with the given ID.
	AddProduct(ctx context.Context, collectionID, productID model.ID) error

	// RemoveProduct removes productID from the collection's products; absent ids are ignored.
	// Returns ErrCollectionNotFound if no collection exists with the given ID.
	RemoveProduct(ctx context.Context, collectionID, productID model.ID) error
}

// Stores bundles the two collaborators served by one backend.
type Stores struct {
	Products    ProductStore
	Collections CollectionStore
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
