// Package model holds the catalog records shared by the store, relation and service layers.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ID references a product or a collection record.
type ID = uuid.UUID

// ParseID parses the textual form of an ID.
func ParseID(s string) (ID, error) {
	return uuid.Parse(s)
}

// Product is the stored product record. Collections is the forward side of
// the product <-> collection membership.
type Product struct {
	ID          ID
	Title       string
	Description string
	Media       []string
	Category    string
	Collections []ID
	Tags        []string
	Sizes       []string
	Colors      []string
	Price       decimal.Decimal
	Expense     decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductFields are the fields replaced as a whole by a product update.
type ProductFields struct {
	Title       string
	Description string
	Media       []string
	Category    string
	Collections []ID
	Tags        []string
	Sizes       []string
	Colors      []string
	Price       decimal.Decimal
	Expense     decimal.Decimal
}

// Collection is the stored collection record. Products is the reverse side of
// Product.Collections.
type Collection struct {
	ID          ID
	Title       string
	Description string
	Image       string
	Products    []ID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CollectionFields describe a new collection.
type CollectionFields struct {
	Title       string
	Description string
	Image       string
}
