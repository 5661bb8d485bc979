package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const productColumns = `id, title, description, media, category, collections, tags, sizes, colors, price, expense, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (Product, error) {
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Description,
		&i.Media,
		&i.Category,
		&i.Collections,
		&i.Tags,
		&i.Sizes,
		&i.Colors,
		&i.Price,
		&i.Expense,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const findProductByID = `SELECT ` + productColumns + `
FROM products
WHERE id = $1
`

func (q *Queries) FindProductByID(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, findProductByID, id)
	return scanProduct(row)
}

const createProduct = `INSERT INTO products (title, description, media, category, collections, tags, sizes, colors, price, expense)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + productColumns

type ProductParams struct {
	Title       string
	Description string
	Media       []string
	Category    string
	Collections []uuid.UUID
	Tags        []string
	Sizes       []string
	Colors      []string
	Price       pgtype.Numeric
	Expense     pgtype.Numeric
}

func (q *Queries) CreateProduct(ctx context.Context, arg ProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, createProduct,
		arg.Title,
		arg.Description,
		arg.Media,
		arg.Category,
		arg.Collections,
		arg.Tags,
		arg.Sizes,
		arg.Colors,
		arg.Price,
		arg.Expense,
	)
	return scanProduct(row)
}

const updateProduct = `UPDATE products
SET title       = $2,
    description = $3,
    media       = $4,
    category    = $5,
    collections = $6,
    tags        = $7,
    sizes       = $8,
    colors      = $9,
    price       = $10,
    expense     = $11,
    updated_at  = now()
WHERE id = $1
RETURNING ` + productColumns

func (q *Queries) UpdateProduct(ctx context.Context, id uuid.UUID, arg ProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, updateProduct,
		id,
		arg.Title,
		arg.Description,
		arg.Media,
		arg.Category,
		arg.Collections,
		arg.Tags,
		arg.Sizes,
		arg.Colors,
		arg.Price,
		arg.Expense,
	)
	return scanProduct(row)
}

const deleteProduct = `DELETE
FROM products
WHERE id = $1
`

func (q *Queries) DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteProduct, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
