package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const collectionColumns = `id, title, description, image, products, created_at, updated_at`

func scanCollection(row interface{ Scan(...any) error }) (Collection, error) {
	var i Collection
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Description,
		&i.Image,
		&i.Products,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func collectCollections(rows pgx.Rows) ([]Collection, error) {
	defer rows.Close()
	items := []Collection{}
	for rows.Next() {
		i, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const findCollectionsByIDs = `SELECT ` + collectionColumns + `
FROM collections
WHERE id = ANY ($1::uuid[])
`

func (q *Queries) FindCollectionsByIDs(ctx context.Context, ids []uuid.UUID) ([]Collection, error) {
	rows, err := q.db.Query(ctx, findCollectionsByIDs, ids)
	if err != nil {
		return nil, err
	}
	return collectCollections(rows)
}

const findAllCollections = `SELECT ` + collectionColumns + `
FROM collections
ORDER BY created_at DESC, id
`

func (q *Queries) FindAllCollections(ctx context.Context) ([]Collection, error) {
	rows, err := q.db.Query(ctx, findAllCollections)
	if err != nil {
		return nil, err
	}
	return collectCollections(rows)
}

const createCollection = `INSERT INTO collections (title, description, image)
VALUES ($1, $2, $3)
RETURNING ` + collectionColumns

type CreateCollectionParams struct {
	Title       string
	Description string
	Image       string
}

func (q *Queries) CreateCollection(ctx context.Context, arg CreateCollectionParams) (Collection, error) {
	row := q.db.QueryRow(ctx, createCollection, arg.Title, arg.Description, arg.Image)
	return scanCollection(row)
}

const addProductToCollection = `UPDATE collections
SET products   = CASE WHEN $2::uuid = ANY (products) THEN products ELSE array_append(products, $2::uuid) END,
    updated_at = now()
WHERE id = $1
`

func (q *Queries) AddProductToCollection(ctx context.Context, collectionID, productID uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, addProductToCollection, collectionID, productID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const removeProductFromCollection = `UPDATE collections
SET products   = array_remove(products, $2::uuid),
    updated_at = now()
WHERE id = $1
`

func (q *Queries) RemoveProductFromCollection(ctx context.Context, collectionID, productID uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, removeProductFromCollection, collectionID, productID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
