package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Collection struct {
	ID          uuid.UUID
	Title       string
	Description string
	Image       string
	Products    []uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Product struct {
	ID          uuid.UUID
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
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
