package service

import (
	"errors"
	"reflect"
	"strings"
	"time"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CollectionDto represents the data transfer object for a collection.
type CollectionDto struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Products    []string `json:"products"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// ProductDto represents a product with its collections expanded to records.
type ProductDto struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Media       []string        `json:"media"`
	Category    string          `json:"category"`
	Collections []CollectionDto `json:"collections"`
	Tags        []string        `json:"tags"`
	Sizes       []string        `json:"sizes"`
	Colors      []string        `json:"colors"`
	Price       Amount          `json:"price"`
	Expense     Amount          `json:"expense"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// Amount is a money value written as a JSON number. Quoted and bare
// numbers are both accepted on input.
type Amount struct {
	decimal.Decimal
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// ProductUpdateDto is the full replacement payload of a product update.
// A missing collections list means the product belongs to no collection.
type ProductUpdateDto struct {
	Title       string           `json:"title"       validate:"required"`
	Description string           `json:"description" validate:"required"`
	Media       []string         `json:"media"       validate:"required,min=1,dive,required"`
	Category    string           `json:"category"    validate:"required"`
	Collections []string         `json:"collections" validate:"omitempty,dive,uuid"`
	Tags        []string         `json:"tags"`
	Sizes       []string         `json:"sizes"`
	Colors      []string         `json:"colors"`
	Price       *decimal.Decimal `json:"price"       validate:"required,min=0,max=9999999999.99,cents"`
	Expense     *decimal.Decimal `json:"expense"     validate:"required,min=0,max=9999999999.99,cents"`
}

// amountScale is the number of decimal places every store keeps for money.
const amountScale = 2

// UpdateResultDto is returned by a successful update: every collection after
// the membership change and the updated product.
type UpdateResultDto struct {
	Collections []CollectionDto `json:"collections"`
	Product     ProductDto      `json:"product"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// decimals are compared as numbers by min/max
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	// cents sees the decimal itself; min/max above only see its float form
	_ = v.RegisterValidation("cents", func(fl validator.FieldLevel) bool {
		field := reflect.Indirect(fl.Parent().FieldByName(fl.StructFieldName()))
		d, ok := field.Interface().(decimal.Decimal)
		return ok && d.Equal(d.Truncate(amountScale))
	})
	return v
}

// toFields validates the payload and converts it to the stored field set.
func (s *Service) toFields(update ProductUpdateDto) (model.ProductFields, error) {
	if err := s.validate.Struct(update); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			return model.ProductFields{}, &perrors.InvalidInputError{Fields: fields}
		}
		return model.ProductFields{}, &perrors.InvalidInputError{Fields: map[string]string{"payload": err.Error()}}
	}

	collections := make([]model.ID, 0, len(update.Collections))
	for _, raw := range update.Collections {
		// already checked by the uuid rule
		collections = append(collections, uuid.MustParse(raw))
	}

	return model.ProductFields{
		Title:       update.Title,
		Description: update.Description,
		Media:       update.Media,
		Category:    update.Category,
		Collections: model.Dedup(collections),
		Tags:        update.Tags,
		Sizes:       update.Sizes,
		Colors:      update.Colors,
		Price:       *update.Price,
		Expense:     *update.Expense,
	}, nil
}

func toProductDto(p *model.Product, collections []CollectionDto) *ProductDto {
	return &ProductDto{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		Media:       nonNil(p.Media),
		Category:    p.Category,
		Collections: collections,
		Tags:        nonNil(p.Tags),
		Sizes:       nonNil(p.Sizes),
		Colors:      nonNil(p.Colors),
		Price:       Amount{p.Price},
		Expense:     Amount{p.Expense},
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

func toCollectionDto(c model.Collection) CollectionDto {
	products := make([]string, 0, len(c.Products))
	for _, id := range c.Products {
		products = append(products, id.String())
	}
	return CollectionDto{
		ID:          c.ID.String(),
		Title:       c.Title,
		Description: c.Description,
		Image:       c.Image,
		Products:    products,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
	}
}

func toCollectionDtos(list []model.Collection) []CollectionDto {
	out := make([]CollectionDto, 0, len(list))
	for _, c := range list {
		out = append(out, toCollectionDto(c))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
