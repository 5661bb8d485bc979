package store

import (
	"context"
	"time"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const skipIntegrationTests = "CATALOG_SVC_SKIP_INTEGRATION_TESTS"

// storesSuite holds the behaviour every backend must share.
// Backend suites embed it and assign stores before each test.
type storesSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
}

func testProductFields(title string, collections ...model.ID) model.ProductFields {
	return model.ProductFields{
		Title:       title,
		Description: "Soft cotton tee",
		Media:       []string{"https://cdn.example.com/tee-front.png", "https://cdn.example.com/tee-back.png"},
		Category:    "Shirts",
		Collections: collections,
		Tags:        []string{"summer", "cotton"},
		Sizes:       []string{"S", "M", "L"},
		Colors:      []string{"white"},
		Price:       decimal.RequireFromString("19.99"),
		Expense:     decimal.RequireFromString("7.50"),
	}
}

func (s *storesSuite) createCollection(title string) *model.Collection {
	s.T().Helper()
	c, err := s.stores.Collections.Create(s.ctx, model.CollectionFields{Title: title, Description: title + " picks", Image: "https://cdn.example.com/" + title + ".png"})
	require.NoError(s.T(), err, "createCollection helper failed to create collection")
	return c
}

func (s *storesSuite) fetchCollection(id model.ID) model.Collection {
	s.T().Helper()
	found, err := s.stores.Collections.FindByIDs(s.ctx, []model.ID{id})
	require.NoError(s.T(), err)
	require.Len(s.T(), found, 1, "collection %s not stored", id)
	return found[0]
}

func (s *storesSuite) TestProductCreateAndFindByID() {
	coll := uuid.New()
	created, err := s.stores.Products.Create(s.ctx, testProductFields("Basic Tee", coll))
	require.NoError(s.T(), err)
	require.NotEqual(s.T(), uuid.Nil, created.ID)

	fetched, err := s.stores.Products.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.ID, fetched.ID)
	assert.Equal(s.T(), "Basic Tee", fetched.Title)
	assert.Equal(s.T(), []model.ID{coll}, fetched.Collections)
	assert.Equal(s.T(), []string{"S", "M", "L"}, fetched.Sizes)
	assert.True(s.T(), decimal.RequireFromString("19.99").Equal(fetched.Price), "price: %s", fetched.Price)
	assert.True(s.T(), decimal.RequireFromString("7.5").Equal(fetched.Expense), "expense: %s", fetched.Expense)
	assert.False(s.T(), fetched.CreatedAt.IsZero())
}

func (s *storesSuite) TestProductFindByID_NotFound() {
	_, err := s.stores.Products.FindByID(s.ctx, uuid.New())
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *storesSuite) TestProductUpdate_ReplacesAllFields() {
	created, err := s.stores.Products.Create(s.ctx, testProductFields("Basic Tee", uuid.New()))
	require.NoError(s.T(), err)

	next := uuid.New()
	fields := model.ProductFields{
		Title:       "Heavy Tee",
		Description: "Heavyweight cotton",
		Media:       []string{"https://cdn.example.com/heavy.png"},
		Category:    "Outerwear",
		Collections: []model.ID{next},
		Tags:        []string{},
		Sizes:       []string{"XL"},
		Colors:      []string{"black", "grey"},
		Price:       decimal.Zero,
		Expense:     decimal.RequireFromString("12.25"),
	}
	updated, err := s.stores.Products.Update(s.ctx, created.ID, fields)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), created.ID, updated.ID)
	assert.Equal(s.T(), "Heavy Tee", updated.Title)
	assert.Equal(s.T(), "Outerwear", updated.Category)
	assert.Equal(s.T(), []model.ID{next}, updated.Collections)
	assert.Empty(s.T(), updated.Tags)
	assert.Equal(s.T(), []string{"black", "grey"}, updated.Colors)
	assert.True(s.T(), updated.Price.IsZero())
	assert.True(s.T(), decimal.RequireFromString("12.25").Equal(updated.Expense))

	fetched, err := s.stores.Products.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), updated.Title, fetched.Title)
	assert.Equal(s.T(), updated.Collections, fetched.Collections)
}

func (s *storesSuite) TestProductUpdate_NotFound() {
	_, err := s.stores.Products.Update(s.ctx, uuid.New(), testProductFields("Ghost"))
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *storesSuite) TestProductDeleteByID() {
	created, err := s.stores.Products.Create(s.ctx, testProductFields("Basic Tee"))
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.stores.Products.DeleteByID(s.ctx, created.ID))

	_, err = s.stores.Products.FindByID(s.ctx, created.ID)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
	require.ErrorIs(s.T(), s.stores.Products.DeleteByID(s.ctx, created.ID), perrors.ErrProductNotFound)
}

func (s *storesSuite) TestCollectionAddProduct_IsIdempotent() {
	coll := s.createCollection("summer")
	product := uuid.New()

	require.NoError(s.T(), s.stores.Collections.AddProduct(s.ctx, coll.ID, product))
	require.NoError(s.T(), s.stores.Collections.AddProduct(s.ctx, coll.ID, product))

	fetched := s.fetchCollection(coll.ID)
	assert.Equal(s.T(), []model.ID{product}, fetched.Products)
}

func (s *storesSuite) TestCollectionRemoveProduct() {
	coll := s.createCollection("summer")
	keep, drop := uuid.New(), uuid.New()
	require.NoError(s.T(), s.stores.Collections.AddProduct(s.ctx, coll.ID, keep))
	require.NoError(s.T(), s.stores.Collections.AddProduct(s.ctx, coll.ID, drop))

	require.NoError(s.T(), s.stores.Collections.RemoveProduct(s.ctx, coll.ID, drop))
	// removing an absent member is a no-op
	require.NoError(s.T(), s.stores.Collections.RemoveProduct(s.ctx, coll.ID, drop))

	fetched := s.fetchCollection(coll.ID)
	assert.Equal(s.T(), []model.ID{keep}, fetched.Products)
}

func (s *storesSuite) TestCollectionMembership_NotFound() {
	missing := uuid.New()
	require.ErrorIs(s.T(), s.stores.Collections.AddProduct(s.ctx, missing, uuid.New()), perrors.ErrCollectionNotFound)
	require.ErrorIs(s.T(), s.stores.Collections.RemoveProduct(s.ctx, missing, uuid.New()), perrors.ErrCollectionNotFound)

	found, err := s.stores.Collections.FindByIDs(s.ctx, []model.ID{missing})
	require.NoError(s.T(), err)
	assert.Empty(s.T(), found)
}

func (s *storesSuite) TestCollectionFindByIDs_SkipsMissing() {
	a := s.createCollection("summer")
	b := s.createCollection("winter")

	found, err := s.stores.Collections.FindByIDs(s.ctx, []model.ID{a.ID, uuid.New(), b.ID})
	require.NoError(s.T(), err)
	require.Len(s.T(), found, 2)
	ids := []model.ID{found[0].ID, found[1].ID}
	assert.ElementsMatch(s.T(), []model.ID{a.ID, b.ID}, ids)

	none, err := s.stores.Collections.FindByIDs(s.ctx, nil)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), none)
}

func (s *storesSuite) TestCollectionFindAll_NewestFirst() {
	older := s.createCollection("summer")
	time.Sleep(10 * time.Millisecond)
	newer := s.createCollection("winter")

	all, err := s.stores.Collections.FindAll(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 2)
	assert.Equal(s.T(), newer.ID, all[0].ID)
	assert.Equal(s.T(), older.ID, all[1].ID)
}
