package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/model"
	"github.com/google/uuid"
)

// memoryDB keeps both record kinds behind one lock so a single collection
// update is atomic, like a row update in the database backends.
type memoryDB struct {
	mu          sync.RWMutex
	products    map[model.ID]model.Product
	collections map[model.ID]model.Collection
	now         func() time.Time
}

// NewMemoryStore creates map backed stores. Records are copied on the way in and out.
func NewMemoryStore() Stores {
	m := &memoryDB{
		products:    make(map[model.ID]model.Product),
		collections: make(map[model.ID]model.Collection),
		now:         time.Now,
	}
	return Stores{
		Products:    &memoryProducts{m},
		Collections: &memoryCollections{m},
	}
}

type memoryProducts struct{ *memoryDB }

func (s *memoryProducts) FindByID(_ context.Context, id model.ID) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (s *memoryProducts) Create(_ context.Context, fields model.ProductFields) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	p := model.Product{ID: uuid.New(), CreatedAt: now}
	applyFields(&p, fields, now)
	s.products[p.ID] = p
	return cloneProduct(p), nil
}

func (s *memoryProducts) Update(_ context.Context, id model.ID, fields model.ProductFields) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	applyFields(&p, fields, s.now())
	s.products[id] = p
	return cloneProduct(p), nil
}

func (s *memoryProducts) DeleteByID(_ context.Context, id model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return perrors.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

type memoryCollections struct{ *memoryDB }

func (s *memoryCollections) FindByIDs(_ context.Context, ids []model.ID) ([]model.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]model.Collection, 0, len(ids))
	for _, id := range model.Dedup(ids) {
		if c, ok := s.collections[id]; ok {
			list = append(list, *cloneCollection(c))
		}
	}
	return list, nil
}

func (s *memoryCollections) FindAll(_ context.Context) ([]model.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]model.Collection, 0, len(s.collections))
	for _, c := range s.collections {
		list = append(list, *cloneCollection(c))
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID.String() < list[j].ID.String()
	})
	return list, nil
}

func (s *memoryCollections) Create(_ context.Context, fields model.CollectionFields) (*model.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c := model.Collection{
		ID:          uuid.New(),
		Title:       fields.Title,
		Description: fields.Description,
		Image:       fields.Image,
		Products:    []model.ID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.collections[c.ID] = c
	return cloneCollection(c), nil
}

func (s *memoryCollections) AddProduct(_ context.Context, collectionID, productID model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collectionID]
	if !ok {
		return perrors.ErrCollectionNotFound
	}
	if !slices.Contains(c.Products, productID) {
		c.Products = append(slices.Clone(c.Products), productID)
		c.UpdatedAt = s.now()
		s.collections[collectionID] = c
	}
	return nil
}

func (s *memoryCollections) RemoveProduct(_ context.Context, collectionID, productID model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collectionID]
	if !ok {
		return perrors.ErrCollectionNotFound
	}
	c.Products = slices.DeleteFunc(slices.Clone(c.Products), func(id model.ID) bool { return id == productID })
	c.UpdatedAt = s.now()
	s.collections[collectionID] = c
	return nil
}

func applyFields(p *model.Product, f model.ProductFields, now time.Time) {
	p.Title = f.Title
	p.Description = f.Description
	p.Media = nonNil(slices.Clone(f.Media))
	p.Category = f.Category
	p.Collections = nonNil(slices.Clone(f.Collections))
	p.Tags = nonNil(slices.Clone(f.Tags))
	p.Sizes = nonNil(slices.Clone(f.Sizes))
	p.Colors = nonNil(slices.Clone(f.Colors))
	p.Price = f.Price
	p.Expense = f.Expense
	p.UpdatedAt = now
}

func cloneProduct(p model.Product) *model.Product {
	p.Media = slices.Clone(p.Media)
	p.Collections = slices.Clone(p.Collections)
	p.Tags = slices.Clone(p.Tags)
	p.Sizes = slices.Clone(p.Sizes)
	p.Colors = slices.Clone(p.Colors)
	return &p
}

func cloneCollection(c model.Collection) *model.Collection {
	c.Products = slices.Clone(c.Products)
	return &c
}
