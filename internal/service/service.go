// Package service orchestrates product reads and mutations and keeps the
// collection side of the product <-> collection membership in step.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/model"
	"github.com/abgdnv/catalog/internal/relation"
	"github.com/abgdnv/catalog/internal/store"
	"github.com/abgdnv/catalog/pkg/auth"
	"github.com/abgdnv/catalog/pkg/messaging"
	"github.com/abgdnv/catalog/pkg/messaging/events"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/abgdnv/catalog/internal/service"

// CatalogService defines the product operations exposed to the transport layer.
type CatalogService interface {
	// GetProduct returns the product with its collections expanded.
	// Returns ErrProductNotFound if no product exists with the given ID.
	GetProduct(ctx context.Context, id model.ID) (*ProductDto, error)

	// UpdateProduct replaces the product's fields and moves it between collections.
	// Returns ErrUnauthorized, ErrProductNotFound, *InvalidInputError or *PartialSyncError.
	UpdateProduct(ctx context.Context, id model.ID, update ProductUpdateDto) (*UpdateResultDto, error)

	// DeleteProduct removes the product and drops it from every collection that listed it.
	// Returns ErrUnauthorized, ErrProductNotFound or *PartialSyncError.
	DeleteProduct(ctx context.Context, id model.ID) error
}

// Service implements CatalogService.
type Service struct {
	products     store.ProductStore
	collections  store.CollectionStore
	sync         *relation.Synchronizer
	callers      auth.CallerResolver
	publisher    messaging.Publisher
	validate     *validator.Validate
	logger       *slog.Logger
	tracer       trace.Tracer
	mutations    metric.Int64Counter
	syncFailures metric.Int64Counter
}

// NewService creates a Service. A nil publisher disables domain events.
func NewService(stores store.Stores, sync *relation.Synchronizer, callers auth.CallerResolver, publisher messaging.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	meter := otel.Meter(instrumentationName)
	mutations, err := meter.Int64Counter("catalog_product_mutations", metric.WithDescription("Total number of successful product updates and deletes"))
	if err != nil {
		panic(fmt.Sprintf("failed to create catalog_product_mutations counter: %v", err))
	}
	syncFailures, err := meter.Int64Counter("catalog_sync_failures", metric.WithDescription("Total number of collection updates that failed during membership sync"))
	if err != nil {
		panic(fmt.Sprintf("failed to create catalog_sync_failures counter: %v", err))
	}
	return &Service{
		products:     stores.Products,
		collections:  stores.Collections,
		sync:         sync,
		callers:      callers,
		publisher:    publisher,
		validate:     newValidator(),
		logger:       logger.With("component", "service"),
		tracer:       otel.Tracer(instrumentationName),
		mutations:    mutations,
		syncFailures: syncFailures,
	}
}

// GetProduct retrieves a product and resolves its collection ids to records.
// Ids that no longer resolve to a collection are left out.
func (s *Service) GetProduct(ctx context.Context, id model.ID) (*ProductDto, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetProduct", trace.WithAttributes(attribute.String("product.id", id.String())))
	defer span.End()

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to fetch product by ID %s: %w", id, err))
	}
	dto, err := s.expand(ctx, product)
	if err != nil {
		return nil, fail(span, err)
	}
	return dto, nil
}

// UpdateProduct replaces the product's fields. Collection records are updated
// before the product itself; if any of them fails the product is left as it was.
func (s *Service) UpdateProduct(ctx context.Context, id model.ID, update ProductUpdateDto) (*UpdateResultDto, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.UpdateProduct", trace.WithAttributes(attribute.String("product.id", id.String())))
	defer span.End()

	if _, ok := s.callers.CallerID(ctx); !ok {
		return nil, fail(span, perrors.ErrUnauthorized)
	}

	existing, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to fetch product by ID %s: %w", id, err))
	}

	fields, err := s.toFields(update)
	if err != nil {
		return nil, fail(span, err)
	}

	delta := relation.Diff(existing.Collections, fields.Collections)
	span.SetAttributes(attribute.Int("sync.add", len(delta.ToAdd)), attribute.Int("sync.remove", len(delta.ToRemove)))
	if !delta.Empty() {
		if err := s.sync.Apply(ctx, id, delta); err != nil {
			s.countSyncFailures(ctx, err)
			return nil, fail(span, err)
		}
	}

	updated, err := s.products.Update(ctx, id, fields)
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to update product with ID %s: %w", id, err))
	}

	product, err := s.expand(ctx, updated)
	if err != nil {
		return nil, fail(span, err)
	}
	all, err := s.collections.FindAll(ctx)
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to fetch collections: %w", err))
	}

	s.publish(ctx, events.ProductUpdatedEvent{
		Carrier:     carrier(ctx),
		ProductID:   id,
		Collections: updated.Collections,
		Added:       delta.ToAdd,
		Removed:     delta.ToRemove,
		UpdatedAt:   updated.UpdatedAt,
	})
	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", "update")))

	return &UpdateResultDto{Collections: toCollectionDtos(all), Product: *product}, nil
}

// DeleteProduct removes the product record first and then drops it from its
// collections. A failed collection update is returned but does not bring the
// product back.
func (s *Service) DeleteProduct(ctx context.Context, id model.ID) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.DeleteProduct", trace.WithAttributes(attribute.String("product.id", id.String())))
	defer span.End()

	if _, ok := s.callers.CallerID(ctx); !ok {
		return fail(span, perrors.ErrUnauthorized)
	}

	existing, err := s.products.FindByID(ctx, id)
	if err != nil {
		return fail(span, fmt.Errorf("failed to fetch product by ID %s: %w", id, err))
	}
	if err := s.products.DeleteByID(ctx, id); err != nil {
		return fail(span, fmt.Errorf("failed to delete product with ID %s: %w", id, err))
	}
	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", "delete")))
	s.publish(ctx, events.ProductDeletedEvent{
		Carrier:     carrier(ctx),
		ProductID:   id,
		Collections: existing.Collections,
		DeletedAt:   time.Now().UTC(),
	})

	if err := s.sync.RemoveProductFromCollections(ctx, id, existing.Collections); err != nil {
		s.countSyncFailures(ctx, err)
		return fail(span, err)
	}
	return nil
}

// expand joins the product with its collections, keeping the product's order.
func (s *Service) expand(ctx context.Context, p *model.Product) (*ProductDto, error) {
	found, err := s.collections.FindByIDs(ctx, p.Collections)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collections of product %s: %w", p.ID, err)
	}
	byID := make(map[model.ID]model.Collection, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	expanded := make([]CollectionDto, 0, len(p.Collections))
	for _, cid := range p.Collections {
		c, ok := byID[cid]
		if !ok {
			s.logger.DebugContext(ctx, "dangling collection reference", "product_id", p.ID, "collection_id", cid)
			continue
		}
		expanded = append(expanded, toCollectionDto(c))
	}
	return toProductDto(p, expanded), nil
}

func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "subject", event.Subject(), "error", err)
	}
}

func (s *Service) countSyncFailures(ctx context.Context, err error) {
	var partial *perrors.PartialSyncError
	if errors.As(err, &partial) {
		s.syncFailures.Add(ctx, int64(len(partial.Failures)))
	}
}

func carrier(ctx context.Context) map[string]string {
	c := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, c)
	return c
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
