package relation

import (
	"context"
	"errors"
	"log/slog"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/model"
	"golang.org/x/sync/errgroup"
)

// MembershipStore mutates the product list kept on each collection.
// Both operations are atomic per collection and idempotent.
type MembershipStore interface {
	// AddProduct appends productID to the collection's products unless already present.
	// Returns ErrCollectionNotFound if the collection does not exist.
	AddProduct(ctx context.Context, collectionID, productID model.ID) error

	// RemoveProduct removes productID from the collection's products.
	// Returns ErrCollectionNotFound if the collection does not exist.
	RemoveProduct(ctx context.Context, collectionID, productID model.ID) error
}

// Synchronizer applies membership deltas to the collection side.
type Synchronizer struct {
	store       MembershipStore
	concurrency int
	logger      *slog.Logger
}

// NewSynchronizer creates a Synchronizer. concurrency caps the number of
// collection updates in flight for one call; zero or less means no cap.
func NewSynchronizer(store MembershipStore, concurrency int, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{
		store:       store,
		concurrency: concurrency,
		logger:      logger.With("component", "relation"),
	}
}

type update struct {
	op           perrors.SyncOp
	collectionID model.ID
}

// AddProductToCollections lists productID on every collection in collectionIDs.
func (s *Synchronizer) AddProductToCollections(ctx context.Context, productID model.ID, collectionIDs []model.ID) error {
	return s.run(ctx, productID, updates(perrors.SyncOpAdd, collectionIDs, nil))
}

// RemoveProductFromCollections drops productID from every collection in collectionIDs.
// Collections that no longer exist are skipped.
func (s *Synchronizer) RemoveProductFromCollections(ctx context.Context, productID model.ID, collectionIDs []model.ID) error {
	return s.run(ctx, productID, updates(perrors.SyncOpRemove, collectionIDs, nil))
}

// Apply runs the additions and removals of d as one batch and waits for all of
// them, successful or not, before returning. Failures are reported as a
// *PartialSyncError; updates that succeeded stay applied.
func (s *Synchronizer) Apply(ctx context.Context, productID model.ID, d Delta) error {
	batch := updates(perrors.SyncOpAdd, d.ToAdd, nil)
	batch = updates(perrors.SyncOpRemove, d.ToRemove, batch)
	return s.run(ctx, productID, batch)
}

func updates(op perrors.SyncOp, ids []model.ID, dst []update) []update {
	seen := make(model.IDSet, len(ids))
	for _, id := range ids {
		if seen.Add(id) {
			dst = append(dst, update{op: op, collectionID: id})
		}
	}
	return dst
}

func (s *Synchronizer) run(ctx context.Context, productID model.ID, batch []update) error {
	if len(batch) == 0 {
		return nil
	}

	results := make([]error, len(batch))
	// No derived context: a failing update must not cancel its siblings.
	var g errgroup.Group
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i, u := range batch {
		g.Go(func() error {
			results[i] = s.applyOne(ctx, productID, u)
			return results[i]
		})
	}
	_ = g.Wait()

	var failures []perrors.SyncFailure
	for i, err := range results {
		if err == nil {
			continue
		}
		u := batch[i]
		s.logger.WarnContext(ctx, "Collection membership update failed",
			"op", u.op, "collection_id", u.collectionID, "product_id", productID, "error", err)
		failures = append(failures, perrors.SyncFailure{CollectionID: u.collectionID, Op: u.op, Err: err})
	}
	if len(failures) > 0 {
		return &perrors.PartialSyncError{ProductID: productID, Failures: failures}
	}
	s.logger.DebugContext(ctx, "Collection membership synchronized", "product_id", productID, "updates", len(batch))
	return nil
}

func (s *Synchronizer) applyOne(ctx context.Context, productID model.ID, u update) error {
	switch u.op {
	case perrors.SyncOpAdd:
		return s.store.AddProduct(ctx, u.collectionID, productID)
	default:
		err := s.store.RemoveProduct(ctx, u.collectionID, productID)
		if errors.Is(err, perrors.ErrCollectionNotFound) {
			// Dangling reference: nothing lists the product any more.
			return nil
		}
		return err
	}
}
