// Package errors provides the error taxonomy of the catalog service.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var ErrProductNotFound = errors.New("product not found")
var ErrCollectionNotFound = errors.New("collection not found")

var ErrUnauthorized = errors.New("unauthorized")
var ErrInvalidInput = errors.New("invalid input")

// ErrPartialSync is matched by every *PartialSyncError.
var ErrPartialSync = errors.New("collection membership partially synchronized")

// InvalidInputError lists the payload fields that failed validation, keyed by
// field name with the failed rule as value.
type InvalidInputError struct {
	Fields map[string]string
}

func (e *InvalidInputError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(parts, ", "))
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// SyncOp names the direction of a reverse-side update.
type SyncOp string

const (
	SyncOpAdd    SyncOp = "add"
	SyncOpRemove SyncOp = "remove"
)

// SyncFailure is a single collection update that did not complete.
type SyncFailure struct {
	CollectionID uuid.UUID
	Op           SyncOp
	Err          error
}

// PartialSyncError reports the collection updates that failed while the rest
// of the batch was applied. Nothing is rolled back.
type PartialSyncError struct {
	ProductID uuid.UUID
	Failures  []SyncFailure
}

func (e *PartialSyncError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s for product %s: %d failed", ErrPartialSync, e.ProductID, len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "; %s %s: %v", f.Op, f.CollectionID, f.Err)
	}
	return b.String()
}

func (e *PartialSyncError) Is(target error) bool {
	return target == ErrPartialSync
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *PartialSyncError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// CollectionIDs returns the ids of the collections whose update failed.
func (e *PartialSyncError) CollectionIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(e.Failures))
	for _, f := range e.Failures {
		ids = append(ids, f.CollectionID)
	}
	return ids
}
