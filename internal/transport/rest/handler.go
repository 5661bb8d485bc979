// Package rest provides HTTP handlers for product operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/model"
	"github.com/abgdnv/catalog/internal/service"
	"github.com/abgdnv/catalog/pkg/auth"
	"github.com/abgdnv/catalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Error codes carried in the "code" field of error responses.
const (
	CodeNotFound     = "not_found"
	CodeUnauthorized = "unauthorized"
	CodeInvalidInput = "invalid_input"
	CodePartialSync  = "partial_sync_failure"
	CodeUnexpected   = "unexpected"
	deletedMessage   = "Product deleted"
	maxBodyBytes     = 1 << 20
)

type Handler struct {
	service       service.CatalogService
	callers       auth.CallerResolver
	allowedOrigin string
	logger        *slog.Logger
}

// NewHandler creates a new Handler. allowedOrigin is sent as
// Access-Control-Allow-Origin on product reads. Mutations from callers that
// callers cannot identify are rejected before the request is read.
func NewHandler(service service.CatalogService, callers auth.CallerResolver, allowedOrigin string, logger *slog.Logger) *Handler {
	return &Handler{
		service:       service,
		callers:       callers,
		allowedOrigin: allowedOrigin,
		// request_id is added to every record by the context log handler
		logger: logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes of the catalog service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products/{id}", func(r chi.Router) {
		r.With(
			middleware.SetHeader("Access-Control-Allow-Origin", h.allowedOrigin),
			middleware.SetHeader("Access-Control-Allow-Methods", http.MethodGet),
			middleware.SetHeader("Access-Control-Allow-Headers", "Content-Type"),
		).Get("/", h.GetProduct)
		r.Post("/", h.UpdateProduct)
		r.Put("/", h.UpdateProduct)
		r.Delete("/", h.DeleteProduct)
	})

	r.Get("/healthz", h.HealthCheck)
}

// GetProduct returns the product with its collections expanded.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.logger
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to get product", "ID", id)
	found, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, mLogger, id, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// UpdateProduct replaces the product and returns all collections together with the updated product.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.logger
	if !h.authorized(w, r) {
		return
	}
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	var update service.ProductUpdateDto
	// An empty body decodes to a zero payload which the service rejects.
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&update); err != nil && !errors.Is(err, io.EOF) {
		mLogger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, CodeInvalidInput, "Invalid request body")
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to update product", "ID", id, "collections", len(update.Collections))
	result, err := h.service.UpdateProduct(r.Context(), id, update)
	if err != nil {
		h.respondServiceError(w, r, mLogger, id, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", id, "collections", len(result.Product.Collections))
	web.RespondJSON(w, mLogger, http.StatusOK, result)
}

// DeleteProduct deletes the product and removes it from its collections.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.logger
	if !h.authorized(w, r) {
		return
	}
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.respondServiceError(w, r, mLogger, id, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]string{"message": deletedMessage})
}

// authorized answers 401 when the request carries no caller.
func (h *Handler) authorized(w http.ResponseWriter, r *http.Request) bool {
	if _, ok := h.callers.CallerID(r.Context()); ok {
		return true
	}
	h.logger.WarnContext(r.Context(), "Unauthorized request", "method", r.Method, "path", r.URL.Path)
	web.RespondError(w, h.logger, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
	return false
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, id model.ID, err error) {
	var invalid *perrors.InvalidInputError
	var partial *perrors.PartialSyncError
	switch {
	case errors.Is(err, perrors.ErrUnauthorized):
		mLogger.WarnContext(r.Context(), "Unauthorized request", "ID", id)
		web.RespondError(w, mLogger, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
	case errors.Is(err, perrors.ErrProductNotFound):
		mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, mLogger, http.StatusNotFound, CodeNotFound, fmt.Sprintf("Product with ID %s not found", id))
	case errors.As(err, &invalid):
		mLogger.WarnContext(r.Context(), "Validation errors occurred", "ID", id, "errors", invalid.Fields)
		web.RespondJSON(w, mLogger, http.StatusBadRequest, web.ErrorResponse{
			Error:            "Missing or invalid product fields",
			Code:             CodeInvalidInput,
			ValidationErrors: invalid.Fields,
		})
	case errors.As(err, &partial):
		mLogger.ErrorContext(r.Context(), "Collection membership partially synchronized", "ID", id, "error", err)
		failed := make([]string, 0, len(partial.Failures))
		for _, cid := range partial.CollectionIDs() {
			failed = append(failed, cid.String())
		}
		web.RespondError(w, mLogger, http.StatusInternalServerError, CodePartialSync,
			fmt.Sprintf("Failed to update collections: %s", strings.Join(failed, ", ")))
	default:
		mLogger.ErrorContext(r.Context(), "Unexpected error", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, CodeUnexpected, "Internal server error")
	}
}
