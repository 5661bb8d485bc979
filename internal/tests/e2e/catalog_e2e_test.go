// Package e2e drives the catalog HTTP API end to end. The application handler
// runs in an httptest.Server over the in-memory store, callers are identified
// by the X-User-Id header, and every test starts from a freshly seeded catalog.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/abgdnv/catalog/internal/app"
	"github.com/abgdnv/catalog/internal/config"
	"github.com/abgdnv/catalog/internal/model"
	"github.com/abgdnv/catalog/internal/service"
	"github.com/abgdnv/catalog/internal/store"
	"github.com/abgdnv/catalog/pkg/auth"
	"github.com/abgdnv/catalog/pkg/messaging"
	"github.com/abgdnv/catalog/pkg/web"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	productURL    = "/api/products/"
	allowedOrigin = "https://shop.example.com"
	callerID      = "admin-1"
)

type CatalogE2ESuite struct {
	suite.Suite
	ctx        context.Context
	logger     *slog.Logger
	stores     store.Stores
	server     *httptest.Server
	httpClient *http.Client

	// seeded per test
	product model.ID
	summer  model.ID
	winter  model.ID
	sale    model.ID
}

func testConfig() *config.Config {
	var cfg config.Config
	cfg.CORS.AllowedOrigin = allowedOrigin
	cfg.Sync.Concurrency = 2
	return &cfg
}

func (s *CatalogE2ESuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// SetupTest starts a server over a fresh store holding one product in the
// summer and winter collections plus an empty sale collection.
func (s *CatalogE2ESuite) SetupTest() {
	s.stores = store.NewMemoryStore()
	s.summer = s.createCollection("Summer")
	s.winter = s.createCollection("Winter")
	s.sale = s.createCollection("Sale")

	p, err := s.stores.Products.Create(s.ctx, model.ProductFields{
		Title:       "Linen shirt",
		Description: "Loose fit",
		Media:       []string{"https://cdn.example.com/shirt.jpg"},
		Category:    "shirts",
		Collections: []model.ID{s.summer, s.winter},
		Price:       decimal.RequireFromString("49.90"),
		Expense:     decimal.RequireFromString("12.50"),
	})
	require.NoError(s.T(), err)
	s.product = p.ID
	for _, c := range []model.ID{s.summer, s.winter} {
		require.NoError(s.T(), s.stores.Collections.AddProduct(s.ctx, c, p.ID))
	}

	deps := app.SetupDependencies(s.stores, auth.TrustHeader, messaging.NoopPublisher{}, nil, testConfig(), s.logger)
	s.server = httptest.NewServer(app.SetupHttpHandler(deps))
	s.httpClient = s.server.Client()
}

func (s *CatalogE2ESuite) TearDownTest() {
	if s.server != nil {
		s.server.Close()
	}
}

func TestCatalogE2E(t *testing.T) {
	suite.Run(t, new(CatalogE2ESuite))
}

func (s *CatalogE2ESuite) TestGetProduct() {
	// when
	resp := s.do(http.MethodGet, s.product.String(), "", nil)
	defer closeBody(resp)

	// then
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal(allowedOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
	s.Equal(http.MethodGet, resp.Header.Get("Access-Control-Allow-Methods"))
	s.NotEmpty(resp.Header.Get("X-Request-Id"))

	var dto service.ProductDto
	s.decode(resp, &dto)
	s.Equal("Linen shirt", dto.Title)
	s.True(decimal.RequireFromString("49.90").Equal(dto.Price.Decimal))
	s.Require().Len(dto.Collections, 2)
	s.Equal(s.summer.String(), dto.Collections[0].ID)
	s.Equal(s.winter.String(), dto.Collections[1].ID)
}

func (s *CatalogE2ESuite) TestGetProduct_Errors() {
	testCases := []struct {
		name       string
		id         string
		wantStatus int
		wantCode   string
	}{
		{name: "unknown id", id: uuid.NewString(), wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "malformed id", id: "not-a-uuid", wantStatus: http.StatusBadRequest, wantCode: "invalid_input"},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			resp := s.do(http.MethodGet, tc.id, "", nil)
			defer closeBody(resp)

			s.Equal(tc.wantStatus, resp.StatusCode)
			var body web.ErrorResponse
			s.decode(resp, &body)
			s.Equal(tc.wantCode, body.Code)
		})
	}
}

func (s *CatalogE2ESuite) TestUpdateProduct_MovesMembership() {
	// given
	payload := s.payload(s.winter, s.sale)

	// when
	resp := s.do(http.MethodPost, s.product.String(), callerID, payload)
	defer closeBody(resp)

	// then
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var result service.UpdateResultDto
	s.decode(resp, &result)
	s.Len(result.Collections, 3)
	s.Equal("Linen shirt v2", result.Product.Title)
	s.Require().Len(result.Product.Collections, 2)
	s.Equal(s.winter.String(), result.Product.Collections[0].ID)
	s.Equal(s.sale.String(), result.Product.Collections[1].ID)

	s.assertMembers(s.summer)
	s.assertMembers(s.winter, s.product)
	s.assertMembers(s.sale, s.product)
}

func (s *CatalogE2ESuite) TestUpdateProduct_PutIsAccepted() {
	resp := s.do(http.MethodPut, s.product.String(), callerID, s.payload())
	defer closeBody(resp)

	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.assertMembers(s.summer)
	s.assertMembers(s.winter)

	stored, err := s.stores.Products.FindByID(s.ctx, s.product)
	s.Require().NoError(err)
	s.Empty(stored.Collections)
}

func (s *CatalogE2ESuite) TestUpdateProduct_Errors() {
	invalid := s.payload()
	invalid["media"] = []string{}
	invalid["price"] = -1

	testCases := []struct {
		name       string
		id         string
		caller     string
		body       any
		wantStatus int
		wantCode   string
	}{
		{name: "anonymous caller", id: s.product.String(), body: s.payload(), wantStatus: http.StatusUnauthorized, wantCode: "unauthorized"},
		{name: "unknown product", id: uuid.NewString(), caller: callerID, body: s.payload(), wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "invalid fields", id: s.product.String(), caller: callerID, body: invalid, wantStatus: http.StatusBadRequest, wantCode: "invalid_input"},
		{name: "anonymous caller with malformed json", id: s.product.String(), body: "{", wantStatus: http.StatusUnauthorized, wantCode: "unauthorized"},
		{name: "malformed json", id: s.product.String(), caller: callerID, body: "{", wantStatus: http.StatusBadRequest, wantCode: "invalid_input"},
		{name: "collection does not exist", id: s.product.String(), caller: callerID, body: s.payload(s.summer, uuid.New()), wantStatus: http.StatusInternalServerError, wantCode: "partial_sync_failure"},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			resp := s.do(http.MethodPost, tc.id, tc.caller, tc.body)
			defer closeBody(resp)

			s.Equal(tc.wantStatus, resp.StatusCode)
			var body web.ErrorResponse
			s.decode(resp, &body)
			s.Equal(tc.wantCode, body.Code)
		})
	}

	// the failed requests left the product untouched
	stored, err := s.stores.Products.FindByID(s.ctx, s.product)
	s.Require().NoError(err)
	s.Equal("Linen shirt", stored.Title)
	s.Equal([]model.ID{s.summer, s.winter}, stored.Collections)
}

func (s *CatalogE2ESuite) TestDeleteProduct() {
	// when
	resp := s.do(http.MethodDelete, s.product.String(), callerID, nil)
	defer closeBody(resp)

	// then
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var body map[string]string
	s.decode(resp, &body)
	s.Equal("Product deleted", body["message"])

	s.assertMembers(s.summer)
	s.assertMembers(s.winter)

	again := s.do(http.MethodGet, s.product.String(), "", nil)
	defer closeBody(again)
	s.Equal(http.StatusNotFound, again.StatusCode)
}

func (s *CatalogE2ESuite) TestDeleteProduct_Unauthorized() {
	resp := s.do(http.MethodDelete, s.product.String(), "", nil)
	defer closeBody(resp)

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.assertMembers(s.summer, s.product)
}

// --------------------------------------------------------------------------
// ------------------------------- helpers ----------------------------------
// --------------------------------------------------------------------------

func (s *CatalogE2ESuite) createCollection(title string) model.ID {
	s.T().Helper()
	c, err := s.stores.Collections.Create(s.ctx, model.CollectionFields{Title: title})
	require.NoError(s.T(), err)
	return c.ID
}

// payload is a valid update body placing the product in collections.
func (s *CatalogE2ESuite) payload(collections ...model.ID) map[string]any {
	ids := make([]string, 0, len(collections))
	for _, c := range collections {
		ids = append(ids, c.String())
	}
	return map[string]any{
		"title":       "Linen shirt v2",
		"description": "Loose fit",
		"media":       []string{"https://cdn.example.com/shirt.jpg"},
		"category":    "shirts",
		"collections": ids,
		"tags":        []string{"linen"},
		"price":       59.90,
		"expense":     12.50,
	}
}

// do sends a request to /api/products/{id}. A string body is sent verbatim.
func (s *CatalogE2ESuite) do(method, id, caller string, body any) *http.Response {
	s.T().Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(s.ctx, method, s.server.URL+productURL+id, reader)
	require.NoError(s.T(), err)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set(auth.XUserID, caller)
	}
	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	return resp
}

func (s *CatalogE2ESuite) decode(resp *http.Response, v any) {
	s.T().Helper()
	require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(v))
}

func (s *CatalogE2ESuite) assertMembers(collectionID model.ID, want ...model.ID) {
	s.T().Helper()
	found, err := s.stores.Collections.FindByIDs(s.ctx, []model.ID{collectionID})
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.ElementsMatch(want, found[0].Products)
}

func closeBody(resp *http.Response) {
	_ = resp.Body.Close()
}
