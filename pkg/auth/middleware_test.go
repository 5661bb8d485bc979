package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockVerifier is a mock implementation of the Verifier interface.
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, tokenString string) (jwt.Token, error) {
	args := m.Called(ctx, tokenString)

	var token jwt.Token
	if args.Get(0) != nil {
		token = args.Get(0).(jwt.Token)
	}
	return token, args.Error(1)
}

func TestIdentify(t *testing.T) {
	validToken, err := jwt.NewBuilder().
		Subject("user-123").
		Issuer("test-issuer").
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour)).
		Build()
	require.NoError(t, err)
	noSubject, err := jwt.NewBuilder().Issuer("test-issuer").Build()
	require.NoError(t, err)

	testCases := []struct {
		name         string
		authHeader   string
		setupMock    func(m *MockVerifier)
		expectCaller string
	}{
		{
			name:       "Success - valid bearer token",
			authHeader: "Bearer valid-token",
			setupMock: func(m *MockVerifier) {
				m.On("Verify", mock.Anything, "valid-token").Return(validToken, nil)
			},
			expectCaller: "user-123",
		},
		{
			name:       "Anonymous - no auth header",
			authHeader: "",
			setupMock:  func(m *MockVerifier) {},
		},
		{
			name:       "Anonymous - not a bearer token",
			authHeader: "Basic some-credentials",
			setupMock:  func(m *MockVerifier) {},
		},
		{
			name:       "Anonymous - verifier returns error",
			authHeader: "Bearer invalid-token",
			setupMock: func(m *MockVerifier) {
				m.On("Verify", mock.Anything, "invalid-token").Return(nil, errors.New("signature is invalid"))
			},
		},
		{
			name:       "Anonymous - token without subject",
			authHeader: "Bearer no-sub",
			setupMock: func(m *MockVerifier) {
				m.On("Verify", mock.Anything, "no-sub").Return(noSubject, nil)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			verifier := new(MockVerifier)
			tc.setupMock(verifier)
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))

			nextCalled := false
			var caller string
			var found bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				caller, found = ContextResolver{}.CallerID(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rr := httptest.NewRecorder()

			// when
			Identify(verifier, logger)(next).ServeHTTP(rr, req)

			// then
			assert.True(t, nextCalled, "the request must never be rejected")
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tc.expectCaller != "", found)
			assert.Equal(t, tc.expectCaller, caller)
			verifier.AssertExpectations(t)
		})
	}
}

func TestTrustHeader(t *testing.T) {
	testCases := []struct {
		name         string
		header       string
		expectCaller string
	}{
		{name: "header present", header: "user-42", expectCaller: "user-42"},
		{name: "header blank", header: "   "},
		{name: "header missing"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var caller string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				caller, _ = CallerFromContext(r.Context())
			})
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.header != "" {
				req.Header.Set(XUserID, tc.header)
			}

			TrustHeader(next).ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tc.expectCaller, caller)
		})
	}
}
