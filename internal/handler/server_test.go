package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/voyago/trip-planner/backend/internal/domain"
	"github.com/voyago/trip-planner/backend/internal/handler"
	"github.com/voyago/trip-planner/backend/internal/service"
)

// The servicer mocks follow the function-field pattern: each method is a
// function field, and tests set only the ones they expect to be called.

type mockItineraryService struct {
	create        func(ctx context.Context, ownerID uuid.UUID, in domain.ItineraryCreate) (domain.Itinerary, error)
	get           func(ctx context.Context, callerID *uuid.UUID, id uuid.UUID) (domain.Itinerary, error)
	listPublished func(ctx context.Context, p domain.PaginationParams) ([]domain.Itinerary, int64, error)
	listByCreator func(ctx context.Context, callerID *uuid.UUID, creatorID uuid.UUID) ([]domain.Itinerary, error)
	update        func(ctx context.Context, callerID uuid.UUID, id uuid.UUID, in domain.ItineraryUpdate) (domain.Itinerary, error)
	publish       func(ctx context.Context, callerID uuid.UUID, id uuid.UUID) (domain.Itinerary, error)
	delete        func(ctx context.Context, callerID uuid.UUID, id uuid.UUID) error
}

var _ handler.ItineraryServicer = (*mockItineraryService)(nil)

func (m *mockItineraryService) Create(ctx context.Context, ownerID uuid.UUID, in domain.ItineraryCreate) (domain.Itinerary, error) {
	return m.create(ctx, ownerID, in)
}
func (m *mockItineraryService) Get(ctx context.Context, callerID *uuid.UUID, id uuid.UUID) (domain.Itinerary, error) {
	return m.get(ctx, callerID, id)
}
func (m *mockItineraryService) ListPublished(ctx context.Context, p domain.PaginationParams) ([]domain.Itinerary, int64, error) {
	return m.listPublished(ctx, p)
}
func (m *mockItineraryService) ListByCreator(ctx context.Context, callerID *uuid.UUID, creatorID uuid.UUID) ([]domain.Itinerary, error) {
	return m.listByCreator(ctx, callerID, creatorID)
}
func (m *mockItineraryService) Update(ctx context.Context, callerID uuid.UUID, id uuid.UUID, in domain.ItineraryUpdate) (domain.Itinerary, error) {
	return m.update(ctx, callerID, id, in)
}
func (m *mockItineraryService) Publish(ctx context.Context, callerID uuid.UUID, id uuid.UUID) (domain.Itinerary, error) {
	return m.publish(ctx, callerID, id)
}
func (m *mockItineraryService) Delete(ctx context.Context, callerID uuid.UUID, id uuid.UUID) error {
	return m.delete(ctx, callerID, id)
}

type mockReviewService struct {
	create          func(ctx context.Context, callerID uuid.UUID, itineraryID uuid.UUID, rating int, comment string) (domain.Review, error)
	listByItinerary func(ctx context.Context, callerID *uuid.UUID, itineraryID uuid.UUID) ([]domain.Review, error)
	update          func(ctx context.Context, callerID uuid.UUID, itineraryID, reviewID uuid.UUID, rating int, comment string) (domain.Review, error)
	delete          func(ctx context.Context, callerID uuid.UUID, itineraryID, reviewID uuid.UUID) error
}

var _ handler.ReviewServicer = (*mockReviewService)(nil)

func (m *mockReviewService) Create(ctx context.Context, callerID uuid.UUID, itineraryID uuid.UUID, rating int, comment string) (domain.Review, error) {
	return m.create(ctx, callerID, itineraryID, rating, comment)
}
func (m *mockReviewService) ListByItinerary(ctx context.Context, callerID *uuid.UUID, itineraryID uuid.UUID) ([]domain.Review, error) {
	return m.listByItinerary(ctx, callerID, itineraryID)
}
func (m *mockReviewService) Update(ctx context.Context, callerID uuid.UUID, itineraryID, reviewID uuid.UUID, rating int, comment string) (domain.Review, error) {
	return m.update(ctx, callerID, itineraryID, reviewID, rating, comment)
}
func (m *mockReviewService) Delete(ctx context.Context, callerID uuid.UUID, itineraryID, reviewID uuid.UUID) error {
	return m.delete(ctx, callerID, itineraryID, reviewID)
}

type mockPhotoService struct {
	add             func(ctx context.Context, callerID uuid.UUID, itineraryID uuid.UUID, spec domain.PhotoSpec) (domain.ItineraryPhoto, error)
	listByItinerary func(ctx context.Context, callerID *uuid.UUID, itineraryID uuid.UUID) ([]domain.ItineraryPhoto, error)
	remove          func(ctx context.Context, callerID uuid.UUID, itineraryID, photoID uuid.UUID) error
}

var _ handler.PhotoServicer = (*mockPhotoService)(nil)

func (m *mockPhotoService) Add(ctx context.Context, callerID uuid.UUID, itineraryID uuid.UUID, spec domain.PhotoSpec) (domain.ItineraryPhoto, error) {
	return m.add(ctx, callerID, itineraryID, spec)
}
func (m *mockPhotoService) ListByItinerary(ctx context.Context, callerID *uuid.UUID, itineraryID uuid.UUID) ([]domain.ItineraryPhoto, error) {
	return m.listByItinerary(ctx, callerID, itineraryID)
}
func (m *mockPhotoService) Remove(ctx context.Context, callerID uuid.UUID, itineraryID, photoID uuid.UUID) error {
	return m.remove(ctx, callerID, itineraryID, photoID)
}

// mockAuthService doubles as the token verifier for the auth middleware:
// the bearer token is simply the user's UUID string.
type mockAuthService struct {
	register func(ctx context.Context, in service.RegisterInput) (domain.User, error)
	login    func(ctx context.Context, email, password string) (domain.User, string, error)
}

var _ handler.AuthServicer = (*mockAuthService)(nil)

func (m *mockAuthService) Register(ctx context.Context, in service.RegisterInput) (domain.User, error) {
	return m.register(ctx, in)
}
func (m *mockAuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	return m.login(ctx, email, password)
}
func (m *mockAuthService) VerifyToken(token string) (uuid.UUID, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return uuid.Nil, errors.New("invalid token")
	}
	return id, nil
}

type mockResetService struct {
	request  func(ctx context.Context, email string) error
	validate func(ctx context.Context, token string) error
	confirm  func(ctx context.Context, token, newPassword string) error
}

var _ handler.PasswordResetServicer = (*mockResetService)(nil)

func (m *mockResetService) Request(ctx context.Context, email string) error {
	return m.request(ctx, email)
}
func (m *mockResetService) Validate(ctx context.Context, token string) error {
	return m.validate(ctx, token)
}
func (m *mockResetService) Confirm(ctx context.Context, token, newPassword string) error {
	return m.confirm(ctx, token, newPassword)
}

// mocks bundles the five servicer mocks behind one constructor so tests only
// fill in what they use.
type mocks struct {
	itineraries mockItineraryService
	reviews     mockReviewService
	photos      mockPhotoService
	auth        mockAuthService
	resets      mockResetService
}

func newTestServer(m *mocks) http.Handler {
	return handler.NewServer(&m.itineraries, &m.reviews, &m.photos, &m.auth, &m.resets).Routes()
}

// doJSON performs a request with an optional JSON body and optional bearer
// token (the caller's UUID string; see mockAuthService.VerifyToken).
func doJSON(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// doRaw is doJSON with a raw body string, for malformed-payload tests.
func doRaw(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// errorCode digs the error.code field out of a response body.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}
