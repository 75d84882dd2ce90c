// Package handler implements the HTTP handlers for the trip planner API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (auth.go, itinerary.go, review.go, ...) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/voyago/trip-planner/backend/internal/domain"
	"github.com/voyago/trip-planner/backend/internal/middleware"
	"github.com/voyago/trip-planner/backend/internal/service"
)

// The servicer interfaces are defined here, in the consumer package,
// following the Go convention: "accept interfaces, return concrete types".
// Handler tests inject mocks without touching the database or service layer.

// ItineraryServicer defines the aggregate operations the itinerary handler
// depends on.
type ItineraryServicer interface {
	Create(ctx context.Context, ownerID uuid.UUID, in domain.ItineraryCreate) (domain.Itinerary, error)
	Get(ctx context.Context, callerID *uuid.UUID, id uuid.UUID) (domain.Itinerary, error)
	ListPublished(ctx context.Context, p domain.PaginationParams) ([]domain.Itinerary, int64, error)
	ListByCreator(ctx context.Context, callerID *uuid.UUID, creatorID uuid.UUID) ([]domain.Itinerary, error)
	Update(ctx context.Context, callerID uuid.UUID, id uuid.UUID, in domain.ItineraryUpdate) (domain.Itinerary, error)
	Publish(ctx context.Context, callerID uuid.UUID, id uuid.UUID) (domain.Itinerary, error)
	Delete(ctx context.Context, callerID uuid.UUID, id uuid.UUID) error
}

// ReviewServicer defines the review operations the review handler depends on.
type ReviewServicer interface {
	Create(ctx context.Context, callerID uuid.UUID, itineraryID uuid.UUID, rating int, comment string) (domain.Review, error)
	ListByItinerary(ctx context.Context, callerID *uuid.UUID, itineraryID uuid.UUID) ([]domain.Review, error)
	Update(ctx context.Context, callerID uuid.UUID, itineraryID, reviewID uuid.UUID, rating int, comment string) (domain.Review, error)
	Delete(ctx context.Context, callerID uuid.UUID, itineraryID, reviewID uuid.UUID) error
}

// PhotoServicer defines the photo operations the photo handler depends on.
type PhotoServicer interface {
	Add(ctx context.Context, callerID uuid.UUID, itineraryID uuid.UUID, spec domain.PhotoSpec) (domain.ItineraryPhoto, error)
	ListByItinerary(ctx context.Context, callerID *uuid.UUID, itineraryID uuid.UUID) ([]domain.ItineraryPhoto, error)
	Remove(ctx context.Context, callerID uuid.UUID, itineraryID, photoID uuid.UUID) error
}

// AuthServicer defines the identity operations the auth handler depends on.
type AuthServicer interface {
	Register(ctx context.Context, in service.RegisterInput) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, string, error)
	VerifyToken(token string) (uuid.UUID, error)
}

// PasswordResetServicer defines the password-reset flow operations.
type PasswordResetServicer interface {
	Request(ctx context.Context, email string) error
	Validate(ctx context.Context, token string) error
	Confirm(ctx context.Context, token, newPassword string) error
}

// Server holds the handler dependencies for all API endpoints.
// Wire it in main.go via NewServer and mount Routes on the root router.
type Server struct {
	itineraries ItineraryServicer
	reviews     ReviewServicer
	photos      PhotoServicer
	auth        AuthServicer
	resets      PasswordResetServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(itineraries ItineraryServicer, reviews ReviewServicer, photos PhotoServicer, auth AuthServicer, resets PasswordResetServicer) *Server {
	return &Server{
		itineraries: itineraries,
		reviews:     reviews,
		photos:      photos,
		auth:        auth,
		resets:      resets,
	}
}

// Routes builds the chi router for the full API surface.
// Reads carry OptionalAuth so owners see their own drafts; mutations sit
// behind RequireAuth.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)

		r.Post("/password-reset/request", s.handleResetRequest)
		r.Post("/password-reset/validate", s.handleResetValidate)
		r.Post("/password-reset/confirm", s.handleResetConfirm)

		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(s.auth))

			r.Get("/itineraries", s.handleListItineraries)
			r.Get("/itineraries/{id}", s.handleGetItinerary)
			r.Get("/itineraries/{id}/reviews", s.handleListReviews)
			r.Get("/itineraries/{id}/photos", s.handleListPhotos)
			r.Get("/creators/{id}/itineraries", s.handleListCreatorItineraries)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.auth))

			r.Get("/my/itineraries", s.handleListMyItineraries)
			r.Post("/itineraries", s.handleCreateItinerary)
			r.Put("/itineraries/{id}", s.handleUpdateItinerary)
			r.Delete("/itineraries/{id}", s.handleDeleteItinerary)
			r.Post("/itineraries/{id}/publish", s.handlePublishItinerary)

			r.Post("/itineraries/{id}/photos", s.handleAddPhoto)
			r.Delete("/itineraries/{id}/photos/{photoID}", s.handleDeletePhoto)

			r.Post("/itineraries/{id}/reviews", s.handleCreateReview)
			r.Put("/itineraries/{id}/reviews/{reviewID}", s.handleUpdateReview)
			r.Delete("/itineraries/{id}/reviews/{reviewID}", s.handleDeleteReview)
		})
	})

	return r
}

// pathUUID parses a UUID path parameter. The bool is false when the value is
// missing or malformed; callers respond 404 in that case, because a
// non-UUID never names an existing resource.
func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// caller returns the authenticated user's ID, or nil on anonymous requests.
func caller(r *http.Request) *uuid.UUID {
	if id, ok := middleware.UserID(r.Context()); ok {
		return &id
	}
	return nil
}
