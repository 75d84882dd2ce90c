package handler

import (
	"net/http"

	"github.com/voyago/trip-planner/backend/internal/middleware"
)

// reviewRequest is the body for review create and update. Rating is a bare
// int so non-integer JSON ("abc", 4.5) fails at decode with a 400, before
// the service layer runs.
type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// handleCreateReview handles POST /api/itineraries/{id}/reviews.
// One review per (user, itinerary); a second attempt yields 409.
func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	itineraryID, ok := pathUUID(r, "id")
	if !ok {
		notFound(w, "itinerary not found")
		return
	}

	var body reviewRequest
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err.Error())
		return
	}

	created, err := s.reviews.Create(r.Context(), callerID, itineraryID, body.Rating, body.Comment)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleListReviews handles GET /api/itineraries/{id}/reviews, newest first.
func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	itineraryID, ok := pathUUID(r, "id")
	if !ok {
		notFound(w, "itinerary not found")
		return
	}

	reviews, err := s.reviews.ListByItinerary(r.Context(), caller(r), itineraryID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// handleUpdateReview handles PUT /api/itineraries/{id}/reviews/{reviewID}.
// Author-only.
func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	itineraryID, ok := pathUUID(r, "id")
	if !ok {
		notFound(w, "itinerary not found")
		return
	}
	reviewID, ok := pathUUID(r, "reviewID")
	if !ok {
		notFound(w, "review not found")
		return
	}

	var body reviewRequest
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err.Error())
		return
	}

	updated, err := s.reviews.Update(r.Context(), callerID, itineraryID, reviewID, body.Rating, body.Comment)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteReview handles DELETE /api/itineraries/{id}/reviews/{reviewID}.
// Author-only.
func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	itineraryID, ok := pathUUID(r, "id")
	if !ok {
		notFound(w, "itinerary not found")
		return
	}
	reviewID, ok := pathUUID(r, "reviewID")
	if !ok {
		notFound(w, "review not found")
		return
	}

	if err := s.reviews.Delete(r.Context(), callerID, itineraryID, reviewID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
