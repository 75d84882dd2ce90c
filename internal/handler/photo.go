package handler

import (
	"net/http"

	"github.com/voyago/trip-planner/backend/internal/domain"
	"github.com/voyago/trip-planner/backend/internal/middleware"
)

// handleAddPhoto handles POST /api/itineraries/{id}/photos. Owner-only.
func (s *Server) handleAddPhoto(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	itineraryID, ok := pathUUID(r, "id")
	if !ok {
		notFound(w, "itinerary not found")
		return
	}

	var body photoPayload
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err.Error())
		return
	}

	created, err := s.photos.Add(r.Context(), callerID, itineraryID, domain.PhotoSpec{
		Image:   body.Image,
		Caption: body.Caption,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleListPhotos handles GET /api/itineraries/{id}/photos.
func (s *Server) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	itineraryID, ok := pathUUID(r, "id")
	if !ok {
		notFound(w, "itinerary not found")
		return
	}

	photos, err := s.photos.ListByItinerary(r.Context(), caller(r), itineraryID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, photos)
}

// handleDeletePhoto handles DELETE /api/itineraries/{id}/photos/{photoID}.
// Owner-only.
func (s *Server) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	itineraryID, ok := pathUUID(r, "id")
	if !ok {
		notFound(w, "itinerary not found")
		return
	}
	photoID, ok := pathUUID(r, "photoID")
	if !ok {
		notFound(w, "photo not found")
		return
	}

	if err := s.photos.Remove(r.Context(), callerID, itineraryID, photoID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
