package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/voyago/trip-planner/backend/internal/domain"
	"github.com/voyago/trip-planner/backend/internal/middleware"
)

// handleCreateItinerary handles POST /api/itineraries.
func (s *Server) handleCreateItinerary(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := middleware.UserID(r.Context())

	var body createItineraryRequest
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err.Error())
		return
	}

	created, err := s.itineraries.Create(r.Context(), ownerID, body.toCreate())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleGetItinerary handles GET /api/itineraries/{id}.
// Drafts are visible to their owner only; everyone else sees 404.
func (s *Server) handleGetItinerary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		notFound(w, "itinerary not found")
		return
	}

	it, err := s.itineraries.Get(r.Context(), caller(r), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// handleListItineraries handles GET /api/itineraries: the public listing,
// published itineraries only. Supports ?page= and ?limit= query parameters
// (defaults: page=1, limit=20, max=100).
func (s *Server) handleListItineraries(w http.ResponseWriter, r *http.Request) {
	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))

	items, total, err := s.itineraries.ListPublished(r.Context(), params)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pagedResponse[domain.Itinerary]{
		Data: items,
		Pagination: pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// handleListCreatorItineraries handles GET /api/creators/{id}/itineraries.
// Anyone sees the creator's published itineraries; the creator also sees
// their drafts.
func (s *Server) handleListCreatorItineraries(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := pathUUID(r, "id")
	if !ok {
		notFound(w, "creator not found")
		return
	}

	items, err := s.itineraries.ListByCreator(r.Context(), caller(r), creatorID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleListMyItineraries handles GET /api/my/itineraries.
func (s *Server) handleListMyItineraries(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())

	items, err := s.itineraries.ListByCreator(r.Context(), &callerID, callerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleUpdateItinerary handles PUT /api/itineraries/{id}: partial scalar
// overwrite plus nested day/stop reconciliation.
func (s *Server) handleUpdateItinerary(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		notFound(w, "itinerary not found")
		return
	}

	var body updateItineraryRequest
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err.Error())
		return
	}

	updated, err := s.itineraries.Update(r.Context(), callerID, id, body.toUpdate())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handlePublishItinerary handles POST /api/itineraries/{id}/publish.
func (s *Server) handlePublishItinerary(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		notFound(w, "itinerary not found")
		return
	}

	published, err := s.itineraries.Publish(r.Context(), callerID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, published)
}

// handleDeleteItinerary handles DELETE /api/itineraries/{id}.
func (s *Server) handleDeleteItinerary(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())
	id, ok := pathUUID(r, "id")
	if !ok {
		notFound(w, "itinerary not found")
		return
	}

	if err := s.itineraries.Delete(r.Context(), callerID, id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- request/response types -------------------------------------------------

// The nested payload is decoded once here into strongly-typed structs; no
// dynamic maps reach the service layer.

type createItineraryRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Duration    int            `json:"duration"`
	Image       string         `json:"image"`
	Destination string         `json:"destination"`
	Latitude    *float64       `json:"latitude"`
	Longitude   *float64       `json:"longitude"`
	Price       float64        `json:"price"`
	Days        []dayPayload   `json:"days"`
	Photos      []photoPayload `json:"photos"`
}

type updateItineraryRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Duration    *int           `json:"duration"`
	Image       *string        `json:"image"`
	Destination *string        `json:"destination"`
	Latitude    *float64       `json:"latitude"`
	Longitude   *float64       `json:"longitude"`
	Price       *float64       `json:"price"`
	Days        []dayPayload   `json:"days"`
	Photos      []photoPayload `json:"photos"`
}

type dayPayload struct {
	DayNumber   int           `json:"day_number"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Stops       []stopPayload `json:"stops"`
}

type stopPayload struct {
	ID           *uuid.UUID `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	StopType     string     `json:"stop_type"`
	LocationName string     `json:"location_name"`
	Address      string     `json:"address"`
	Latitude     float64    `json:"latitude"`
	Longitude    float64    `json:"longitude"`
	Order        int        `json:"order"`
}

type photoPayload struct {
	Image   string `json:"image"`
	Caption string `json:"caption"`
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type pagedResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination pagination `json:"pagination"`
}

func (b createItineraryRequest) toCreate() domain.ItineraryCreate {
	return domain.ItineraryCreate{
		Name:        b.Name,
		Description: b.Description,
		Duration:    b.Duration,
		Image:       b.Image,
		Destination: b.Destination,
		Latitude:    b.Latitude,
		Longitude:   b.Longitude,
		Price:       b.Price,
		Days:        daySpecs(b.Days),
		Photos:      photoSpecs(b.Photos),
	}
}

func (b updateItineraryRequest) toUpdate() domain.ItineraryUpdate {
	return domain.ItineraryUpdate{
		Name:        b.Name,
		Description: b.Description,
		Duration:    b.Duration,
		Image:       b.Image,
		Destination: b.Destination,
		Latitude:    b.Latitude,
		Longitude:   b.Longitude,
		Price:       b.Price,
		Days:        daySpecs(b.Days),
		Photos:      photoSpecs(b.Photos),
	}
}

func daySpecs(days []dayPayload) []domain.DaySpec {
	if days == nil {
		return nil
	}
	specs := make([]domain.DaySpec, len(days))
	for i, d := range days {
		stops := make([]domain.StopSpec, len(d.Stops))
		for j, st := range d.Stops {
			stops[j] = domain.StopSpec{
				ID:           st.ID,
				Name:         st.Name,
				Description:  st.Description,
				StopType:     domain.StopType(st.StopType),
				LocationName: st.LocationName,
				Address:      st.Address,
				Latitude:     st.Latitude,
				Longitude:    st.Longitude,
				SortOrder:    st.Order,
			}
		}
		specs[i] = domain.DaySpec{
			DayNumber:   d.DayNumber,
			Title:       d.Title,
			Description: d.Description,
			Stops:       stops,
		}
	}
	return specs
}

func photoSpecs(photos []photoPayload) []domain.PhotoSpec {
	specs := make([]domain.PhotoSpec, len(photos))
	for i, p := range photos {
		specs[i] = domain.PhotoSpec{Image: p.Image, Caption: p.Caption}
	}
	return specs
}

// decodeJSON decodes the request body into dst, rejecting empty bodies and
// type mismatches (e.g. a string where an integer belongs) before any
// service call.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case errors.Is(err, io.EOF):
		return errors.New("request body is required")
	case err != nil:
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return errors.New("invalid value for field " + strconv.Quote(typeErr.Field))
		}
		return errors.New("malformed request body")
	}
	return nil
}

// queryInt parses an optional integer query parameter; nil when absent or
// malformed.
func queryInt(r *http.Request, name string) *int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
