package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// The types in this file are the strongly-typed write payloads for the
// aggregate reconciler. They are decoded once at the HTTP boundary and passed
// through the service layer unchanged; no ad-hoc maps cross layer boundaries.

// ItineraryCreate carries the fields for a new itinerary plus its optional
// nested day specifications.
type ItineraryCreate struct {
	Name        string
	Description string
	Duration    int
	Image       string
	Destination string
	Latitude    *float64
	Longitude   *float64
	Price       float64
	Days        []DaySpec
	Photos      []PhotoSpec
}

// ItineraryUpdate is a partial update: nil scalar pointers mean "leave
// unchanged". Days nil means "leave days untouched"; Days non-nil means
// "reconcile days against this list" (upsert-only — existing days not
// mentioned are never deleted). Photos are append-only.
type ItineraryUpdate struct {
	Name        *string
	Description *string
	Duration    *int
	Image       *string
	Destination *string
	Latitude    *float64
	Longitude   *float64
	Price       *float64
	Days        []DaySpec
	Photos      []PhotoSpec
}

// DaySpec describes one day in a nested write. Reconciliation matches on
// DayNumber: an existing day with the same number is overwritten in place,
// otherwise a new day is created.
type DaySpec struct {
	DayNumber   int
	Title       string
	Description string
	Stops       []StopSpec
}

// StopSpec describes one stop in a nested write. When ID is set and resolves
// to a stop owned by the target day, that stop is overwritten in place; when
// ID is nil or resolves under a different day, a new stop is created (stops
// are never moved between days).
//
// LocationName defaulting: when empty, Address is used if present, otherwise
// a synthetic name is derived from the coordinates.
type StopSpec struct {
	ID           *uuid.UUID
	Name         string
	Description  string
	StopType     StopType
	LocationName string
	Address      string
	Latitude     float64
	Longitude    float64
	SortOrder    int
}

// PhotoSpec describes one photo to attach to an itinerary.
type PhotoSpec struct {
	Image   string
	Caption string
}

// ResolveLocationName returns the location name for the stop, applying the
// defaulting rule: explicit name wins, then address, then a synthetic
// "Location: {lat}, {lng}" built from the coordinates.
func (s StopSpec) ResolveLocationName() string {
	if s.LocationName != "" {
		return s.LocationName
	}
	if s.Address != "" {
		return s.Address
	}
	return fmt.Sprintf("Location: %v, %v", s.Latitude, s.Longitude)
}
