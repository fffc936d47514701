package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/openride/rideapi/internal/domain"
	"github.com/openride/rideapi/internal/repository"
)

type tripCreateRequest struct {
	PickupAddress  string `json:"pickupAddress"`
	DropoffAddress string `json:"dropoffAddress"`
}

type tripResponse struct {
	ID             string     `json:"id"`
	PassengerID    string     `json:"passengerId"`
	DriverID       *string    `json:"driverId,omitempty"`
	Status         string     `json:"status"`
	PickupAddress  string     `json:"pickupAddress"`
	DropoffAddress string     `json:"dropoffAddress"`
	RequestedAt    time.Time  `json:"requestedAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req tripCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.PickupAddress) == "" || strings.TrimSpace(req.DropoffAddress) == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "pickupAddress and dropoffAddress are required")
		return
	}

	trip, err := s.repo.Trips.Create(r.Context(), repository.TripCreateParams{
		ID:             uuid.NewString(),
		PassengerID:    actor.ID,
		PickupAddress:  strings.TrimSpace(req.PickupAddress),
		DropoffAddress: strings.TrimSpace(req.DropoffAddress),
	})
	if err != nil {
		s.logger.WithError(err).Error("create trip failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create trip")
		return
	}

	s.respondJSON(w, http.StatusCreated, toTripResponse(trip))
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.repo.Trips.GetByID(r.Context(), chi.URLParam(r, "tripID"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Trip not found")
			return
		}
		s.logger.WithError(err).Error("fetch trip failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch trip")
		return
	}
	s.respondJSON(w, http.StatusOK, toTripResponse(trip))
}

func (s *Server) handleAcceptTrip(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}
	tripID := chi.URLParam(r, "tripID")

	if _, err := s.repo.Users.GetDriverProfile(r.Context(), actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Only registered drivers may accept trips")
			return
		}
		s.logger.WithError(err).Error("fetch driver profile failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to accept trip")
		return
	}

	trip, err := s.repo.Trips.GetByID(r.Context(), tripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Trip not found")
			return
		}
		s.logger.WithError(err).Error("fetch trip failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to accept trip")
		return
	}
	if trip.Status != domain.TripRequested {
		s.respondError(w, http.StatusConflict, "INVALID_STATE", "Trip is not open for acceptance")
		return
	}

	// A concurrent acceptance can still win between the check and the
	// guarded update; both paths end up here.
	accepted, err := s.repo.Trips.Accept(r.Context(), tripID, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusConflict, "INVALID_STATE", "Trip is not open for acceptance")
			return
		}
		s.logger.WithError(err).Error("accept trip failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to accept trip")
		return
	}

	s.respondJSON(w, http.StatusOK, toTripResponse(accepted))
}

func (s *Server) handleCompleteTrip(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}
	tripID := chi.URLParam(r, "tripID")

	trip, err := s.repo.Trips.GetByID(r.Context(), tripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Trip not found")
			return
		}
		s.logger.WithError(err).Error("fetch trip failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to complete trip")
		return
	}
	if trip.DriverID == nil || *trip.DriverID != actor.ID {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Only the assigned driver may complete this trip")
		return
	}
	if trip.Status != domain.TripInProgress {
		s.respondError(w, http.StatusConflict, "INVALID_STATE", "Trip is not in progress")
		return
	}

	completed, err := s.repo.Trips.Complete(r.Context(), tripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusConflict, "INVALID_STATE", "Trip is not in progress")
			return
		}
		s.logger.WithError(err).Error("complete trip failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to complete trip")
		return
	}

	s.respondJSON(w, http.StatusOK, toTripResponse(completed))
}

func toTripResponse(trip domain.Trip) tripResponse {
	return tripResponse{
		ID:             trip.ID,
		PassengerID:    trip.PassengerID,
		DriverID:       trip.DriverID,
		Status:         string(trip.Status),
		PickupAddress:  trip.PickupAddress,
		DropoffAddress: trip.DropoffAddress,
		RequestedAt:    trip.RequestedAt,
		CompletedAt:    trip.CompletedAt,
	}
}
