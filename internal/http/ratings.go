package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/openride/rideapi/internal/domain"
	"github.com/openride/rideapi/internal/rating"
)

type submitRatingRequest struct {
	Stars   int     `json:"stars"`
	Comment *string `json:"comment"`
}

type ratingResponse struct {
	ID        string    `json:"id"`
	TripID    string    `json:"tripId"`
	Direction string    `json:"direction"`
	Stars     int       `json:"stars"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type raterResponse struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}

type tripRatingResponse struct {
	ratingResponse
	Rater raterResponse `json:"rater"`
}

type ratingSummaryResponse struct {
	Total     int64         `json:"total"`
	Average   float64       `json:"average"`
	Histogram map[int]int64 `json:"histogram"`
}

type paginationResponse struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

type userRatingsResponse struct {
	Summary    ratingSummaryResponse `json:"summary"`
	Ratings    []tripRatingResponse  `json:"ratings"`
	Pagination paginationResponse    `json:"pagination"`
}

type checkRatedResponse struct {
	HasRated bool            `json:"hasRated"`
	Rating   *ratingResponse `json:"rating,omitempty"`
}

func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req submitRatingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	created, err := s.ratings.Submit(r.Context(), actor.ID, chi.URLParam(r, "tripID"), req.Stars, req.Comment)
	if err != nil {
		s.respondRatingError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, toRatingResponse(created))
}

func (s *Server) handleListTripRatings(w http.ResponseWriter, r *http.Request) {
	items, err := s.ratings.ListForTrip(r.Context(), chi.URLParam(r, "tripID"))
	if err != nil {
		s.respondRatingError(w, err)
		return
	}

	resp := make([]tripRatingResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toTripRatingResponse(item))
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"ratings": resp})
}

func (s *Server) handleCheckRated(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	existing, err := s.ratings.CheckRated(r.Context(), actor.ID, chi.URLParam(r, "tripID"))
	if err != nil {
		s.respondRatingError(w, err)
		return
	}

	resp := checkRatedResponse{HasRated: existing != nil}
	if existing != nil {
		converted := toRatingResponse(*existing)
		resp.Rating = &converted
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListUserRatings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	category, err := rating.ParseCategory(query.Get("category"))
	if err != nil {
		s.respondRatingError(w, err)
		return
	}

	page, err := parsePositiveInt(query.Get("page"), 1)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid page value")
		return
	}
	pageSize, err := parsePositiveInt(query.Get("pageSize"), 0)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid pageSize value")
		return
	}

	result, err := s.ratings.ListForUser(r.Context(), chi.URLParam(r, "userID"), category, page, pageSize)
	if err != nil {
		s.respondRatingError(w, err)
		return
	}

	items := make([]tripRatingResponse, 0, len(result.Ratings))
	for _, item := range result.Ratings {
		items = append(items, toTripRatingResponse(item))
	}

	s.respondJSON(w, http.StatusOK, userRatingsResponse{
		Summary: ratingSummaryResponse{
			Total:     result.Summary.Total,
			Average:   result.Summary.Average,
			Histogram: result.Summary.Histogram,
		},
		Ratings: items,
		Pagination: paginationResponse{
			Page:     result.Page,
			PageSize: result.PageSize,
			Total:    result.Summary.Total,
		},
	})
}

// respondRatingError translates the rating error taxonomy into distinct
// caller-facing status/code pairs. Internal failures stay generic.
func (s *Server) respondRatingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rating.ErrInvalidInput):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", errorMessage(err))
	case errors.Is(err, rating.ErrTripNotFound):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Trip not found")
	case errors.Is(err, rating.ErrUserNotFound):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
	case errors.Is(err, rating.ErrTripNotCompleted):
		s.respondError(w, http.StatusConflict, "TRIP_NOT_COMPLETED", "Ratings are only accepted for completed trips")
	case errors.Is(err, rating.ErrNoRatedParty):
		s.respondError(w, http.StatusConflict, "NO_RATED_PARTY", "The rated party for this trip cannot be determined")
	case errors.Is(err, rating.ErrNotParticipant):
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Only trip participants may rate this trip")
	case errors.Is(err, rating.ErrAlreadyRated):
		s.respondError(w, http.StatusConflict, "ALREADY_RATED", "A rating for this trip and direction already exists")
	default:
		s.logger.WithError(err).Error("rating operation failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process rating")
	}
}

// errorMessage strips the package prefix sentinel text for client display.
func errorMessage(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return msg
}

func toRatingResponse(r domain.Rating) ratingResponse {
	return ratingResponse{
		ID:        r.ID,
		TripID:    r.TripID,
		Direction: string(r.Direction),
		Stars:     r.Stars,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func toTripRatingResponse(r domain.TripRating) tripRatingResponse {
	return tripRatingResponse{
		ratingResponse: toRatingResponse(r.Rating),
		Rater: raterResponse{
			ID:          r.Rater.ID,
			DisplayName: r.Rater.DisplayName,
			AvatarURL:   r.Rater.AvatarURL,
		},
	}
}

func parsePositiveInt(raw string, fallback int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback, nil
	}
	val, err := strconv.Atoi(trimmed)
	if err != nil || val < 1 {
		return 0, errors.New("must be a positive integer")
	}
	return val, nil
}
