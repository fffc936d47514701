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

type driverProfileRequest struct {
	LicensePlate *string `json:"licensePlate"`
	VehicleModel *string `json:"vehicleModel"`
}

type userCreateRequest struct {
	DisplayName string                `json:"displayName"`
	AvatarURL   *string               `json:"avatarUrl"`
	Driver      *driverProfileRequest `json:"driver"`
}

type aggregateResponse struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

type driverProfileResponse struct {
	LicensePlate *string           `json:"licensePlate,omitempty"`
	VehicleModel *string           `json:"vehicleModel,omitempty"`
	Rating       aggregateResponse `json:"rating"`
}

type userResponse struct {
	ID              string                 `json:"id"`
	DisplayName     string                 `json:"displayName"`
	AvatarURL       *string                `json:"avatarUrl,omitempty"`
	PassengerRating aggregateResponse      `json:"passengerRating"`
	Driver          *driverProfileResponse `json:"driver,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "displayName is required")
		return
	}

	tx, err := s.store.Pool().Begin(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("begin user transaction failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user")
		return
	}
	defer func() { _ = tx.Rollback(r.Context()) }()

	repo := s.repo.WithTx(tx)
	user, err := repo.Users.Create(r.Context(), repository.UserCreateParams{
		ID:          uuid.NewString(),
		DisplayName: strings.TrimSpace(req.DisplayName),
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		s.logger.WithError(err).Error("create user failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user")
		return
	}

	var driver *domain.Driver
	if req.Driver != nil {
		created, err := repo.Users.CreateDriverProfile(r.Context(), repository.DriverProfileParams{
			UserID:       user.ID,
			LicensePlate: req.Driver.LicensePlate,
			VehicleModel: req.Driver.VehicleModel,
		})
		if err != nil {
			s.logger.WithError(err).Error("create driver profile failed")
			s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user")
			return
		}
		driver = &created
	}

	if err := tx.Commit(r.Context()); err != nil {
		s.logger.WithError(err).Error("commit user transaction failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user")
		return
	}

	s.respondJSON(w, http.StatusCreated, toUserResponse(user, driver))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	user, err := s.repo.Users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		s.logger.WithError(err).Error("fetch user failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch user")
		return
	}

	var driver *domain.Driver
	if profile, err := s.repo.Users.GetDriverProfile(r.Context(), userID); err == nil {
		driver = &profile
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.WithError(err).Error("fetch driver profile failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch user")
		return
	}

	s.respondJSON(w, http.StatusOK, toUserResponse(user, driver))
}

func toUserResponse(user domain.User, driver *domain.Driver) userResponse {
	resp := userResponse{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		PassengerRating: aggregateResponse{
			Average: user.Passenger.Average,
			Count:   user.Passenger.Count,
		},
		CreatedAt: user.CreatedAt,
	}
	if driver != nil {
		resp.Driver = &driverProfileResponse{
			LicensePlate: driver.LicensePlate,
			VehicleModel: driver.VehicleModel,
			Rating: aggregateResponse{
				Average: driver.Rating.Average,
				Count:   driver.Rating.Count,
			},
		}
	}
	return resp
}
