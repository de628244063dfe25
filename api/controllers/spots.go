package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/parkloop/parkloop-backend/api/responses"
	"github.com/parkloop/parkloop-backend/api/validators"
	"github.com/parkloop/parkloop-backend/internal/spots"
	"github.com/parkloop/parkloop-backend/internal/users"
	"github.com/parkloop/parkloop-backend/pkg/logger"
)

type createSpotRequest struct {
	OwnerID    string          `json:"owner_id" validate:"required,uuid"`
	Title      string          `json:"title" validate:"required,max=200"`
	Address    string          `json:"address" validate:"required,max=500"`
	TotalSlots int             `json:"total_slots" validate:"required,gt=0"`
	HourlyRate decimal.Decimal `json:"hourly_rate" validate:"required"`
}

// CreateSpot registers a parking spot listing for an owner.
func CreateSpot(svc spots.Service, userSvc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req createSpotRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		ownerID, _ := uuid.Parse(req.OwnerID)

		if _, err := userSvc.Get(ctx, ownerID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		spot, err := svc.Create(ctx, spots.CreateSpotInput{
			OwnerID:    ownerID,
			Title:      req.Title,
			Address:    req.Address,
			TotalSlots: req.TotalSlots,
			HourlyRate: req.HourlyRate,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, spot)
	}
}

// GetSpot returns one spot by id.
func GetSpot(svc spots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		spotID, err := validators.ParsePathUUID(chi.URLParam(r, "spotId"), "spotId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		spot, err := svc.Get(ctx, spotID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, spot)
	}
}

// ListSpots lists verified spots, newest first.
func ListSpots(svc spots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.ListVerified(ctx, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
