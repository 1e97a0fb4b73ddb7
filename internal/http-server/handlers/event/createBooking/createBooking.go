package createBooking

import (
	"context"
	"devEvents/internal/lib/api/response"
	"devEvents/internal/lib/logger/sl"
	"devEvents/internal/services/booking"
	"errors"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"log/slog"
	"net/http"
)

type BookingRequest struct {
	EventID string `json:"eventId" validate:"required"`
	Slug    string `json:"slug" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
}

type BookingResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingCreator
type BookingCreator interface {
	Create(ctx context.Context, req booking.Request) bool
}

func New(log *slog.Logger, creator BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.createBooking.New"

		log := log.With(slog.String("op", op))

		var req BookingRequest

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			responseFailed(w, r, http.StatusBadRequest, "failed to decode request")
			return
		}

		log = log.With(slog.String("event_id", req.EventID), slog.String("slug", req.Slug))

		if err = validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			if errors.As(err, &validateErr) {
				log.Error("invalid request", sl.Err(err))
				responseFailed(w, r, http.StatusBadRequest, response.ValidationError(validateErr).Error)
				return
			}
		}

		if !creator.Create(r.Context(), booking.Request{
			EventID: req.EventID,
			Slug:    req.Slug,
			Email:   req.Email,
		}) {
			responseFailed(w, r, http.StatusInternalServerError, "failed to book event")
			return
		}

		log.Info("event booked successfully")

		render.JSON(w, r, BookingResponse{Success: true})
	}
}

func responseFailed(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, BookingResponse{Success: false, Error: msg})
}
