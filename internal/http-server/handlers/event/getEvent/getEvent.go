package getEvent

import (
	"context"
	"devEvents/internal/lib/api/response"
	"devEvents/internal/lib/logger/sl"
	"devEvents/internal/lib/slug"
	"devEvents/internal/models"
	"devEvents/internal/services/event"
	"devEvents/internal/storage"
	"errors"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
)

type EventResponse struct {
	response.Response
	Event *models.Event `json:"event"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventGetter
type EventGetter interface {
	Get(ctx context.Context, rawSlug string) (*models.Event, error)
}

func New(log *slog.Logger, getter EventGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.getEvent.New"

		raw := chi.URLParam(r, "slug")

		log := log.With(
			slog.String("op", op),
			slog.String("slug", raw),
		)

		found, err := getter.Get(r.Context(), raw)
		if err != nil {
			log.Error("failed to get event", sl.Err(err))

			switch {
			case errors.Is(err, event.ErrInvalidSlug):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Failure(
					"Invalid slug parameter",
					"Slug is required and must be a non-empty string.",
				))
			case errors.Is(err, storage.ErrEventNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Failure(
					"Event not found",
					fmt.Sprintf("No event found for slug '%s'.", slug.Normalize(raw)),
				))
			case errors.Is(err, storage.ErrNotConfigured):
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Failure("Database configuration error", "Please try again later."))
			case errors.Is(err, storage.ErrUnavailable):
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Failure("Database connection error", "Please try again later."))
			default:
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Failure("Failed to retrieve event", "An unexpected error occurred."))
			}

			return
		}

		log.Info("event retrieved", slog.String("id", found.ID))

		responseOK(w, r, found)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, e *models.Event) {
	render.JSON(w, r, EventResponse{
		Response: response.OKWithMessage("Event retrieved successfully"),
		Event:    e,
	})
}
