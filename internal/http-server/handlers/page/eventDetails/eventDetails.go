package eventDetails

import (
	"context"
	"devEvents/internal/http-server/views"
	"devEvents/internal/lib/logger/sl"
	"devEvents/internal/models"
	"github.com/go-chi/chi/v5"
	"log/slog"
	"net/http"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventFetcher
type EventFetcher interface {
	Event(ctx context.Context, rawSlug string) (*models.Event, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=SimilarFinder
type SimilarFinder interface {
	Similar(ctx context.Context, rawSlug string) []models.Event
}

func New(log *slog.Logger, fetcher EventFetcher, similar SimilarFinder, pages *views.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.page.eventDetails.New"

		slug := chi.URLParam(r, "slug")

		log := log.With(slog.String("op", op), slog.String("slug", slug))

		event, err := fetcher.Event(r.Context(), slug)
		if err != nil {
			log.Warn("event not available", sl.Err(err))
			pages.Error(w, http.StatusNotFound, "Event not found.")
			return
		}
		if event == nil {
			pages.Error(w, http.StatusNotFound, "Event not found.")
			return
		}

		data := views.EventData{
			Event:   event,
			Similar: similar.Similar(r.Context(), slug),
			Booked:  r.URL.Query().Get("booked"),
		}

		if err = pages.Render(w, http.StatusOK, views.PageEvent, data); err != nil {
			log.Error("failed to render page", sl.Err(err))
			pages.Error(w, http.StatusInternalServerError, "Failed to render page.")
		}
	}
}
