package home

import (
	"context"
	"devEvents/internal/http-server/views"
	"devEvents/internal/lib/logger/sl"
	"devEvents/internal/models"
	"log/slog"
	"net/http"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventsFetcher
type EventsFetcher interface {
	Events(ctx context.Context) ([]models.Event, error)
}

func New(log *slog.Logger, fetcher EventsFetcher, pages *views.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.page.home.New"

		log := log.With(slog.String("op", op))

		events, err := fetcher.Events(r.Context())
		if err != nil {
			log.Error("failed to fetch events", sl.Err(err))
			pages.Error(w, http.StatusInternalServerError, "Failed to load events.")
			return
		}

		if err = pages.Render(w, http.StatusOK, views.PageHome, views.HomeData{Events: events}); err != nil {
			log.Error("failed to render page", sl.Err(err))
			pages.Error(w, http.StatusInternalServerError, "Failed to render page.")
		}
	}
}
