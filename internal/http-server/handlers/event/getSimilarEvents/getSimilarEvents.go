package getSimilarEvents

import (
	"context"
	"devEvents/internal/lib/api/response"
	"devEvents/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
)

type SimilarResponse struct {
	response.Response
	Events []models.Event `json:"events"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=SimilarFinder
type SimilarFinder interface {
	Similar(ctx context.Context, rawSlug string) []models.Event
}

// New always answers 200. Lookup failures surface as an empty list.
func New(log *slog.Logger, finder SimilarFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.getSimilarEvents.New"

		slug := chi.URLParam(r, "slug")

		log := log.With(slog.String("op", op), slog.String("slug", slug))

		events := finder.Similar(r.Context(), slug)
		if events == nil {
			events = []models.Event{}
		}

		log.Debug("similar events resolved", slog.Int("count", len(events)))

		render.JSON(w, r, SimilarResponse{
			Response: response.OK(),
			Events:   events,
		})
	}
}
