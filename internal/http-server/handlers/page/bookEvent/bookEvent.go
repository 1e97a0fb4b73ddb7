package bookEvent

import (
	"context"
	"devEvents/internal/lib/logger/sl"
	"devEvents/internal/services/booking"
	"github.com/go-chi/chi/v5"
	"log/slog"
	"net/http"
	"net/url"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingCreator
type BookingCreator interface {
	Create(ctx context.Context, req booking.Request) bool
}

// New handles the detail page form and redirects back with the outcome.
func New(log *slog.Logger, creator BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.page.bookEvent.New"

		slug := chi.URLParam(r, "slug")

		log := log.With(slog.String("op", op), slog.String("slug", slug))

		booked := "0"

		if err := r.ParseForm(); err != nil {
			log.Error("failed to parse form", sl.Err(err))
		} else if creator.Create(r.Context(), booking.Request{
			EventID: r.PostForm.Get("eventId"),
			Slug:    slug,
			Email:   r.PostForm.Get("email"),
		}) {
			booked = "1"
		}

		target := "/events/" + url.PathEscape(slug) + "?booked=" + booked
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}
