// Package booking records event sign-ups.
package booking

import (
	"context"
	"devEvents/internal/lib/logger/sl"
	"devEvents/internal/models"
	"log/slog"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingStore
type BookingStore interface {
	CreateBooking(ctx context.Context, booking models.Booking) (*models.Booking, error)
}

type Request struct {
	EventID string
	Slug    string
	Email   string
}

type Service struct {
	log   *slog.Logger
	store BookingStore
}

func New(log *slog.Logger, store BookingStore) *Service {
	return &Service{log: log, store: store}
}

// Create stores the booking and reports whether it succeeded. The event
// reference is stored as given, without checking that the event exists.
// Failures are logged here and never returned.
func (s *Service) Create(ctx context.Context, req Request) bool {
	const op = "services.booking.Create"

	log := s.log.With(
		slog.String("op", op),
		slog.String("event_id", req.EventID),
		slog.String("slug", req.Slug),
	)

	booking, err := s.store.CreateBooking(ctx, models.Booking{
		EventID: req.EventID,
		Slug:    req.Slug,
		Email:   req.Email,
	})
	if err != nil {
		log.Error("create booking failed", sl.Err(err))
		return false
	}

	log.Info("booking created", slog.String("booking_id", booking.ID))

	return true
}
