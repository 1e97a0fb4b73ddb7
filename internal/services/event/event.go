// Package event implements the event flows behind the HTTP API: creation
// with image upload, listing, lookup by slug and tag-based recommendations.
package event

import (
	"cmp"
	"context"
	"devEvents/internal/lib/logger/sl"
	"devEvents/internal/lib/slug"
	"devEvents/internal/media"
	"devEvents/internal/models"
	"devEvents/internal/storage"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

var (
	ErrMissingImage = errors.New("image file is required")
	ErrUploadFailed = errors.New("image upload failed")
	ErrInvalidSlug  = errors.New("slug is required and must be a non-empty string")
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventStore
type EventStore interface {
	CreateEvent(ctx context.Context, event models.Event) (*models.Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*models.Event, error)
	GetAllEvents(ctx context.Context) ([]models.Event, error)
	GetSimilarEvents(ctx context.Context, excludeID string, tags []string) ([]models.Event, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=ImageStore
type ImageStore interface {
	Upload(ctx context.Context, data []byte) (media.Image, error)
	Delete(ctx context.Context, id string) error
}

// Submission is a create request as it arrives from the form. Tags and
// Agenda hold JSON arrays; a nil Image means no file was attached.
type Submission struct {
	Title       string
	Slug        string
	Description string
	Overview    string
	Venue       string
	Location    string
	Date        string
	Time        string
	Mode        string
	Audience    string
	Organizer   string
	Tags        string
	Agenda      string
	Image       []byte
}

type Service struct {
	log    *slog.Logger
	events EventStore
	images ImageStore
}

func New(log *slog.Logger, events EventStore, images ImageStore) *Service {
	return &Service{
		log:    log,
		events: events,
		images: images,
	}
}

// Create uploads the submitted image and stores the event. If the store
// rejects the event the uploaded image is deleted before the store error is
// returned; a failed delete is only logged.
func (s *Service) Create(ctx context.Context, sub Submission) (*models.Event, error) {
	const op = "services.event.Create"

	log := s.log.With(slog.String("op", op))

	if sub.Image == nil {
		return nil, ErrMissingImage
	}

	tags := ParseList(sub.Tags)
	agenda := ParseList(sub.Agenda)

	img, err := s.images.Upload(ctx, sub.Image)
	if err != nil {
		log.Error("failed to upload image", sl.Err(err))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrUploadFailed, err)
	}

	log.Debug("image uploaded", slog.String("image_id", img.ID))

	created, err := s.events.CreateEvent(ctx, models.Event{
		Title:       sub.Title,
		Slug:        sub.Slug,
		Description: sub.Description,
		Overview:    sub.Overview,
		Image:       img.URL,
		Venue:       sub.Venue,
		Location:    sub.Location,
		Date:        sub.Date,
		Time:        sub.Time,
		Mode:        sub.Mode,
		Audience:    sub.Audience,
		Agenda:      agenda,
		Organizer:   sub.Organizer,
		Tags:        tags,
	})
	if err != nil {
		log.Error("failed to store event",
			slog.String("kind", storage.KindOf(err).String()),
			sl.Err(err),
		)
		s.discardImage(ctx, log, img)

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("event created", slog.String("slug", created.Slug))

	return created, nil
}

func (s *Service) discardImage(ctx context.Context, log *slog.Logger, img media.Image) {
	if img.ID == "" {
		return
	}

	if err := s.images.Delete(context.WithoutCancel(ctx), img.ID); err != nil {
		log.Error("failed to clean up uploaded image", slog.String("image_id", img.ID), sl.Err(err))
		return
	}

	log.Info("uploaded image removed", slog.String("image_id", img.ID))
}

func (s *Service) List(ctx context.Context) ([]models.Event, error) {
	const op = "services.event.List"

	events, err := s.events.GetAllEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

func (s *Service) Get(ctx context.Context, rawSlug string) (*models.Event, error) {
	const op = "services.event.Get"

	normalized := slug.Normalize(rawSlug)
	if normalized == "" {
		return nil, ErrInvalidSlug
	}

	event, err := s.events.GetEventBySlug(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return event, nil
}

// Similar returns the events sharing at least one tag with the event behind
// rawSlug, newest first. It never fails: an unknown slug and a store error
// both yield an empty slice and differ only in what gets logged.
func (s *Service) Similar(ctx context.Context, rawSlug string) []models.Event {
	const op = "services.event.Similar"

	normalized := slug.Normalize(rawSlug)
	log := s.log.With(slog.String("op", op), slog.String("slug", normalized))

	event, err := s.events.GetEventBySlug(ctx, normalized)
	if err != nil {
		if errors.Is(err, storage.ErrEventNotFound) {
			log.Warn("event not found")
		} else {
			log.Error("failed to resolve event", sl.Err(err))
		}
		return []models.Event{}
	}

	if len(event.Tags) == 0 {
		return []models.Event{}
	}

	found, err := s.events.GetSimilarEvents(ctx, event.ID, event.Tags)
	if err != nil {
		log.Error("failed to fetch similar events", sl.Err(err))
		return []models.Event{}
	}

	similar := make([]models.Event, 0, len(found))
	for _, e := range found {
		if e.ID == event.ID || e.Slug == event.Slug {
			continue
		}
		similar = append(similar, e)
	}

	slices.SortStableFunc(similar, func(a, b models.Event) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Slug, b.Slug)
	})

	log.Debug("similar events found", slog.Int("count", len(similar)))

	return similar
}

// ParseList decodes a JSON array of strings. Empty or malformed input is an
// empty list, not an error.
func ParseList(raw string) []string {
	if raw == "" {
		return []string{}
	}

	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return []string{}
	}

	return items
}
