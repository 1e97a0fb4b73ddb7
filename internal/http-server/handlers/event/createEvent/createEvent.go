package createEvent

import (
	"context"
	"devEvents/internal/lib/api/response"
	"devEvents/internal/lib/logger/sl"
	"devEvents/internal/models"
	"devEvents/internal/services/event"
	"devEvents/internal/storage"
	"errors"
	"fmt"
	"github.com/go-chi/render"
	"io"
	"log/slog"
	"net/http"
)

const multipartMemory = 32 << 20

type EventResponse struct {
	response.Response
	Event      *models.Event         `json:"event,omitempty"`
	Errors     []response.FieldError `json:"errors,omitempty"`
	Duplicates []response.Duplicate  `json:"duplicates,omitempty"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventCreator
type EventCreator interface {
	Create(ctx context.Context, sub event.Submission) (*models.Event, error)
}

func New(log *slog.Logger, creator EventCreator, maxUploadSize int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.createEvent.New"

		log := log.With(slog.String("op", op))

		if maxUploadSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		}

		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			log.Error("failed to parse multipart form", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Failure("Invalid Form Data", "failed to parse multipart form"))

			return
		}

		sub, err := readSubmission(r)
		if err != nil {
			log.Error("failed to read image", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Failure("Invalid Form Data", "failed to read image file"))

			return
		}

		created, err := creator.Create(r.Context(), sub)
		if err != nil {
			log.Error("failed to create event", sl.Err(err))
			responseError(w, r, err)

			return
		}

		log.Info("event created", slog.String("slug", created.Slug), slog.String("id", created.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, EventResponse{
			Response: response.OKWithMessage("Event Created Successfully"),
			Event:    created,
		})
	}
}

func readSubmission(r *http.Request) (event.Submission, error) {
	sub := event.Submission{
		Title:       r.FormValue("title"),
		Slug:        r.FormValue("slug"),
		Description: r.FormValue("description"),
		Overview:    r.FormValue("overview"),
		Venue:       r.FormValue("venue"),
		Location:    r.FormValue("location"),
		Date:        r.FormValue("date"),
		Time:        r.FormValue("time"),
		Mode:        r.FormValue("mode"),
		Audience:    r.FormValue("audience"),
		Organizer:   r.FormValue("organizer"),
		Tags:        r.FormValue("tags"),
		Agenda:      r.FormValue("agenda"),
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return sub, nil
		}
		return sub, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return sub, err
	}
	if data == nil {
		data = []byte{}
	}
	sub.Image = data

	return sub, nil
}

func responseError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, event.ErrMissingImage) {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Failure("Image file is required", "MissingImage"))
		return
	}

	var sErr *storage.Error
	if errors.As(err, &sErr) {
		switch sErr.Kind {
		case storage.KindFieldValidation:
			fields := make([]response.FieldError, 0, len(sErr.Violations))
			for _, v := range sErr.Violations {
				fields = append(fields, response.FieldError{Field: v.Field, Message: v.Message})
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, EventResponse{
				Response: response.Failure("Validation Failed", "ValidationError"),
				Errors:   fields,
			})
			return
		case storage.KindUniquenessConflict:
			duplicates := make([]response.Duplicate, 0, len(sErr.Conflicts))
			for _, c := range sErr.Conflicts {
				duplicates = append(duplicates, response.Duplicate{
					Field:   c.Field,
					Value:   c.Value,
					Message: fmt.Sprintf("%s must be unique", c.Field),
				})
			}

			render.Status(r, http.StatusConflict)
			render.JSON(w, r, EventResponse{
				Response:   response.Failure("Duplicate Key Error", "DuplicateKey"),
				Duplicates: duplicates,
			})
			return
		}
	}

	detail := "failed to create event"
	if errors.Is(err, event.ErrUploadFailed) {
		detail = "image upload failed"
	}

	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, response.Failure("Event Creation Failed", detail))
}
