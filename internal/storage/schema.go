package storage

import (
	"devEvents/internal/lib/slug"
	"devEvents/internal/models"
	"errors"
	"github.com/go-playground/validator/v10"
	"reflect"
	"strings"
	"time"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

var (
	dateLayouts = []string{
		"2006-01-02",
		"2006/01/02",
		"January 2, 2006",
		"Jan 2, 2006",
		"02.01.2006",
		time.RFC3339,
	}
	timeLayouts = []string{
		"15:04",
		"15:04:05",
		"3:04 PM",
		"3:04PM",
		"3 PM",
	}
)

// PrepareEvent trims and normalizes an event in place and checks it against
// the event schema. A rejected event yields a KindFieldValidation *Error.
func PrepareEvent(e *models.Event) error {
	e.Title = strings.TrimSpace(e.Title)
	e.Description = strings.TrimSpace(e.Description)
	e.Overview = strings.TrimSpace(e.Overview)
	e.Image = strings.TrimSpace(e.Image)
	e.Venue = strings.TrimSpace(e.Venue)
	e.Location = strings.TrimSpace(e.Location)
	e.Mode = strings.ToLower(strings.TrimSpace(e.Mode))
	e.Audience = strings.TrimSpace(e.Audience)
	e.Organizer = strings.TrimSpace(e.Organizer)
	e.Agenda = compact(e.Agenda)
	e.Tags = compact(e.Tags)

	if strings.TrimSpace(e.Slug) == "" {
		e.Slug = slug.Make(e.Title)
	} else {
		e.Slug = slug.Make(e.Slug)
	}

	var violations []FieldViolation

	if err := validate.Struct(e); err != nil {
		violations = append(violations, toViolations(err)...)
	}

	if d := strings.TrimSpace(e.Date); d != "" {
		normalized, ok := normalize(d, dateLayouts, "2006-01-02")
		if ok {
			e.Date = normalized
		} else {
			violations = append(violations, FieldViolation{Field: "date", Message: "Invalid date format. Use YYYY-MM-DD"})
		}
	}

	if t := strings.TrimSpace(e.Time); t != "" {
		normalized, ok := normalize(strings.ToUpper(t), timeLayouts, "15:04")
		if ok {
			e.Time = normalized
		} else {
			violations = append(violations, FieldViolation{Field: "time", Message: "Invalid time format. Use HH:MM"})
		}
	}

	if len(violations) > 0 {
		return ValidationFailed(violations...)
	}

	return nil
}

// PrepareBooking normalizes a booking in place and validates it.
func PrepareBooking(b *models.Booking) error {
	b.EventID = strings.TrimSpace(b.EventID)
	b.Slug = slug.Normalize(b.Slug)
	b.Email = strings.ToLower(strings.TrimSpace(b.Email))

	if err := validate.Struct(b); err != nil {
		return ValidationFailed(toViolations(err)...)
	}

	return nil
}

func toViolations(err error) []FieldViolation {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return []FieldViolation{{Field: "", Message: err.Error()}}
	}

	out := make([]FieldViolation, 0, len(errs))
	for _, fe := range errs {
		out = append(out, FieldViolation{Field: fe.Field(), Message: violationMessage(fe)})
	}

	return out
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fe.Field() + " cannot exceed " + fe.Param() + " characters"
	case "min":
		return "At least one " + strings.TrimSuffix(fe.Field(), "s") + " item is required"
	case "oneof":
		return fe.Field() + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return "Please provide a valid email address"
	default:
		return fe.Field() + " is invalid"
	}
}

func normalize(value string, layouts []string, out string) (string, bool) {
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format(out), true
		}
	}

	return "", false
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}
