package storage

import (
	"devEvents/internal/models"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent() models.Event {
	return models.Event{
		Title:       "  React Summit 2025 ",
		Description: "The biggest React conference in Europe.",
		Overview:    "Server Components and more.",
		Image:       "https://cdn.example.com/DevEvents/a.png",
		Venue:       "RAI",
		Location:    "Amsterdam, Netherlands",
		Date:        "June 13, 2025",
		Time:        "9:00 am",
		Mode:        "Hybrid",
		Audience:    "Developers",
		Agenda:      []string{"Keynote", " ", "Workshops"},
		Organizer:   "GitNation",
		Tags:        []string{"react", " javascript "},
	}
}

func TestPrepareEventNormalizes(t *testing.T) {
	t.Parallel()

	e := validEvent()
	require.NoError(t, PrepareEvent(&e))

	assert.Equal(t, "React Summit 2025", e.Title)
	assert.Equal(t, "react-summit-2025", e.Slug)
	assert.Equal(t, "2025-06-13", e.Date)
	assert.Equal(t, "09:00", e.Time)
	assert.Equal(t, "hybrid", e.Mode)
	assert.Equal(t, []string{"Keynote", "Workshops"}, e.Agenda)
	assert.Equal(t, []string{"react", "javascript"}, e.Tags)
}

func TestPrepareEventKeepsExplicitSlug(t *testing.T) {
	t.Parallel()

	e := validEvent()
	e.Slug = "  Foo-Bar "
	require.NoError(t, PrepareEvent(&e))

	assert.Equal(t, "foo-bar", e.Slug)
}

func TestPrepareEventMakesExplicitSlugURLSafe(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		slug     string
		expected string
	}{
		{name: "dots and slashes", slug: " Node.js Meetup/2025 ", expected: "nodejs-meetup2025"},
		{name: "accents and spaces", slug: "Café  Conf", expected: "cafe-conf"},
		{name: "already safe", slug: "go-meetup-2025", expected: "go-meetup-2025"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := validEvent()
			e.Slug = tc.slug
			require.NoError(t, PrepareEvent(&e))

			assert.Equal(t, tc.expected, e.Slug)
			assert.NotContains(t, e.Slug, ".")
			assert.NotContains(t, e.Slug, "/")
		})
	}
}

func TestPrepareEventRejectsSlugWithoutSafeCharacters(t *testing.T) {
	t.Parallel()

	e := validEvent()
	e.Slug = "!!!"

	err := PrepareEvent(&e)
	require.Error(t, err)

	var sErr *Error
	require.True(t, errors.As(err, &sErr))
	assert.Equal(t, KindFieldValidation, sErr.Kind)
	assert.Contains(t, sErr.Violations, FieldViolation{Field: "slug", Message: "slug is required"})
}

func TestPrepareEventViolations(t *testing.T) {
	t.Parallel()

	e := validEvent()
	e.Venue = ""
	e.Mode = "radio"
	e.Tags = nil
	e.Date = "someday"

	err := PrepareEvent(&e)
	require.Error(t, err)

	var sErr *Error
	require.True(t, errors.As(err, &sErr))
	assert.Equal(t, KindFieldValidation, sErr.Kind)
	assert.Equal(t, KindFieldValidation, KindOf(err))

	fields := make(map[string]string, len(sErr.Violations))
	for _, v := range sErr.Violations {
		fields[v.Field] = v.Message
	}

	assert.Equal(t, "venue is required", fields["venue"])
	assert.Equal(t, "mode must be one of: online, offline, hybrid", fields["mode"])
	assert.Equal(t, "At least one tag item is required", fields["tags"])
	assert.Equal(t, "Invalid date format. Use YYYY-MM-DD", fields["date"])
	assert.NotContains(t, fields, "time")
}

func TestPrepareBooking(t *testing.T) {
	t.Parallel()

	b := models.Booking{EventID: " 42 ", Slug: " React-Summit ", Email: " Dev@Example.com"}
	require.NoError(t, PrepareBooking(&b))

	assert.Equal(t, "42", b.EventID)
	assert.Equal(t, "react-summit", b.Slug)
	assert.Equal(t, "dev@example.com", b.Email)

	bad := models.Booking{EventID: "42", Slug: "x", Email: "not-an-email"}
	err := PrepareBooking(&bad)
	require.Error(t, err)
	assert.Equal(t, KindFieldValidation, KindOf(err))
}

func TestErrorKinds(t *testing.T) {
	t.Parallel()

	cause := errors.New("E11000 duplicate key error")
	err := error(UniquenessConflict(cause, Conflict{Field: "slug", Value: "foo"}))

	assert.Equal(t, KindUniquenessConflict, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, `duplicate key: slug="foo"`, err.Error())
	assert.Equal(t, KindOther, KindOf(errors.New("boom")))
	assert.Equal(t, "uniqueness conflict", KindUniquenessConflict.String())
}
