package event

import (
	"context"
	"devEvents/internal/lib/logger/handlers/slogdiscard"
	"devEvents/internal/media"
	"devEvents/internal/models"
	"devEvents/internal/services/event/mocks"
	"devEvents/internal/storage"
	"errors"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var uploaded = media.Image{URL: "https://cdn.example.com/DevEvents/img.png", ID: "DevEvents/img.png"}

func submission() Submission {
	return Submission{
		Title:       "React Summit 2025",
		Description: "React conference",
		Overview:    "Server Components",
		Venue:       "RAI",
		Location:    "Amsterdam",
		Date:        "2025-06-13",
		Time:        "09:00",
		Mode:        "offline",
		Audience:    "Developers",
		Organizer:   "GitNation",
		Tags:        `["a","b"]`,
		Agenda:      `["x"]`,
		Image:       []byte("png-bytes"),
	}
}

func TestService_Create(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()
	ctx := context.Background()

	t.Run("success stores uploaded url", func(t *testing.T) {
		t.Parallel()

		events := mocks.NewEventStore(t)
		images := mocks.NewImageStore(t)

		images.On("Upload", ctx, []byte("png-bytes")).Return(uploaded, nil).Once()
		events.On("CreateEvent", ctx, mock.MatchedBy(func(e models.Event) bool {
			return e.Image == uploaded.URL &&
				slices.Equal(e.Tags, []string{"a", "b"}) &&
				slices.Equal(e.Agenda, []string{"x"})
		})).Return(func(_ context.Context, e models.Event) (*models.Event, error) {
			e.ID = "e1"
			e.Slug = "react-summit-2025"
			return &e, nil
		}).Once()

		created, err := New(logger, events, images).Create(ctx, submission())
		require.NoError(t, err)

		assert.Equal(t, uploaded.URL, created.Image)
		assert.Equal(t, []string{"a", "b"}, created.Tags)
		assert.Equal(t, []string{"x"}, created.Agenda)
		images.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("missing image", func(t *testing.T) {
		t.Parallel()

		events := mocks.NewEventStore(t)
		images := mocks.NewImageStore(t)

		sub := submission()
		sub.Image = nil

		_, err := New(logger, events, images).Create(ctx, sub)
		assert.ErrorIs(t, err, ErrMissingImage)
	})

	t.Run("upload failure skips insert", func(t *testing.T) {
		t.Parallel()

		events := mocks.NewEventStore(t)
		images := mocks.NewImageStore(t)

		images.On("Upload", ctx, mock.Anything).Return(media.Image{}, errors.New("media host down"))

		_, err := New(logger, events, images).Create(ctx, submission())
		assert.ErrorIs(t, err, ErrUploadFailed)
		events.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
	})

	t.Run("malformed lists default to empty", func(t *testing.T) {
		t.Parallel()

		events := mocks.NewEventStore(t)
		images := mocks.NewImageStore(t)

		sub := submission()
		sub.Tags = "react, javascript"
		sub.Agenda = ""

		images.On("Upload", ctx, mock.Anything).Return(uploaded, nil)
		events.On("CreateEvent", ctx, mock.MatchedBy(func(e models.Event) bool {
			return e.Tags != nil && len(e.Tags) == 0 && e.Agenda != nil && len(e.Agenda) == 0
		})).Return(nil, storage.ValidationFailed(storage.FieldViolation{Field: "tags", Message: "At least one tag item is required"}))
		images.On("Delete", mock.Anything, uploaded.ID).Return(nil).Once()

		_, err := New(logger, events, images).Create(ctx, sub)
		assert.Equal(t, storage.KindFieldValidation, storage.KindOf(err))
	})

	t.Run("insert failure deletes upload once", func(t *testing.T) {
		t.Parallel()

		events := mocks.NewEventStore(t)
		images := mocks.NewImageStore(t)

		conflict := storage.UniquenessConflict(errors.New("E11000"), storage.Conflict{Field: "slug", Value: "react-summit-2025"})

		images.On("Upload", ctx, mock.Anything).Return(uploaded, nil)
		events.On("CreateEvent", ctx, mock.Anything).Return(nil, conflict)
		images.On("Delete", mock.Anything, uploaded.ID).Return(nil).Once()

		_, err := New(logger, events, images).Create(ctx, submission())
		require.Error(t, err)

		var sErr *storage.Error
		require.True(t, errors.As(err, &sErr))
		assert.Equal(t, storage.KindUniquenessConflict, sErr.Kind)
		images.AssertNumberOfCalls(t, "Delete", 1)
	})

	t.Run("cleanup failure keeps original error", func(t *testing.T) {
		t.Parallel()

		events := mocks.NewEventStore(t)
		images := mocks.NewImageStore(t)

		insertErr := errors.New("write concern timeout")

		images.On("Upload", ctx, mock.Anything).Return(uploaded, nil)
		events.On("CreateEvent", ctx, mock.Anything).Return(nil, insertErr)
		images.On("Delete", mock.Anything, uploaded.ID).Return(errors.New("media host down")).Once()

		_, err := New(logger, events, images).Create(ctx, submission())
		assert.ErrorIs(t, err, insertErr)
		assert.NotContains(t, err.Error(), "media host down")
		assert.Equal(t, storage.KindOther, storage.KindOf(err))
	})

	t.Run("cleanup survives cancelled request", func(t *testing.T) {
		t.Parallel()

		events := mocks.NewEventStore(t)
		images := mocks.NewImageStore(t)

		cctx, cancel := context.WithCancel(context.Background())

		images.On("Upload", cctx, mock.Anything).Return(uploaded, nil)
		events.On("CreateEvent", cctx, mock.Anything).
			Run(func(mock.Arguments) { cancel() }).
			Return(nil, context.Canceled)
		images.On("Delete", mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil }), uploaded.ID).
			Return(nil).Once()

		_, err := New(logger, events, images).Create(cctx, submission())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestService_Get(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()
	ctx := context.Background()

	events := mocks.NewEventStore(t)
	svc := New(logger, events, mocks.NewImageStore(t))

	_, err := svc.Get(ctx, "  ")
	assert.ErrorIs(t, err, ErrInvalidSlug)

	events.On("GetEventBySlug", ctx, "foo-bar").Return(&models.Event{ID: "e1", Slug: "foo-bar"}, nil).Twice()

	first, err := svc.Get(ctx, "Foo-Bar")
	require.NoError(t, err)
	second, err := svc.Get(ctx, " foo-bar ")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	events.On("GetEventBySlug", ctx, "missing").Return(nil, storage.ErrEventNotFound)
	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrEventNotFound)
}

func TestService_Similar(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	self := &models.Event{ID: "e1", Slug: "foo-bar", Tags: []string{"react", "javascript"}}

	t.Run("excludes itself and orders newest first", func(t *testing.T) {
		t.Parallel()

		events := mocks.NewEventStore(t)
		events.On("GetEventBySlug", ctx, "foo-bar").Return(self, nil)
		events.On("GetSimilarEvents", ctx, "e1", []string{"react", "javascript"}).Return([]models.Event{
			{ID: "e3", Slug: "b-conf", CreatedAt: base},
			*self,
			{ID: "e2", Slug: "a-conf", CreatedAt: base},
			{ID: "e4", Slug: "z-conf", CreatedAt: base.Add(time.Hour)},
		}, nil)

		similar := New(logger, events, mocks.NewImageStore(t)).Similar(ctx, "  Foo-Bar ")

		slugs := make([]string, 0, len(similar))
		for _, e := range similar {
			slugs = append(slugs, e.Slug)
		}
		assert.Equal(t, []string{"z-conf", "a-conf", "b-conf"}, slugs)
	})

	t.Run("unknown slug is empty", func(t *testing.T) {
		t.Parallel()

		events := mocks.NewEventStore(t)
		events.On("GetEventBySlug", ctx, "nope").Return(nil, storage.ErrEventNotFound)

		similar := New(logger, events, mocks.NewImageStore(t)).Similar(ctx, "nope")
		assert.NotNil(t, similar)
		assert.Empty(t, similar)
	})

	t.Run("unreachable store is empty", func(t *testing.T) {
		t.Parallel()

		events := mocks.NewEventStore(t)
		events.On("GetEventBySlug", ctx, "foo-bar").Return(nil, storage.ErrUnavailable)

		assert.Empty(t, New(logger, events, mocks.NewImageStore(t)).Similar(ctx, "foo-bar"))
	})

	t.Run("similar query failure is empty", func(t *testing.T) {
		t.Parallel()

		events := mocks.NewEventStore(t)
		events.On("GetEventBySlug", ctx, "foo-bar").Return(self, nil)
		events.On("GetSimilarEvents", ctx, "e1", mock.Anything).Return(nil, errors.New("cursor killed"))

		assert.Empty(t, New(logger, events, mocks.NewImageStore(t)).Similar(ctx, "foo-bar"))
	})

	t.Run("untagged event has no similar events", func(t *testing.T) {
		t.Parallel()

		events := mocks.NewEventStore(t)
		events.On("GetEventBySlug", ctx, "plain").Return(&models.Event{ID: "e9", Slug: "plain"}, nil)

		assert.Empty(t, New(logger, events, mocks.NewImageStore(t)).Similar(ctx, "plain"))
		events.AssertNotCalled(t, "GetSimilarEvents", mock.Anything, mock.Anything, mock.Anything)
	})
}

// memStore is an in-process EventStore with the same tag-overlap and
// uniqueness semantics as the real adapters.
type memStore struct {
	mu     sync.Mutex
	events []models.Event
}

func (m *memStore) CreateEvent(_ context.Context, e models.Event) (*models.Event, error) {
	if err := storage.PrepareEvent(&e); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.events {
		if existing.Slug == e.Slug {
			return nil, storage.UniquenessConflict(nil, storage.Conflict{Field: "slug", Value: e.Slug})
		}
	}

	e.ID = "e" + strconv.Itoa(len(m.events)+1)
	e.CreatedAt = time.Date(2025, 1, 1, 0, len(m.events), 0, 0, time.UTC)
	m.events = append(m.events, e)

	return &e, nil
}

func (m *memStore) GetEventBySlug(_ context.Context, slug string) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.events {
		if e.Slug == slug {
			return &e, nil
		}
	}

	return nil, storage.ErrEventNotFound
}

func (m *memStore) GetAllEvents(context.Context) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.events), nil
}

func (m *memStore) GetSimilarEvents(_ context.Context, excludeID string, tags []string) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Event
	for _, e := range m.events {
		if e.ID == excludeID {
			continue
		}
		if slices.ContainsFunc(e.Tags, func(tag string) bool { return slices.Contains(tags, tag) }) {
			out = append(out, e)
		}
	}

	return out, nil
}

func TestService_CreateThenSimilarRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := &memStore{}

	images := mocks.NewImageStore(t)
	images.On("Upload", ctx, mock.Anything).Return(uploaded, nil)
	images.On("Delete", mock.Anything, uploaded.ID).Return(nil).Once()

	svc := New(slogdiscard.NewDiscardLogger(), store, images)

	create := func(title, tags string) (*models.Event, error) {
		sub := submission()
		sub.Title = title
		sub.Tags = tags
		return svc.Create(ctx, sub)
	}

	_, err := create("React Summit", `["react","javascript"]`)
	require.NoError(t, err)
	_, err = create("Vue Conf", `["vue","javascript"]`)
	require.NoError(t, err)
	_, err = create("Rust Nation", `["rust"]`)
	require.NoError(t, err)

	_, err = create("react summit", `["react"]`)
	assert.Equal(t, storage.KindUniquenessConflict, storage.KindOf(err))

	fromVue := svc.Similar(ctx, "Vue-Conf")
	require.Len(t, fromVue, 1)
	assert.Equal(t, "react-summit", fromVue[0].Slug)

	fromReact := svc.Similar(ctx, "react-summit")
	require.Len(t, fromReact, 1)
	assert.Equal(t, "vue-conf", fromReact[0].Slug)

	assert.Empty(t, svc.Similar(ctx, "rust-nation"))
}

func TestParseList(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		raw  string
		want []string
	}{
		{raw: `["a","b"]`, want: []string{"a", "b"}},
		{raw: `[]`, want: []string{}},
		{raw: ``, want: []string{}},
		{raw: `null`, want: []string{}},
		{raw: `not json`, want: []string{}},
		{raw: `[1, 2]`, want: []string{}},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, ParseList(tc.raw), tc.raw)
	}
}
