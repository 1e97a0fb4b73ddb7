package mongodb

import (
	"context"
	"devEvents/internal/config"
	"devEvents/internal/models"
	"devEvents/internal/storage"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func testEvent() models.Event {
	return models.Event{
		Title:       "React Summit 2025",
		Description: "React conference",
		Overview:    "Server Components",
		Image:       "https://cdn.example.com/a.png",
		Venue:       "RAI",
		Location:    "Amsterdam",
		Date:        "2025-06-13",
		Time:        "09:00",
		Mode:        "offline",
		Audience:    "Developers",
		Agenda:      []string{"Keynote"},
		Organizer:   "GitNation",
		Tags:        []string{"react", "javascript"},
	}
}

func eventDoc(id primitive.ObjectID, slug string, tags ...string) bson.D {
	t := bson.A{}
	for _, tag := range tags {
		t = append(t, tag)
	}

	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: "Title " + slug},
		{Key: "slug", Value: slug},
		{Key: "tags", Value: t},
		{Key: "agenda", Value: bson.A{"Keynote"}},
		{Key: "createdAt", Value: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestStorage(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create event", func(mt *mtest.T) {
		s := NewWithDatabase(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		created, err := s.CreateEvent(context.Background(), testEvent())
		require.NoError(mt, err)

		assert.Len(mt, created.ID, 24)
		assert.Equal(mt, "react-summit-2025", created.Slug)
		assert.False(mt, created.CreatedAt.IsZero())
	})

	mt.Run("create event duplicate slug", func(mt *mtest.T) {
		s := NewWithDatabase(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: `E11000 duplicate key error collection: dev_events.events index: slug_1 dup key: { slug: "react-summit-2025" }`,
		}))

		_, err := s.CreateEvent(context.Background(), testEvent())
		require.Error(mt, err)

		var sErr *storage.Error
		require.True(mt, errors.As(err, &sErr))
		assert.Equal(mt, storage.KindUniquenessConflict, sErr.Kind)
		assert.Equal(mt, []storage.Conflict{{Field: "slug", Value: "react-summit-2025"}}, sErr.Conflicts)
	})

	mt.Run("get event by slug", func(mt *mtest.T) {
		s := NewWithDatabase(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "dev_events.events", mtest.FirstBatch,
			eventDoc(id, "react-summit-2025", "react")))

		event, err := s.GetEventBySlug(context.Background(), "react-summit-2025")
		require.NoError(mt, err)

		assert.Equal(mt, id.Hex(), event.ID)
		assert.Equal(mt, []string{"react"}, event.Tags)
	})

	mt.Run("get event by slug not found", func(mt *mtest.T) {
		s := NewWithDatabase(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "dev_events.events", mtest.FirstBatch))

		_, err := s.GetEventBySlug(context.Background(), "missing")
		assert.ErrorIs(mt, err, storage.ErrEventNotFound)
	})

	mt.Run("similar events", func(mt *mtest.T) {
		s := NewWithDatabase(mt.DB)
		other := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "dev_events.events", mtest.FirstBatch,
			eventDoc(other, "vue-conf", "javascript")))

		events, err := s.GetSimilarEvents(context.Background(), primitive.NewObjectID().Hex(), []string{"react", "javascript"})
		require.NoError(mt, err)

		require.Len(mt, events, 1)
		assert.Equal(mt, other.Hex(), events[0].ID)
		assert.Equal(mt, []string{"javascript"}, events[0].Tags)
	})

	mt.Run("similar events invalid id", func(mt *mtest.T) {
		s := NewWithDatabase(mt.DB)

		_, err := s.GetSimilarEvents(context.Background(), "not-an-object-id", []string{"react"})
		assert.Error(mt, err)
	})

	mt.Run("create booking", func(mt *mtest.T) {
		s := NewWithDatabase(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		booking, err := s.CreateBooking(context.Background(), models.Booking{
			EventID: "unknown-event",
			Slug:    "Foo-Bar",
			Email:   "dev@example.com",
		})
		require.NoError(mt, err)

		assert.Len(mt, booking.ID, 24)
		assert.Equal(mt, "foo-bar", booking.Slug)
	})
}

func TestStorageNotConfigured(t *testing.T) {
	t.Parallel()

	s := New(&config.Mongo{Database: "dev_events"})

	_, err := s.GetEventBySlug(context.Background(), "foo")
	assert.ErrorIs(t, err, storage.ErrNotConfigured)

	_, err = s.GetAllEvents(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotConfigured)

	assert.NoError(t, s.Close())
}

func TestClassify(t *testing.T) {
	t.Parallel()

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: `E11000 duplicate key error collection: db.events index: slug_1 dup key: { slug: "foo-bar" }`,
	}}}
	err := classify(dup)
	assert.Equal(t, storage.KindUniquenessConflict, storage.KindOf(err))

	validation := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 121, Message: "Document failed validation"}}}
	assert.Equal(t, storage.KindFieldValidation, storage.KindOf(classify(validation)))

	var sErr *storage.Error
	require.True(t, errors.As(classify(validation), &sErr))
	assert.Equal(t, []storage.FieldViolation{{Field: "document", Message: "Document failed validation"}}, sErr.Violations)

	other := errors.New("boom")
	assert.Equal(t, other, classify(other))
	assert.ErrorIs(t, classify(mongo.ErrClientDisconnected), storage.ErrUnavailable)
}

func TestClassifyDocumentValidationDetails(t *testing.T) {
	t.Parallel()

	details, err := bson.Marshal(bson.D{
		{Key: "operatorName", Value: "$jsonSchema"},
		{Key: "schemaRulesNotSatisfied", Value: bson.A{
			bson.D{
				{Key: "operatorName", Value: "properties"},
				{Key: "propertiesNotSatisfied", Value: bson.A{
					bson.D{{Key: "propertyName", Value: "mode"}},
				}},
			},
			bson.D{
				{Key: "operatorName", Value: "required"},
				{Key: "missingProperties", Value: bson.A{"title"}},
			},
		}},
	})
	require.NoError(t, err)

	validation := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    121,
		Message: "Document failed validation",
		Details: details,
	}}}

	var sErr *storage.Error
	require.True(t, errors.As(classify(validation), &sErr))
	assert.Equal(t, storage.KindFieldValidation, sErr.Kind)
	assert.Equal(t, []storage.FieldViolation{
		{Field: "mode", Message: "mode failed document validation"},
		{Field: "title", Message: "title is required"},
	}, sErr.Violations)
}
