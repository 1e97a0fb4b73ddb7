package mongodb

import (
	"context"
	"devEvents/internal/config"
	"devEvents/internal/models"
	"devEvents/internal/storage"
	"errors"
	"fmt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"regexp"
	"sync"
	"time"
)

const (
	eventsCollection   = "events"
	bookingsCollection = "bookings"

	codeDocumentValidation = 121
)

var dupKey = regexp.MustCompile(`dup key: \{ ?([\w.]+): "?([^"]*?)"? ?\}`)

// Storage talks to MongoDB. The client is created on first use and reused
// for the lifetime of the process; a failed connect is retried by the next call.
type Storage struct {
	uri     string
	dbName  string
	timeout time.Duration

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

func New(cfg *config.Mongo) *Storage {
	return &Storage{
		uri:     cfg.URI,
		dbName:  cfg.Database,
		timeout: cfg.ConnectTimeout,
	}
}

// NewWithDatabase wraps an already connected database. Indexes are assumed to exist.
func NewWithDatabase(db *mongo.Database) *Storage {
	return &Storage{db: db, client: db.Client()}
}

type eventDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Slug        string             `bson:"slug"`
	Description string             `bson:"description"`
	Overview    string             `bson:"overview"`
	Image       string             `bson:"image"`
	Venue       string             `bson:"venue"`
	Location    string             `bson:"location"`
	Date        string             `bson:"date"`
	Time        string             `bson:"time"`
	Mode        string             `bson:"mode"`
	Audience    string             `bson:"audience"`
	Agenda      []string           `bson:"agenda"`
	Organizer   string             `bson:"organizer"`
	Tags        []string           `bson:"tags"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

type bookingDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	EventID   string             `bson:"eventId"`
	Slug      string             `bson:"slug"`
	Email     string             `bson:"email"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (s *Storage) database(ctx context.Context) (*mongo.Database, error) {
	const op = "storage.mongodb.database"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	if s.uri == "" {
		return nil, fmt.Errorf("%s: MONGODB_URI is not set: %w", op, storage.ErrNotConfigured)
	}

	opts := options.Client().ApplyURI(s.uri)
	if s.timeout > 0 {
		opts.SetServerSelectionTimeout(s.timeout).SetConnectTimeout(s.timeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}

	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}

	db := client.Database(s.dbName)
	if err = ensureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}

	s.client, s.db = client, db

	return db, nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(eventsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(bookingsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "eventId", Value: 1}},
	})

	return err
}

func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}

	err := s.client.Disconnect(context.Background())
	s.client, s.db = nil, nil

	return err
}

func (s *Storage) CreateEvent(ctx context.Context, event models.Event) (*models.Event, error) {
	if err := storage.PrepareEvent(&event); err != nil {
		return nil, err
	}

	db, err := s.database(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := toEventDocument(event)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt, doc.UpdatedAt = now, now

	if _, err = db.Collection(eventsCollection).InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", classify(err))
	}

	created := doc.toModel()

	return &created, nil
}

func (s *Storage) GetEventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	db, err := s.database(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	var doc eventDocument
	err = db.Collection(eventsCollection).FindOne(ctx, bson.M{"slug": slug}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", classify(err))
	}

	event := doc.toModel()

	return &event, nil
}

func (s *Storage) GetAllEvents(ctx context.Context) ([]models.Event, error) {
	db, err := s.database(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	events, err := s.find(ctx, db, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	return events, nil
}

// GetSimilarEvents returns events sharing at least one tag, excluding excludeID.
func (s *Storage) GetSimilarEvents(ctx context.Context, excludeID string, tags []string) ([]models.Event, error) {
	oid, err := primitive.ObjectIDFromHex(excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get similar events: invalid id %q: %w", excludeID, err)
	}

	db, err := s.database(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get similar events: %w", err)
	}

	filter := bson.M{
		"_id":  bson.M{"$ne": oid},
		"tags": bson.M{"$in": tags},
	}

	events, err := s.find(ctx, db, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get similar events: %w", err)
	}

	return events, nil
}

func (s *Storage) find(ctx context.Context, db *mongo.Database, filter bson.M) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "slug", Value: 1},
	})

	cursor, err := db.Collection(eventsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, classify(err)
	}

	var docs []eventDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, classify(err)
	}

	events := make([]models.Event, 0, len(docs))
	for _, doc := range docs {
		events = append(events, doc.toModel())
	}

	return events, nil
}

func (s *Storage) CreateBooking(ctx context.Context, booking models.Booking) (*models.Booking, error) {
	if err := storage.PrepareBooking(&booking); err != nil {
		return nil, err
	}

	db, err := s.database(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := bookingDocument{
		ID:        primitive.NewObjectID(),
		EventID:   booking.EventID,
		Slug:      booking.Slug,
		Email:     booking.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err = db.Collection(bookingsCollection).InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", classify(err))
	}

	booking.ID = doc.ID.Hex()
	booking.CreatedAt = now

	return &booking, nil
}

func toEventDocument(e models.Event) eventDocument {
	return eventDocument{
		Title:       e.Title,
		Slug:        e.Slug,
		Description: e.Description,
		Overview:    e.Overview,
		Image:       e.Image,
		Venue:       e.Venue,
		Location:    e.Location,
		Date:        e.Date,
		Time:        e.Time,
		Mode:        e.Mode,
		Audience:    e.Audience,
		Agenda:      e.Agenda,
		Organizer:   e.Organizer,
		Tags:        e.Tags,
	}
}

// toModel copies a decoded document into a plain model value.
func (d eventDocument) toModel() models.Event {
	agenda := d.Agenda
	if agenda == nil {
		agenda = []string{}
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}

	return models.Event{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Slug:        d.Slug,
		Description: d.Description,
		Overview:    d.Overview,
		Image:       d.Image,
		Venue:       d.Venue,
		Location:    d.Location,
		Date:        d.Date,
		Time:        d.Time,
		Mode:        d.Mode,
		Audience:    d.Audience,
		Agenda:      agenda,
		Organizer:   d.Organizer,
		Tags:        tags,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// classify translates driver errors into the storage error taxonomy.
func classify(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return storage.UniquenessConflict(err, duplicateConflicts(err)...)
	}

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, wErr := range we.WriteErrors {
			if wErr.Code == codeDocumentValidation {
				return storage.ValidationFailed(validationViolations(wErr)...)
			}
		}
	}

	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %w", storage.ErrUnavailable, err)
	}

	return err
}

// validationDetails is the part of a $jsonSchema rejection that names fields.
type validationDetails struct {
	SchemaRulesNotSatisfied []struct {
		OperatorName           string   `bson:"operatorName"`
		MissingProperties      []string `bson:"missingProperties"`
		PropertiesNotSatisfied []struct {
			PropertyName string `bson:"propertyName"`
		} `bson:"propertiesNotSatisfied"`
	} `bson:"schemaRulesNotSatisfied"`
}

func validationViolations(wErr mongo.WriteError) []storage.FieldViolation {
	var violations []storage.FieldViolation

	var details validationDetails
	if len(wErr.Details) > 0 && bson.Unmarshal(wErr.Details, &details) == nil {
		for _, rule := range details.SchemaRulesNotSatisfied {
			for _, name := range rule.MissingProperties {
				violations = append(violations, storage.FieldViolation{
					Field:   name,
					Message: name + " is required",
				})
			}
			for _, prop := range rule.PropertiesNotSatisfied {
				violations = append(violations, storage.FieldViolation{
					Field:   prop.PropertyName,
					Message: prop.PropertyName + " failed document validation",
				})
			}
		}
	}

	if len(violations) == 0 {
		violations = append(violations, storage.FieldViolation{Field: "document", Message: wErr.Message})
	}

	return violations
}

func duplicateConflicts(err error) []storage.Conflict {
	var messages []string

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, wErr := range we.WriteErrors {
			messages = append(messages, wErr.Message)
		}
	}
	if len(messages) == 0 {
		messages = append(messages, err.Error())
	}

	var conflicts []storage.Conflict
	for _, msg := range messages {
		if m := dupKey.FindStringSubmatch(msg); m != nil {
			conflicts = append(conflicts, storage.Conflict{Field: m[1], Value: m[2]})
		}
	}

	return conflicts
}
