package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"devEvents/internal/config"
	"devEvents/internal/models"
	"devEvents/internal/storage"
	"embed"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"net"
	"regexp"
	"syscall"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	codeUniqueViolation  = "23505"
	codeNotNullViolation = "23502"
	codeCheckViolation   = "23514"
)

var duplicateDetail = regexp.MustCompile(`Key \((.+?)\)=\((.*)\) already exists`)

const eventColumns = `id, title, slug, description, overview, image, venue, location, date, time,
		mode, audience, agenda, organizer, tags, created_at, updated_at`

type Storage struct {
	DB *sql.DB
}

func InitDB(dbCfg *config.Database) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.User,
		dbCfg.Password,
		dbCfg.DBName,
		dbCfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", classify(err))
	}

	if err = migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return New(db), nil
}

func New(db *sql.DB) *Storage {
	return &Storage{DB: db}
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

func (s *Storage) CreateEvent(ctx context.Context, event models.Event) (*models.Event, error) {
	if err := storage.PrepareEvent(&event); err != nil {
		return nil, err
	}

	event.ID = uuid.NewString()

	query := `
		INSERT INTO events (id, title, slug, description, overview, image, venue, location, date, time,
			mode, audience, agenda, organizer, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at`

	err := s.DB.QueryRowContext(ctx, query,
		event.ID,
		event.Title,
		event.Slug,
		event.Description,
		event.Overview,
		event.Image,
		event.Venue,
		event.Location,
		event.Date,
		event.Time,
		event.Mode,
		event.Audience,
		pq.Array(event.Agenda),
		event.Organizer,
		pq.Array(event.Tags),
	).Scan(&event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", classify(err))
	}

	return &event, nil
}

func (s *Storage) GetEventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE slug = $1`

	event, err := scanEvent(s.DB.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", classify(err))
	}

	return event, nil
}

func (s *Storage) GetAllEvents(ctx context.Context) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		ORDER BY created_at DESC, slug ASC`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", classify(err))
	}

	return collectEvents(rows)
}

// GetSimilarEvents returns events sharing at least one tag, excluding excludeID.
func (s *Storage) GetSimilarEvents(ctx context.Context, excludeID string, tags []string) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE id <> $1 AND tags && $2
		ORDER BY created_at DESC, slug ASC`

	rows, err := s.DB.QueryContext(ctx, query, excludeID, pq.Array(tags))
	if err != nil {
		return nil, fmt.Errorf("failed to get similar events: %w", classify(err))
	}

	return collectEvents(rows)
}

func (s *Storage) CreateBooking(ctx context.Context, booking models.Booking) (*models.Booking, error) {
	if err := storage.PrepareBooking(&booking); err != nil {
		return nil, err
	}

	booking.ID = uuid.NewString()

	query := `
		INSERT INTO bookings (id, event_id, slug, email)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := s.DB.QueryRowContext(ctx, query, booking.ID, booking.EventID, booking.Slug, booking.Email).
		Scan(&booking.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", classify(err))
	}

	return &booking, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var event models.Event
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Slug,
		&event.Description,
		&event.Overview,
		&event.Image,
		&event.Venue,
		&event.Location,
		&event.Date,
		&event.Time,
		&event.Mode,
		&event.Audience,
		pq.Array(&event.Agenda),
		&event.Organizer,
		pq.Array(&event.Tags),
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &event, nil
}

func collectEvents(rows *sql.Rows) ([]models.Event, error) {
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", classify(err))
	}

	return events, nil
}

// classify translates driver errors into the storage error taxonomy.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeUniqueViolation:
			return storage.UniquenessConflict(err, conflictFromDetail(pqErr))
		case codeNotNullViolation:
			return storage.ValidationFailed(storage.FieldViolation{
				Field:   pqErr.Column,
				Message: pqErr.Column + " is required",
			})
		case codeCheckViolation:
			field := pqErr.Column
			if field == "" {
				field = pqErr.Constraint
			}
			return storage.ValidationFailed(storage.FieldViolation{
				Field:   field,
				Message: pqErr.Message,
			})
		}
		return err
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %w", storage.ErrUnavailable, err)
	}

	return err
}

func conflictFromDetail(pqErr *pq.Error) storage.Conflict {
	if m := duplicateDetail.FindStringSubmatch(pqErr.Detail); m != nil {
		return storage.Conflict{Field: m[1], Value: m[2]}
	}

	return storage.Conflict{Field: pqErr.Constraint}
}
