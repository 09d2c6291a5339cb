package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Moontok/WorkshopApp/internal/workshop"
	_ "modernc.org/sqlite"
)

var (
	// ErrNoCache is returned by reads before any successful rebuild
	ErrNoCache = errors.New("no cached workshops yet")

	// ErrInvalidWorkshop rejects a rebuild containing a record without an id
	ErrInvalidWorkshop = errors.New("invalid workshop record")
)

const schema = `
CREATE TABLE workshops (
	id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	workshop_id          TEXT    NOT NULL,
	name                 TEXT    NOT NULL,
	start_date_and_time  TEXT    NOT NULL,
	signed_up            INTEGER NOT NULL,
	participant_capacity INTEGER NOT NULL,
	url                  TEXT    NOT NULL,
	location             TEXT    NOT NULL,
	description          TEXT    NOT NULL,
	dates                TEXT    NOT NULL,
	credits              TEXT    NOT NULL,
	fees                 TEXT    NOT NULL
);
CREATE INDEX idx_workshops_workshop_id ON workshops(workshop_id);
CREATE TABLE participant_information (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	workshop_row_id INTEGER NOT NULL REFERENCES workshops(id),
	workshop_id     TEXT    NOT NULL,
	name            TEXT    NOT NULL,
	email           TEXT    NOT NULL,
	school          TEXT    NOT NULL
);
CREATE INDEX idx_participant_information_workshop_id ON participant_information(workshop_id);
`

const workshopColumns = `id, workshop_id, name, start_date_and_time, signed_up, participant_capacity,
	url, location, description, dates, credits, fees`

// Cache is the local workshop store
type Cache struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// DefaultPath returns ~/.local/share/workshop-sync/workshops.db
func DefaultPath() string {
	return "~/.local/share/workshop-sync/workshops.db"
}

// Open opens (creating if needed) the cache database at path.
// A leading ~/ is expanded to the home directory and ":memory:" opens a private in-memory cache.
func Open(path string) (*Cache, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Cache{db: db, path: path}, nil
}

// Path returns the resolved database path
func (c *Cache) Path() string {
	return c.path
}

// Close releases the database handle
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Close()
}

// Rebuild replaces the cache contents with workshops in one transaction
func (c *Cache) Rebuild(ctx context.Context, workshops []*workshop.Workshop) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rebuild: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, stmt := range []string{
		"DROP TABLE IF EXISTS participant_information",
		"DROP TABLE IF EXISTS workshops",
		schema,
	} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("recreate tables: %w", err)
		}
	}

	insertWorkshop, err := tx.PrepareContext(ctx, `
		INSERT INTO workshops (workshop_id, name, start_date_and_time, signed_up, participant_capacity,
			url, location, description, dates, credits, fees)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare workshop insert: %w", err)
	}
	defer insertWorkshop.Close()

	insertParticipant, err := tx.PrepareContext(ctx, `
		INSERT INTO participant_information (workshop_row_id, workshop_id, name, email, school)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare participant insert: %w", err)
	}
	defer insertParticipant.Close()

	for i, w := range workshops {
		if w == nil || w.WorkshopID == "" {
			err = fmt.Errorf("%w: record %d has no workshop id", ErrInvalidWorkshop, i)
			return err
		}

		res, execErr := insertWorkshop.ExecContext(ctx,
			w.WorkshopID,
			w.Name,
			w.StartDateAndTime,
			w.SignedUp,
			w.ParticipantCapacity,
			w.URL,
			w.Location,
			w.Description,
			workshop.JoinDates(w.Dates),
			w.Credits,
			w.Fees,
		)
		if execErr != nil {
			err = fmt.Errorf("insert workshop %s: %w", w.WorkshopID, execErr)
			return err
		}
		rowID, idErr := res.LastInsertId()
		if idErr != nil {
			err = fmt.Errorf("workshop %s row id: %w", w.WorkshopID, idErr)
			return err
		}

		for _, p := range w.Participants {
			if _, err = insertParticipant.ExecContext(ctx, rowID, w.WorkshopID, p.Name, p.Email, p.School); err != nil {
				return fmt.Errorf("insert participant for %s: %w", w.WorkshopID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit rebuild: %w", err)
	}
	return nil
}

// AllWorkshops returns every cached workshop with its participants, in insertion order
func (c *Cache) AllWorkshops(ctx context.Context) ([]*workshop.Workshop, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.ensureTables(ctx); err != nil {
		return nil, err
	}

	set, err := c.queryWorkshops(ctx, "SELECT "+workshopColumns+" FROM workshops ORDER BY id")
	if err != nil {
		return nil, err
	}
	if err := c.attachParticipants(ctx, set, "SELECT workshop_row_id, name, email, school FROM participant_information ORDER BY id"); err != nil {
		return nil, err
	}
	return set.workshops, nil
}

// WorkshopsByID returns every cached workshop row with the given workshop id.
// The portal can list the same id more than once, so the result may hold duplicates.
func (c *Cache) WorkshopsByID(ctx context.Context, workshopID string) ([]*workshop.Workshop, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.ensureTables(ctx); err != nil {
		return nil, err
	}

	set, err := c.queryWorkshops(ctx, "SELECT "+workshopColumns+" FROM workshops WHERE workshop_id = ? ORDER BY id", workshopID)
	if err != nil {
		return nil, err
	}
	if err := c.attachParticipants(ctx, set,
		"SELECT workshop_row_id, name, email, school FROM participant_information WHERE workshop_id = ? ORDER BY id", workshopID); err != nil {
		return nil, err
	}
	return set.workshops, nil
}

// ParticipantsFor returns the participants of every cached row with the given workshop id
func (c *Cache) ParticipantsFor(ctx context.Context, workshopID string) ([]workshop.Participant, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.ensureTables(ctx); err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx,
		"SELECT name, email, school FROM participant_information WHERE workshop_id = ? ORDER BY id", workshopID)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	participants := make([]workshop.Participant, 0)
	for rows.Next() {
		var p workshop.Participant
		if err := rows.Scan(&p.Name, &p.Email, &p.School); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return participants, nil
}

// ensureTables returns ErrNoCache until the first successful rebuild
func (c *Cache) ensureTables(ctx context.Context) error {
	var n int
	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name IN ('workshops', 'participant_information')
	`).Scan(&n)
	if err != nil {
		return fmt.Errorf("inspect cache schema: %w", err)
	}
	if n != 2 {
		return ErrNoCache
	}
	return nil
}

// rowSet is a query result keyed by the workshops table's surrogate id
type rowSet struct {
	workshops []*workshop.Workshop
	byRowID   map[int64]*workshop.Workshop
}

func (c *Cache) queryWorkshops(ctx context.Context, query string, args ...any) (*rowSet, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query workshops: %w", err)
	}
	defer rows.Close()

	set := &rowSet{
		workshops: make([]*workshop.Workshop, 0),
		byRowID:   make(map[int64]*workshop.Workshop),
	}
	for rows.Next() {
		var (
			rowID int64
			dates string
			w     = &workshop.Workshop{Participants: []workshop.Participant{}}
		)
		err := rows.Scan(
			&rowID,
			&w.WorkshopID,
			&w.Name,
			&w.StartDateAndTime,
			&w.SignedUp,
			&w.ParticipantCapacity,
			&w.URL,
			&w.Location,
			&w.Description,
			&dates,
			&w.Credits,
			&w.Fees,
		)
		if err != nil {
			return nil, fmt.Errorf("scan workshop: %w", err)
		}
		w.Dates = workshop.SplitDates(dates)
		set.workshops = append(set.workshops, w)
		set.byRowID[rowID] = w
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workshops: %w", err)
	}
	return set, nil
}

func (c *Cache) attachParticipants(ctx context.Context, set *rowSet, query string, args ...any) error {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rowID int64
			p     workshop.Participant
		)
		if err := rows.Scan(&rowID, &p.Name, &p.Email, &p.School); err != nil {
			return fmt.Errorf("scan participant: %w", err)
		}
		if w, ok := set.byRowID[rowID]; ok {
			w.Participants = append(w.Participants, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate participants: %w", err)
	}
	return nil
}
