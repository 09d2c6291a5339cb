package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Moontok/WorkshopApp/internal/cache"
	"github.com/Moontok/WorkshopApp/internal/config"
	"github.com/Moontok/WorkshopApp/internal/extract"
	"github.com/Moontok/WorkshopApp/internal/logger"
	"github.com/Moontok/WorkshopApp/internal/portal"
	"github.com/Moontok/WorkshopApp/internal/workshop"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
)

// MaxWorkers caps concurrent workshop fetches against the one portal session
const MaxWorkers = 4

// Session is the portal surface the pipeline drives
type Session interface {
	FetchListingPage(ctx context.Context) ([]byte, error)
	FetchDetailPage(ctx context.Context, workshopID string) ([]byte, error)
	FetchRosterPage(ctx context.Context, workshopID string) ([]byte, error)
	WorkshopURL(workshopID string) string
	Close() error
}

// Opener starts an authenticated session
type Opener func(ctx context.Context) (Session, error)

// Store is the cache the pipeline rebuilds
type Store interface {
	AllWorkshops(ctx context.Context) ([]*workshop.Workshop, error)
	Rebuild(ctx context.Context, workshops []*workshop.Workshop) error
}

// PortalOpener opens real portal sessions using cfg
func PortalOpener(cfg *config.Config, opts ...portal.Option) Opener {
	return func(ctx context.Context) (Session, error) {
		return portal.Open(ctx, cfg, opts...)
	}
}

// Result describes a completed sync cycle
type Result struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Workshops []*workshop.Workshop
	Diff      *workshop.DiffResult
}

// Pipeline syncs the portal into the cache
type Pipeline struct {
	open    Opener
	store   Store
	workers int
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithWorkers sets how many workshops are fetched at once, between 1 and MaxWorkers
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		switch {
		case n < 1:
			n = 1
		case n > MaxWorkers:
			n = MaxWorkers
		}
		p.workers = n
	}
}

// New creates a Pipeline
func New(open Opener, store Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		open:    open,
		store:   store,
		workers: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run performs one sync cycle
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}

	logger.Info("Sync started", logger.Fields{"run_id": result.RunID, "workers": p.workers})
	logger.IncrCounter("sync.runs")

	workshops, err := p.collect(ctx, result.RunID)
	if err != nil {
		logger.IncrCounter("sync.failures")
		logger.Error("Sync aborted, cache left unchanged", logger.Fields{"run_id": result.RunID}, err)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sync canceled before rebuild: %w", err)
	}

	previous, err := p.store.AllWorkshops(ctx)
	if err != nil && !errors.Is(err, cache.ErrNoCache) {
		logger.Warn("Could not read previous cache for diff", logger.Fields{
			"run_id": result.RunID,
			"error":  err.Error(),
		})
	}

	if err := p.store.Rebuild(ctx, workshops); err != nil {
		logger.IncrCounter("sync.failures")
		return nil, fmt.Errorf("rebuilding cache: %w", err)
	}

	result.Workshops = workshops
	result.Diff = workshop.Diff(previous, workshops)
	result.Duration = time.Since(result.StartedAt)

	logger.SetGauge("sync.workshops", float64(len(workshops)))
	logger.RecordTiming("sync.run", result.Duration)
	logger.Info("Sync complete", logger.Fields{
		"run_id":     result.RunID,
		"workshops":  len(workshops),
		"added":      len(result.Diff.Added),
		"removed":    len(result.Diff.Removed),
		"enrollment": len(result.Diff.EnrollmentChanged),
		"duration":   result.Duration.String(),
	})

	return result, nil
}

// collect assembles every listed workshop; the session is closed on every path
func (p *Pipeline) collect(ctx context.Context, runID string) ([]*workshop.Workshop, error) {
	sess, err := p.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening portal session: %w", err)
	}
	defer sess.Close()

	page, err := sess.FetchListingPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching listing: %w", err)
	}
	rows, err := extract.Listing(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("reading listing: %w", err)
	}

	logger.Debug("Listing extracted", logger.Fields{"run_id": runID, "rows": len(rows)})

	workshops := make([]*workshop.Workshop, len(rows))

	if p.workers <= 1 {
		for i, row := range rows {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("sync canceled after %d of %d workshops: %w", i, len(rows), err)
			}
			w, err := assemble(ctx, sess, row)
			if err != nil {
				return nil, err
			}
			workshops[i] = w
		}
		return workshops, nil
	}

	wp := pool.New().
		WithMaxGoroutines(p.workers).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for i, row := range rows {
		i, row := i, row
		wp.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			w, err := assemble(ctx, sess, row)
			if err != nil {
				return err
			}
			workshops[i] = w
			return nil
		})
	}

	if err := wp.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("sync canceled: %w", ctxErr)
		}
		return nil, err
	}
	return workshops, nil
}

// assemble merges a listing row with its detail and roster pages
func assemble(ctx context.Context, sess Session, row extract.ListingRow) (*workshop.Workshop, error) {
	start := time.Now()

	detailPage, err := sess.FetchDetailPage(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("workshop %s detail: %w", row.ID, err)
	}
	detail, err := extract.Detail(bytes.NewReader(detailPage))
	if err != nil {
		return nil, fmt.Errorf("workshop %s detail: %w", row.ID, err)
	}

	rosterPage, err := sess.FetchRosterPage(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("workshop %s roster: %w", row.ID, err)
	}
	participants, err := extract.Roster(bytes.NewReader(rosterPage))
	if err != nil {
		return nil, fmt.Errorf("workshop %s roster: %w", row.ID, err)
	}

	name := row.Name
	if name == "" {
		name = detail.Name
	}

	if seats, ok := detail.SeatsTaken(); ok && seats != row.SignedUp {
		logger.Warn("Detail page seat count differs from listing", logger.Fields{
			"workshop_id":  row.ID,
			"listing":      row.SignedUp,
			"seats_filled": seats,
		})
		logger.IncrCounter("sync.seat_mismatches")
	}

	logger.RecordTiming("sync.workshop", time.Since(start))

	return &workshop.Workshop{
		WorkshopID:          row.ID,
		Name:                name,
		StartDateAndTime:    row.StartDateAndTime,
		SignedUp:            row.SignedUp,
		ParticipantCapacity: row.Capacity,
		URL:                 sess.WorkshopURL(row.ID),
		Location:            detail.Location,
		Description:         detail.Description,
		Dates:               detail.Dates,
		Credits:             detail.Credits,
		Fees:                detail.Fee,
		Participants:        participants,
	}, nil
}
