package query

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Moontok/WorkshopApp/internal/logger"
	"github.com/Moontok/WorkshopApp/internal/workshop"
)

// Source is the cache surface queries read from
type Source interface {
	AllWorkshops(ctx context.Context) ([]*workshop.Workshop, error)
	WorkshopsByID(ctx context.Context, workshopID string) ([]*workshop.Workshop, error)
}

// Totals aggregates the most recent search result
type Totals struct {
	NumberOfWorkshops    int `json:"number_of_workshops"`
	NumberOfParticipants int `json:"number_of_participants"`
}

// Criteria combines the search inputs the front end collects.
// A non-empty ID takes priority over everything else.
type Criteria struct {
	Phrase string
	ID     string
	From   *time.Time
	To     *time.Time
}

// Engine runs searches against a Source and remembers the last result's totals
type Engine struct {
	src Source

	mu     sync.Mutex
	totals Totals
}

// New creates an Engine reading from src
func New(src Source) *Engine {
	return &Engine{src: src}
}

// Totals returns the aggregates of the most recent search
func (e *Engine) Totals() Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totals
}

// Search dispatches to ByExactID, ByPhraseAndDateRange, or ByPhrase
func (e *Engine) Search(ctx context.Context, c Criteria) ([]*workshop.Workshop, error) {
	if id := strings.TrimSpace(c.ID); id != "" {
		return e.ByExactID(ctx, id)
	}

	if c.From != nil || c.To != nil {
		from := time.Time{}
		if c.From != nil {
			from = *c.From
		}
		to := time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
		if c.To != nil {
			to = *c.To
		}
		return e.ByPhraseAndDateRange(ctx, c.Phrase, from, to)
	}

	return e.ByPhrase(ctx, c.Phrase)
}

// ByPhrase returns workshops whose name contains phrase, ignoring case.
// The phrase is matched literally; an empty phrase matches everything.
func (e *Engine) ByPhrase(ctx context.Context, phrase string) ([]*workshop.Workshop, error) {
	matches, err := e.byPhrase(ctx, phrase)
	if err != nil {
		return nil, err
	}
	e.record(matches)
	return matches, nil
}

// ByPhraseAndDateRange applies ByPhrase and keeps workshops starting on a calendar day
// between start and end, both inclusive. Time of day in start and end is ignored.
// Workshops whose start date cannot be parsed are left out. An end before start matches nothing.
func (e *Engine) ByPhraseAndDateRange(ctx context.Context, phrase string, start, end time.Time) ([]*workshop.Workshop, error) {
	lo := calendarDay(start)
	hi := calendarDay(end)
	if hi.Before(lo) {
		empty := []*workshop.Workshop{}
		e.record(empty)
		return empty, nil
	}

	candidates, err := e.byPhrase(ctx, phrase)
	if err != nil {
		return nil, err
	}

	matches := make([]*workshop.Workshop, 0, len(candidates))
	for _, w := range candidates {
		day, err := w.StartDay()
		if err != nil {
			logger.Warn("Skipping workshop with unreadable start date", logger.Fields{
				"workshop_id": w.WorkshopID,
				"start":       w.StartDateAndTime,
			})
			continue
		}
		if !day.Before(lo) && !day.After(hi) {
			matches = append(matches, w)
		}
	}

	e.record(matches)
	return matches, nil
}

// ByExactID returns every cached workshop with the given id
func (e *Engine) ByExactID(ctx context.Context, workshopID string) ([]*workshop.Workshop, error) {
	matches, err := e.src.WorkshopsByID(ctx, strings.TrimSpace(workshopID))
	if err != nil {
		return nil, err
	}
	if len(matches) > 1 {
		logger.Warn("Duplicate workshop id in cache", logger.Fields{
			"workshop_id": workshopID,
			"rows":        len(matches),
		})
	}

	e.record(matches)
	return matches, nil
}

func (e *Engine) byPhrase(ctx context.Context, phrase string) ([]*workshop.Workshop, error) {
	re, err := regexp.Compile("(?i)" + EscapePhrase(phrase))
	if err != nil {
		return nil, fmt.Errorf("compiling search phrase: %w", err)
	}

	all, err := e.src.AllWorkshops(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]*workshop.Workshop, 0, len(all))
	for _, w := range all {
		if re.MatchString(w.Name) {
			matches = append(matches, w)
		}
	}
	return matches, nil
}

func (e *Engine) record(workshops []*workshop.Workshop) {
	t := Compute(workshops)

	e.mu.Lock()
	e.totals = t
	e.mu.Unlock()
}

// Compute returns the totals for a set of workshops
func Compute(workshops []*workshop.Workshop) Totals {
	t := Totals{NumberOfWorkshops: len(workshops)}
	for _, w := range workshops {
		t.NumberOfParticipants += w.SignedUp
	}
	return t
}

// metaChars are escaped in search phrases so user punctuation is matched literally
const metaChars = `[]\.^$*+?{}|()`

// EscapePhrase prefixes every regular expression metacharacter in phrase with a backslash
func EscapePhrase(phrase string) string {
	var b strings.Builder
	b.Grow(len(phrase))
	for _, r := range phrase {
		if strings.ContainsRune(metaChars, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
