package loader

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tOgg1/plasmid-browser/internal/logging"
	"github.com/tOgg1/plasmid-browser/internal/models"
)

// ErrStale is returned by Load when a newer load started before this one
// finished and its result was discarded.
var ErrStale = errors.New("load superseded by a newer request")

// Phase is where the loader is in its lifecycle.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseError   Phase = "error"
	PhaseReady   Phase = "ready"
)

// Status is the load status shown to the user. Err holds the last failure
// message and survives a new load starting until that load commits.
type Status struct {
	Phase Phase
	Err   string
}

// Loading reports whether a load is in flight.
func (s Status) Loading() bool { return s.Phase == PhaseLoading }

// Ticket identifies one load generation.
type Ticket struct {
	gen     uint64
	started time.Time
}

// Generation returns the ticket's generation number.
func (t Ticket) Generation() uint64 { return t.gen }

// Loader owns the committed dataset. Only the most recently begun load may
// replace it.
type Loader struct {
	fetcher Fetcher
	metrics *Metrics
	logger  zerolog.Logger

	mu      sync.Mutex
	gen     uint64
	dataset models.Dataset
	status  Status
}

// New creates a loader backed by fetcher. metrics may be nil.
func New(fetcher Fetcher, metrics *Metrics) *Loader {
	return &Loader{
		fetcher: fetcher,
		metrics: metrics,
		logger:  logging.Component("loader"),
		dataset: models.Dataset{Members: []models.Member{}, Rows: []models.Record{}},
		status:  Status{Phase: PhaseIdle},
	}
}

// Begin starts a new generation. Any ticket issued earlier becomes stale.
func (l *Loader) Begin() Ticket {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.status.Phase = PhaseLoading
	return Ticket{gen: l.gen, started: time.Now()}
}

// Fetch runs the underlying fetcher without touching loader state.
func (l *Loader) Fetch(ctx context.Context, token string) (models.Dataset, error) {
	return l.fetcher.Fetch(ctx, token)
}

// Commit applies a load outcome if ticket is still the latest generation.
// On success the dataset is replaced and the error cleared; on failure the
// previous dataset is kept. It reports whether the outcome was applied.
func (l *Loader) Commit(ticket Ticket, ds models.Dataset, err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	took := time.Since(ticket.started)
	if ticket.gen != l.gen {
		l.metrics.observe(OutcomeStale, took)
		l.logger.Debug().
			Uint64("generation", ticket.gen).
			Uint64("latest", l.gen).
			Msg("discarding stale load")
		return false
	}

	outcome := Outcome(err)
	l.metrics.observe(outcome, took)
	if err != nil {
		l.status = Status{Phase: PhaseError, Err: err.Error()}
		l.logger.Warn().
			Err(err).
			Str("outcome", outcome).
			Uint64("generation", ticket.gen).
			Msg("load failed")
		return true
	}

	if ds.Members == nil {
		ds.Members = []models.Member{}
	}
	if ds.Rows == nil {
		ds.Rows = []models.Record{}
	}
	l.dataset = ds
	l.status = Status{Phase: PhaseReady}
	l.metrics.setRows(len(ds.Rows))
	l.logger.Info().
		Int("rows", len(ds.Rows)).
		Int("members", len(ds.Members)).
		Uint64("generation", ticket.gen).
		Dur("took", took).
		Msg("dataset loaded")
	return true
}

// Load begins a generation, fetches, and commits. It returns the fetch
// error, or ErrStale when a newer load won.
func (l *Loader) Load(ctx context.Context, token string) error {
	ticket := l.Begin()
	ds, err := l.Fetch(ctx, token)
	if !l.Commit(ticket, ds, err) && err == nil {
		return ErrStale
	}
	return err
}

// Snapshot returns the committed dataset and the current status. The
// dataset must be treated as read-only.
func (l *Loader) Snapshot() (models.Dataset, Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dataset, l.status
}

// Status returns the current status.
func (l *Loader) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}
