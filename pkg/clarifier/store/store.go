// Package store persists the knowledge index and the run ledger.
package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Store is the persistence interface for clarifier data.
type Store interface {
	Close() error

	// Knowledge index
	ImportDescriptions(ctx context.Context, descs []Description) (int, error)
	Descriptions(ctx context.Context, source, term string, limit int) ([]Description, error)
	CountDescriptions(ctx context.Context) (map[string]int64, error)

	// Run ledger
	BeginRun(ctx context.Context, r Run) error
	FinishRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	ListRuns(ctx context.Context, f RunFilter) ([]Run, error)
}

// Description is one knowledge corpus row.
type Description struct {
	Source string // corpus name, e.g. "webisa"
	Term   string
	Text   string
	Freq   float64
}

// RunStatus is the state of a ledger entry.
type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunDone    RunStatus = "done"
	RunSkipped RunStatus = "skipped"
	RunFailed  RunStatus = "failed"
)

// Run is one ranking run in the ledger.
type Run struct {
	ID              string
	Query           string
	Items           []string
	Status          RunStatus
	QueryCandidates int
	ItemCandidates  int
	Error           string
	StartedAt       time.Time
	FinishedAt      time.Time
}

// RunFilter selects ledger entries. Zero values match everything; Limit
// <= 0 means 50.
type RunFilter struct {
	Query  string
	Status RunStatus
	Limit  int
}

// IDs generates monotonic ULIDs for ledger entries.
type IDs struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDs creates an ID generator.
func NewIDs() *IDs {
	return &IDs{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns a fresh ULID string.
func (g *IDs) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Now(), g.entropy).String()
}
