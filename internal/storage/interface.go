// Package storage defines the records computed evapotranspiration runs are
// kept as and the interface storage backends implement.
package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when a run ID is unknown to the store
var ErrRunNotFound = errors.New("run not found")

// Run is one evaluation of a method over a range of days for a site
type Run struct {
	ID        uuid.UUID
	Site      string
	Method    string
	CreatedAt time.Time
	Days      []time.Time
	ET        []float64 // mm/day, aligned with Days
}

// Record is the stored value of one day of a run
type Record struct {
	RunID  uuid.UUID
	Site   string
	Method string
	Day    time.Time
	ET     float64
}

// ResultStore persists runs and answers queries over them
type ResultStore interface {
	Save(ctx context.Context, run Run) error
	Load(ctx context.Context, id uuid.UUID) (Run, error)
	// Site returns the latest stored value of every method for each day
	// in [from, to)
	Site(ctx context.Context, site string, from, to time.Time) ([]Record, error)
	Close() error
}

// StorageEngineInterface is implemented by backends that accept runs over a
// channel and write them in the background
type StorageEngineInterface interface {
	StartStorageEngine(context.Context, *sync.WaitGroup) chan<- Run
}
