// Package store defines the record-store shape the dispatch core consumes:
// driver and load snapshots in, assignment and route changes out. How the
// records are kept durable is the store's business, not the core's.
package store

import (
	"context"
	"errors"

	"github.com/kopong25/freightquick/core/model"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// RecordStore is the persistence boundary of the dispatch core.
type RecordStore interface {
	Drivers(ctx context.Context) ([]model.Driver, error)
	Driver(ctx context.Context, id string) (model.Driver, error)
	Loads(ctx context.Context) ([]model.Load, error)
	Load(ctx context.Context, id string) (model.Load, error)
	SaveAssignment(ctx context.Context, a model.Assignment) error
	SaveRoute(ctx context.Context, r model.Route) error
	Close() error
}
