// Package oracle defines the distance capability the dispatch core depends
// on. The core never computes road distances itself; it asks an injected
// DistanceOracle and treats failures as transient infrastructure errors,
// distinct from business-rule rejections.
package oracle

import (
	"context"

	"github.com/kopong25/freightquick/core/model"
)

// Distance is the oracle's answer for one location pair.
type Distance struct {
	Miles float64
	Hours float64
	Toll  float64 // estimated toll cost for the leg, zero if unsupported
}

// DistanceOracle estimates deadhead and linehaul legs between two locations.
// Implementations may be remote and slow; callers must query the oracle
// before mutating any shared state, never in the middle of a commit.
type DistanceOracle interface {
	Distance(ctx context.Context, from, to model.Location) (Distance, error)
}

// Func adapts a plain function to the DistanceOracle interface.
type Func func(ctx context.Context, from, to model.Location) (Distance, error)

func (f Func) Distance(ctx context.Context, from, to model.Location) (Distance, error) {
	return f(ctx, from, to)
}
