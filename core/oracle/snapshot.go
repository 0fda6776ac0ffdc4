package oracle

import (
	"context"
	"fmt"

	"github.com/kopong25/freightquick/core/model"
)

// Snapshot is a prefetched view over a DistanceOracle. Prefetch resolves
// every pair up front, so the code running inside a ledger critical section
// can read distances without touching the network and without failing.
type Snapshot struct {
	legs map[string]Distance
}

func pairKey(from, to model.Location) string {
	return from.Key() + "|" + to.Key()
}

// Prefetch queries the oracle for every ordered pair of the given points and
// returns a Snapshot holding the answers. Any oracle error aborts the whole
// prefetch: a partially filled snapshot is worse than none.
func Prefetch(ctx context.Context, o DistanceOracle, points []model.Location) (*Snapshot, error) {
	s := &Snapshot{legs: make(map[string]Distance, len(points)*len(points))}
	for _, from := range points {
		for _, to := range points {
			key := pairKey(from, to)
			if _, ok := s.legs[key]; ok {
				continue
			}
			if from.Key() == to.Key() {
				s.legs[key] = Distance{}
				continue
			}
			d, err := o.Distance(ctx, from, to)
			if err != nil {
				return nil, err
			}
			s.legs[key] = d
		}
	}
	return s, nil
}

// Distance returns the prefetched leg. A missing pair indicates a
// programming error in the prefetch point set, not an oracle outage.
func (s *Snapshot) Distance(_ context.Context, from, to model.Location) (Distance, error) {
	if d, ok := s.legs[pairKey(from, to)]; ok {
		return d, nil
	}
	return Distance{}, fmt.Errorf("oracle snapshot: leg %s -> %s was not prefetched", from.Key(), to.Key())
}

// Leg is the context-free accessor for snapshot consumers. The second
// return reports whether the pair was prefetched; a missing pair must never
// be read as a zero-length leg.
func (s *Snapshot) Leg(from, to model.Location) (Distance, bool) {
	d, ok := s.legs[pairKey(from, to)]
	return d, ok
}
