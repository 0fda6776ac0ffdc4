package oracle

import (
	"context"
	"strings"

	"github.com/kopong25/freightquick/core/model"
	coreoracle "github.com/kopong25/freightquick/core/oracle"
)

// Leg is one configured lane in the static matrix.
type Leg struct {
	From  string  `json:"from" koanf:"from"`
	To    string  `json:"to" koanf:"to"`
	Miles float64 `json:"miles" koanf:"miles"`
	Hours float64 `json:"hours" koanf:"hours"`
	Toll  float64 `json:"toll" koanf:"toll"`
}

// Matrix answers distance queries from a configured leg table, falling back
// to a secondary oracle for lanes it does not know. Lookups are symmetric
// and case-insensitive on location names.
type Matrix struct {
	legs     map[string]coreoracle.Distance
	fallback coreoracle.DistanceOracle
}

// NewMatrix builds a Matrix from the configured legs. fallback may be nil,
// in which case unknown lanes are an error.
func NewMatrix(legs []Leg, fallback coreoracle.DistanceOracle) *Matrix {
	m := &Matrix{legs: make(map[string]coreoracle.Distance, 2*len(legs)), fallback: fallback}
	for _, l := range legs {
		d := coreoracle.Distance{Miles: l.Miles, Hours: l.Hours, Toll: l.Toll}
		if d.Hours == 0 && d.Miles > 0 {
			d.Hours = d.Miles / 55
		}
		m.legs[matrixKey(l.From, l.To)] = d
		m.legs[matrixKey(l.To, l.From)] = d
	}
	return m
}

func matrixKey(from, to string) string {
	return strings.ToLower(strings.TrimSpace(from)) + "|" + strings.ToLower(strings.TrimSpace(to))
}

// Distance answers from the table, then the fallback.
func (m *Matrix) Distance(ctx context.Context, from, to model.Location) (coreoracle.Distance, error) {
	if d, ok := m.legs[matrixKey(from.Name, to.Name)]; ok {
		return d, nil
	}
	if m.fallback != nil {
		return m.fallback.Distance(ctx, from, to)
	}
	return coreoracle.Distance{}, &coreoracle.UnavailableError{
		Err: errUnknownLane(from, to),
	}
}

type laneError struct{ from, to string }

func (e laneError) Error() string { return "oracle: unknown lane " + e.from + " -> " + e.to }

func errUnknownLane(from, to model.Location) error {
	return laneError{from: from.Key(), to: to.Key()}
}
