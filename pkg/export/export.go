// Package export renders assignment listings for downstream tooling.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kopong25/freightquick/core/model"
)

// WriteJSON writes the assignments to w in JSON format.
func WriteJSON(w io.Writer, assignments []model.Assignment) error {
	out := make([]map[string]any, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, map[string]any{
			"id":         a.ID,
			"driver_id":  a.DriverID,
			"load_id":    a.LoadID,
			"state":      a.State.String(),
			"category":   a.Category.String(),
			"score":      a.Score,
			"created_at": a.CreatedAt.Format(time.RFC3339),
		})
	}
	return json.NewEncoder(w).Encode(out)
}

// WriteCSV writes the assignments to w in CSV format with a header row.
func WriteCSV(w io.Writer, assignments []model.Assignment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"assignment_id", "driver_id", "load_id", "state", "category", "score", "created_at"}); err != nil {
		return err
	}
	for _, a := range assignments {
		rec := []string{
			a.ID,
			a.DriverID,
			a.LoadID,
			a.State.String(),
			a.Category.String(),
			strconv.FormatFloat(a.Score, 'f', 1, 64),
			a.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
