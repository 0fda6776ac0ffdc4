package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kopong25/freightquick/core/model"
)

func fixtures() []model.Assignment {
	created := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return []model.Assignment{
		{ID: "a1", DriverID: "d1", LoadID: "l1", State: model.AssignmentConfirmed,
			Category: model.MatchSourceLoad, Score: 98.5, CreatedAt: created},
		{ID: "a2", DriverID: "d2", LoadID: "l2", State: model.AssignmentPending,
			Category: model.MatchOneHrToSource, Score: 74.2, CreatedAt: created},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, fixtures()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "assignment_id,driver_id,load_id,state,category,score,created_at", lines[0])
	require.Contains(t, lines[1], "a1,d1,l1,confirmed,SOURCE_LOAD,98.5")
	require.Contains(t, lines[2], "ONE_HR_TO_SOURCE")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, fixtures()))

	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	require.Equal(t, "pending", out[1]["state"])
	require.Equal(t, "2026-03-14T09:00:00Z", out[0]["created_at"])
}
