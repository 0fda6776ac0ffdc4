package dispatch

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kopong25/freightquick/core/analytics"
	coredispatch "github.com/kopong25/freightquick/core/dispatch"
	"github.com/kopong25/freightquick/core/ledger"
	"github.com/kopong25/freightquick/core/model"
	"github.com/kopong25/freightquick/core/oracle"
	"github.com/kopong25/freightquick/pkg/export"
)

// NewDriversHandler returns an HTTP handler listing the fleet via
// GET /api/drivers. An optional status query parameter filters on the
// derived driver status (available, on_load, off_duty).
func NewDriversHandler(f *coredispatch.Facade) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		status := r.URL.Query().Get("status")
		out := []driverDTO{}
		for _, v := range f.Ledger().Drivers() {
			if status != "" && v.Status.String() != status {
				continue
			}
			out = append(out, toDriver(v))
		}
		writeJSON(w, out)
	})
}

// NewLoadsHandler returns an HTTP handler listing posted loads via
// GET /api/loads, with an optional status filter.
func NewLoadsHandler(f *coredispatch.Facade) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		status := r.URL.Query().Get("status")
		out := []loadDTO{}
		for _, v := range f.Ledger().Loads() {
			if status != "" && v.Status.String() != status {
				continue
			}
			out = append(out, toLoad(v))
		}
		writeJSON(w, out)
	})
}

// NewAssignmentsHandler returns an HTTP handler listing assignments via
// GET /api/assignments, newest first. driver_id and state filter the listing.
func NewAssignmentsHandler(f *coredispatch.Facade) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		driverID := r.URL.Query().Get("driver_id")
		state := r.URL.Query().Get("state")
		out := []assignmentDTO{}
		for _, a := range f.Ledger().Assignments() {
			if driverID != "" && a.DriverID != driverID {
				continue
			}
			if state != "" && a.State.String() != state {
				continue
			}
			out = append(out, toAssignment(a))
		}
		writeJSON(w, out)
	})
}

// NewMatchesHandler returns an HTTP handler computing ranked matches for a
// load via GET /api/matches?load_id=<id>.
func NewMatchesHandler(f *coredispatch.Facade) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		loadID := r.URL.Query().Get("load_id")
		if loadID == "" {
			http.Error(w, "load_id is required", http.StatusBadRequest)
			return
		}
		matches, err := f.FindMatches(r.Context(), loadID)
		if err != nil {
			writeDispatchError(w, err)
			return
		}
		out := make([]matchDTO, 0, len(matches))
		for _, m := range matches {
			out = append(out, toMatch(m))
		}
		writeJSON(w, out)
	})
}

type assignRequestDTO struct {
	LoadID           string            `json:"load_id"`
	DriverIDs        []string          `json:"driver_ids"`
	ExpectedVersions map[string]uint64 `json:"expected_versions,omitempty"`
}

// NewAssignHandler returns an HTTP handler committing assignments via
// POST /api/assign. The request may carry expected entity versions from a
// prior matches call; a stale version yields 409.
func NewAssignHandler(f *coredispatch.Facade) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req assignRequestDTO
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.LoadID == "" || len(req.DriverIDs) == 0 {
			http.Error(w, "load_id and driver_ids are required", http.StatusBadRequest)
			return
		}
		res, err := f.Assign(r.Context(), coredispatch.AssignRequest{
			DriverIDs:        req.DriverIDs,
			LoadID:           req.LoadID,
			ExpectedVersions: req.ExpectedVersions,
		})
		if err != nil {
			writeDispatchError(w, err)
			return
		}
		out := assignResponseDTO{
			Assignments: make([]assignmentDTO, 0, len(res.Assignments)),
			Routes:      make(map[string]routeDTO, len(res.Routes)),
		}
		for _, a := range res.Assignments {
			out.Assignments = append(out.Assignments, toAssignment(a))
		}
		for id, rt := range res.Routes {
			out.Routes[id] = toRoute(rt)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(out)
	})
}

type transitionRequestDTO struct {
	AssignmentID string `json:"assignment_id"`
}

// NewTransitionHandler returns an HTTP handler advancing an assignment's
// lifecycle. apply is one of the facade's Confirm, Complete or Cancel
// methods; the route path picks which.
func NewTransitionHandler(apply func(r *http.Request, assignmentID string) (model.Assignment, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req transitionRequestDTO
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.AssignmentID == "" {
			http.Error(w, "assignment_id is required", http.StatusBadRequest)
			return
		}
		a, err := apply(r, req.AssignmentID)
		if err != nil {
			writeDispatchError(w, err)
			return
		}
		writeJSON(w, toAssignment(a))
	})
}

type optimizeRequestDTO struct {
	DriverID string `json:"driver_id"`
}

// NewOptimizeHandler returns an HTTP handler rebuilding a driver's route via
// POST /api/routes/optimize.
func NewOptimizeHandler(f *coredispatch.Facade) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req optimizeRequestDTO
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.DriverID == "" {
			http.Error(w, "driver_id is required", http.StatusBadRequest)
			return
		}
		rt, err := f.OptimizeRoute(r.Context(), req.DriverID)
		if err != nil {
			writeDispatchError(w, err)
			return
		}
		writeJSON(w, toRoute(rt))
	})
}

// NewRoutesHandler returns an HTTP handler listing current route snapshots
// via GET /api/routes, or a single driver's route with ?driver_id=<id>.
func NewRoutesHandler(f *coredispatch.Facade) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if driverID := r.URL.Query().Get("driver_id"); driverID != "" {
			rt, ok := f.Ledger().Route(driverID)
			if !ok {
				http.Error(w, "no route for driver", http.StatusNotFound)
				return
			}
			writeJSON(w, toRoute(rt))
			return
		}
		out := []routeDTO{}
		for _, rt := range f.Ledger().Routes() {
			out = append(out, toRoute(rt))
		}
		writeJSON(w, out)
	})
}

// NewExportHandler returns an HTTP handler streaming the assignment history
// via GET /api/assignments/export?format=csv (default) or format=json.
func NewExportHandler(f *coredispatch.Facade) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		assignments := f.Ledger().Assignments()
		switch r.URL.Query().Get("format") {
		case "json":
			w.Header().Set("Content-Type", "application/json")
			if err := export.WriteJSON(w, assignments); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		case "", "csv":
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", `attachment; filename="assignments.csv"`)
			if err := export.WriteCSV(w, assignments); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		default:
			http.Error(w, "unknown export format", http.StatusBadRequest)
		}
	})
}

// NewAnalyticsHandler returns an HTTP handler exposing the fleet summary via
// GET /api/analytics.
func NewAnalyticsHandler(f *coredispatch.Facade) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, analytics.Compute(f.Ledger()))
	})
}

func decodeBody(r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid json body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeDispatchError maps the core error taxonomy onto HTTP status codes.
// Eligibility failures are the caller's problem (422), version races and
// state-machine violations are retryable conflicts (409), oracle outages
// are transient (503).
func writeDispatchError(w http.ResponseWriter, err error) {
	var (
		ineligible *ledger.IneligibleError
		conflict   *ledger.ConflictError
		transition *ledger.InvalidTransitionError
		oracleErr  *oracle.UnavailableError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &ineligible):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &conflict):
		status = http.StatusConflict
	case errors.As(err, &transition):
		status = http.StatusConflict
	case errors.As(err, &oracleErr):
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}
