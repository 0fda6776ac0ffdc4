package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kopong25/freightquick/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Store.Backend = "memory"
	cfg.Store.Seed = true
	cfg.Oracle.Provider = "haversine"
	cfg.Metrics.Sinks = []string{"nop"}
	cfg.Dispatch.SetDefaults()
	cfg.Oracle.SetDefaults()
	return cfg
}

func TestServiceAssemblesFromConfig(t *testing.T) {
	svc, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	defer func() { require.NoError(t, svc.Close()) }()

	rec := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// The seeded development fleet is hydrated into the ledger.
	rec = httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/drivers", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var drivers []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&drivers))
	require.Len(t, drivers, 11)

	rec = httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/loads", nil))
	var loads []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&loads))
	require.Len(t, loads, 8)
}

func TestServiceSeededMatchFlow(t *testing.T) {
	svc, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	loads := svc.Facade.Ledger().Loads()
	require.NotEmpty(t, loads)

	// Every seeded location carries coordinates, so the haversine oracle
	// can score the whole board.
	for _, l := range loads {
		_, err := svc.Facade.FindMatches(context.Background(), l.Load.ID)
		require.NoError(t, err)
	}
}

func TestServiceRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Sinks = []string{"bogus"}
	_, err := New(context.Background(), cfg)
	require.Error(t, err)
}
