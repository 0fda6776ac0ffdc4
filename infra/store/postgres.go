package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kopong25/freightquick/core/model"
	corestore "github.com/kopong25/freightquick/core/store"
	"github.com/kopong25/freightquick/infra/logger"
)

// PostgresConfig configures the PostgreSQL record store.
type PostgresConfig struct {
	DSN            string        `json:"dsn" koanf:"dsn"`
	ConnectTimeout time.Duration `json:"connect_timeout" koanf:"connect_timeout"`
}

// SetDefaults fills unset fields.
func (c *PostgresConfig) SetDefaults() {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
}

// Postgres is a RecordStore backed by PostgreSQL via pgx.
type Postgres struct {
	pool *pgxpool.Pool
	log  logger.Logger
}

// NewPostgres connects to the database and ensures the schema exists.
func NewPostgres(ctx context.Context, cfg PostgresConfig, log logger.Logger) (*Postgres, error) {
	cfg.SetDefaults()
	if log == nil {
		return nil, errors.New("store: nil logger provided to NewPostgres")
	}
	connCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	pool, err := pgxpool.New(connCtx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	if err := pool.Ping(connCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	p := &Postgres{pool: pool, log: log}
	if err := p.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS drivers (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			full_name TEXT NOT NULL,
			equipment TEXT NOT NULL,
			home_base TEXT NOT NULL,
			home_lat DOUBLE PRECISION DEFAULT 0,
			home_lon DOUBLE PRECISION DEFAULT 0,
			current_location TEXT NOT NULL,
			current_lat DOUBLE PRECISION DEFAULT 0,
			current_lon DOUBLE PRECISION DEFAULT 0,
			duty_hours_left DOUBLE PRECISION DEFAULT 0,
			on_time_rate DOUBLE PRECISION DEFAULT 0,
			loads_completed INTEGER DEFAULT 0,
			off_duty BOOLEAN DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS loads (
			id TEXT PRIMARY KEY,
			load_number TEXT NOT NULL,
			origin TEXT NOT NULL,
			origin_lat DOUBLE PRECISION DEFAULT 0,
			origin_lon DOUBLE PRECISION DEFAULT 0,
			destination TEXT NOT NULL,
			dest_lat DOUBLE PRECISION DEFAULT 0,
			dest_lon DOUBLE PRECISION DEFAULT 0,
			equipment TEXT NOT NULL,
			weight_lbs DOUBLE PRECISION DEFAULT 0,
			miles DOUBLE PRECISION DEFAULT 0,
			rate DOUBLE PRECISION DEFAULT 0,
			commodity TEXT,
			posted_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS assignments (
			id TEXT PRIMARY KEY,
			driver_id TEXT NOT NULL,
			load_id TEXT NOT NULL,
			state TEXT NOT NULL,
			category TEXT NOT NULL,
			score DOUBLE PRECISION DEFAULT 0,
			version BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS routes (
			id TEXT NOT NULL,
			driver_id TEXT PRIMARY KEY,
			stops JSONB NOT NULL,
			total_miles DOUBLE PRECISION DEFAULT 0,
			estimated_hours DOUBLE PRECISION DEFAULT 0,
			fuel_cost DOUBLE PRECISION DEFAULT 0,
			toll_cost DOUBLE PRECISION DEFAULT 0,
			version BIGINT NOT NULL,
			built_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

func (p *Postgres) Drivers(ctx context.Context) ([]model.Driver, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, username, full_name, equipment,
		home_base, home_lat, home_lon, current_location, current_lat, current_lon,
		duty_hours_left, on_time_rate, loads_completed, off_duty
		FROM drivers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) Driver(ctx context.Context, id string) (model.Driver, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, username, full_name, equipment,
		home_base, home_lat, home_lon, current_location, current_lat, current_lon,
		duty_hours_left, on_time_rate, loads_completed, off_duty
		FROM drivers WHERE id = $1`, id)
	if err != nil {
		return model.Driver{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		return model.Driver{}, corestore.ErrNotFound
	}
	return scanDriver(rows)
}

func scanDriver(row pgx.Row) (model.Driver, error) {
	var d model.Driver
	var equipment string
	err := row.Scan(&d.ID, &d.Username, &d.Name, &equipment,
		&d.HomeBase.Name, &d.HomeBase.Lat, &d.HomeBase.Lon,
		&d.CurrentLocation.Name, &d.CurrentLocation.Lat, &d.CurrentLocation.Lon,
		&d.DutyHoursLeft, &d.OnTimeRate, &d.LoadsCompleted, &d.OffDuty)
	if err != nil {
		return model.Driver{}, err
	}
	if d.Equipment, err = model.ParseEquipmentType(equipment); err != nil {
		return model.Driver{}, fmt.Errorf("driver %s: %w", d.ID, err)
	}
	return d, nil
}

func (p *Postgres) Loads(ctx context.Context) ([]model.Load, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, load_number,
		origin, origin_lat, origin_lon, destination, dest_lat, dest_lon,
		equipment, weight_lbs, miles, rate, commodity, posted_at
		FROM loads ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Load
	for rows.Next() {
		l, err := scanLoad(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (p *Postgres) Load(ctx context.Context, id string) (model.Load, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, load_number,
		origin, origin_lat, origin_lon, destination, dest_lat, dest_lon,
		equipment, weight_lbs, miles, rate, commodity, posted_at
		FROM loads WHERE id = $1`, id)
	if err != nil {
		return model.Load{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		return model.Load{}, corestore.ErrNotFound
	}
	return scanLoad(rows)
}

func scanLoad(row pgx.Row) (model.Load, error) {
	var l model.Load
	var equipment string
	var commodity *string
	err := row.Scan(&l.ID, &l.LoadNumber,
		&l.Origin.Name, &l.Origin.Lat, &l.Origin.Lon,
		&l.Destination.Name, &l.Destination.Lat, &l.Destination.Lon,
		&equipment, &l.WeightLbs, &l.Miles, &l.Rate, &commodity, &l.PostedAt)
	if err != nil {
		return model.Load{}, err
	}
	if commodity != nil {
		l.Commodity = *commodity
	}
	if l.Equipment, err = model.ParseEquipmentType(equipment); err != nil {
		return model.Load{}, fmt.Errorf("load %s: %w", l.ID, err)
	}
	return l, nil
}

// SaveAssignment upserts the assignment row.
func (p *Postgres) SaveAssignment(ctx context.Context, a model.Assignment) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO assignments
		(id, driver_id, load_id, state, category, score, version, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			state = EXCLUDED.state,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at`,
		a.ID, a.DriverID, a.LoadID, a.State.String(), a.Category.String(),
		a.Score, int64(a.Version), a.CreatedAt, a.UpdatedAt)
	return err
}

// SaveRoute upserts the driver's current route snapshot.
func (p *Postgres) SaveRoute(ctx context.Context, r model.Route) error {
	type stopRow struct {
		LoadID   string `json:"load_id"`
		Kind     string `json:"kind"`
		Location string `json:"location"`
	}
	stops := make([]stopRow, 0, len(r.Stops))
	for _, s := range r.Stops {
		stops = append(stops, stopRow{LoadID: s.LoadID, Kind: s.Kind.String(), Location: s.Location.Key()})
	}
	payload, err := json.Marshal(stops)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `INSERT INTO routes
		(id, driver_id, stops, total_miles, estimated_hours, fuel_cost, toll_cost, version, built_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (driver_id) DO UPDATE SET
			id = EXCLUDED.id,
			stops = EXCLUDED.stops,
			total_miles = EXCLUDED.total_miles,
			estimated_hours = EXCLUDED.estimated_hours,
			fuel_cost = EXCLUDED.fuel_cost,
			toll_cost = EXCLUDED.toll_cost,
			version = EXCLUDED.version,
			built_at = EXCLUDED.built_at`,
		r.ID, r.DriverID, payload, r.Miles, r.Hours, r.FuelCost, r.TollCost,
		int64(r.Version), r.BuiltAt)
	return err
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
