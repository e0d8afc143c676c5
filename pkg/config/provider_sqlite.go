package config

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	_ "modernc.org/sqlite"

	"github.com/chrissnell/greenhouse/internal/simulation"
	"github.com/chrissnell/greenhouse/pkg/migrate"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider and migrates
// the schema to the latest version
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if err := migrateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate configuration schema: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

func migrateSchema(db *sql.DB) error {
	migrations, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	return migrate.NewMigrator(db, migrate.NewFSProvider(migrations, "schema_migrations"), nil).MigrateUp()
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	sim, err := s.GetSimulationConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load simulation config: %w", err)
	}
	config.Simulation = *sim

	greenhouses, err := s.GetGreenhouses()
	if err != nil {
		return nil, fmt.Errorf("failed to load greenhouses: %w", err)
	}
	config.Greenhouses = greenhouses

	server, err := s.GetServerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	config.Server = *server

	logging, err := s.getLoggingConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load logging config: %w", err)
	}
	config.Logging = *logging

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// GetSimulationConfig returns the simulation timing settings
func (s *SQLiteProvider) GetSimulationConfig() (*SimulationData, error) {
	var months sql.NullInt64
	var duration, tick, stagger sql.NullString

	err := s.db.QueryRow(`SELECT months, duration, tick_interval, reveal_stagger FROM simulation WHERE id = 1`).
		Scan(&months, &duration, &tick, &stagger)
	if err == sql.ErrNoRows {
		return &SimulationData{RevealStagger: simulation.DefaultRevealStagger}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query simulation config: %w", err)
	}

	sim := &SimulationData{Months: int(months.Int64)}
	if sim.Duration, err = parseDuration("duration", duration.String); err != nil {
		return nil, err
	}
	if sim.TickInterval, err = parseDuration("tick_interval", tick.String); err != nil {
		return nil, err
	}
	if sim.RevealStagger, err = parseStagger(stagger.String); err != nil {
		return nil, err
	}

	return sim, nil
}

// GetGreenhouses returns greenhouse configurations in display order
func (s *SQLiteProvider) GetGreenhouses() ([]GreenhouseData, error) {
	rows, err := s.db.Query(`SELECT name, temperature, lights, co2 FROM greenhouses ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query greenhouses: %w", err)
	}
	defer rows.Close()

	var greenhouses []GreenhouseData
	for rows.Next() {
		var g GreenhouseData
		if err := rows.Scan(&g.Name, &g.Temperature, &g.Lights, &g.CO2); err != nil {
			return nil, fmt.Errorf("failed to scan greenhouse row: %w", err)
		}
		greenhouses = append(greenhouses, g)
	}

	return greenhouses, rows.Err()
}

// GetServerConfig returns the HTTP server settings
func (s *SQLiteProvider) GetServerConfig() (*ServerData, error) {
	var listenAddr, cert, key sql.NullString
	var port sql.NullInt64
	var cors bool

	err := s.db.QueryRow(`SELECT listen_addr, http_port, tls_cert, tls_key, enable_cors FROM server WHERE id = 1`).
		Scan(&listenAddr, &port, &cert, &key, &cors)
	if err == sql.ErrNoRows {
		return &ServerData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query server config: %w", err)
	}

	return &ServerData{
		ListenAddr: listenAddr.String,
		HTTPPort:   int(port.Int64),
		Cert:       cert.String,
		Key:        key.String,
		EnableCORS: cors,
	}, nil
}

func (s *SQLiteProvider) getLoggingConfig() (*LoggingData, error) {
	var debug bool
	var file sql.NullString

	err := s.db.QueryRow(`SELECT debug, file FROM logging WHERE id = 1`).Scan(&debug, &file)
	if err == sql.ErrNoRows {
		return &LoggingData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query logging config: %w", err)
	}

	return &LoggingData{Debug: debug, File: file.String}, nil
}

// SaveConfig replaces the stored configuration with configData
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"simulation", "greenhouses", "server", "logging"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	sim := configData.Simulation
	_, err = tx.Exec(`INSERT INTO simulation (id, months, duration, tick_interval, reveal_stagger) VALUES (1, ?, ?, ?, ?)`,
		sim.Months, durationString(sim.Duration), durationString(sim.TickInterval), sim.RevealStagger.String())
	if err != nil {
		return fmt.Errorf("failed to insert simulation config: %w", err)
	}

	for i, g := range configData.Greenhouses {
		_, err = tx.Exec(`INSERT INTO greenhouses (position, name, temperature, lights, co2) VALUES (?, ?, ?, ?, ?)`,
			i, g.Name, g.Temperature, g.Lights, g.CO2)
		if err != nil {
			return fmt.Errorf("failed to insert greenhouse %s: %w", g.Name, err)
		}
	}

	srv := configData.Server
	_, err = tx.Exec(`INSERT INTO server (id, listen_addr, http_port, tls_cert, tls_key, enable_cors) VALUES (1, ?, ?, ?, ?, ?)`,
		nullString(srv.ListenAddr), srv.HTTPPort, nullString(srv.Cert), nullString(srv.Key), srv.EnableCORS)
	if err != nil {
		return fmt.Errorf("failed to insert server config: %w", err)
	}

	_, err = tx.Exec(`INSERT INTO logging (id, debug, file) VALUES (1, ?, ?)`,
		configData.Logging.Debug, nullString(configData.Logging.File))
	if err != nil {
		return fmt.Errorf("failed to insert logging config: %w", err)
	}

	return tx.Commit()
}

// IsReadOnly returns false since SQLite supports writes
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func durationString(d time.Duration) sql.NullString {
	if d == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}
