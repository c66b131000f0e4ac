package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS configs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sites (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	config_id INTEGER NOT NULL REFERENCES configs(id),
	name TEXT NOT NULL,
	station_name TEXT,
	latitude REAL NOT NULL,
	longitude REAL NOT NULL,
	elevation REAL NOT NULL,
	wind_height REAL,
	method TEXT,
	penman_a REAL,
	penman_b REAL,
	alpha REAL,
	makkink_f REAL,
	crop_height REAL,
	lai REAL,
	canopy TEXT,
	aerodynamic TEXT,
	fidelity TEXT,
	UNIQUE (config_id, name)
);
CREATE TABLE IF NOT EXISTS storage_configs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	config_id INTEGER NOT NULL REFERENCES configs(id),
	backend_type TEXT NOT NULL,
	enabled INTEGER NOT NULL DEFAULT 1,
	timescale_connection_string TEXT,
	results_path TEXT
);
CREATE TABLE IF NOT EXISTS controller_configs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	config_id INTEGER NOT NULL REFERENCES configs(id),
	controller_type TEXT NOT NULL,
	enabled INTEGER NOT NULL DEFAULT 1,
	rest_cert TEXT,
	rest_key TEXT,
	rest_port INTEGER,
	rest_listen_addr TEXT
);
`

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider, creating the
// schema if the database is new
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

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create config schema: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	sites, err := s.GetSites()
	if err != nil {
		return nil, fmt.Errorf("failed to load sites: %w", err)
	}
	config.Sites = sites

	// Load storage
	storage, err := s.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	config.Storage = *storage

	// Load controllers
	controllers, err := s.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("failed to load controllers: %w", err)
	}
	config.Controllers = controllers

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// GetSites returns site configurations from the database
func (s *SQLiteProvider) GetSites() ([]SiteData, error) {
	query := `
		SELECT name, station_name, latitude, longitude, elevation, wind_height, method,
		       penman_a, penman_b, alpha, makkink_f, crop_height, lai,
		       canopy, aerodynamic, fidelity
		FROM sites
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
		ORDER BY name
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sites: %w", err)
	}
	defer rows.Close()

	var sites []SiteData
	for rows.Next() {
		var site SiteData
		var stationName, method, canopy, aerodynamic, fidelity sql.NullString
		var windHeight, penmanA, penmanB, alpha, makkinkF, cropHeight, lai sql.NullFloat64

		err := rows.Scan(
			&site.Name, &stationName, &site.Latitude, &site.Longitude, &site.Elevation,
			&windHeight, &method,
			&penmanA, &penmanB, &alpha, &makkinkF, &cropHeight, &lai,
			&canopy, &aerodynamic, &fidelity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site row: %w", err)
		}

		// NULL columns leave the zero value, which ApplyDefaults and the
		// equations treat as "use the default"
		site.StationName = stationName.String
		site.Method = method.String
		site.WindHeight = windHeight.Float64

		site.Coefficients = CoefficientData{
			PenmanA:     penmanA.Float64,
			PenmanB:     penmanB.Float64,
			Alpha:       alpha.Float64,
			MakkinkF:    makkinkF.Float64,
			CropHeight:  cropHeight.Float64,
			LAI:         lai.Float64,
			Canopy:      canopy.String,
			Aerodynamic: aerodynamic.String,
			Fidelity:    fidelity.String,
		}

		sites = append(sites, site)
	}

	return sites, rows.Err()
}

// GetStorageConfig returns storage configuration from the database
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	query := `
		SELECT backend_type, timescale_connection_string, results_path
		FROM storage_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default') AND enabled = 1
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query storage configs: %w", err)
	}
	defer rows.Close()

	storage := &StorageData{}

	for rows.Next() {
		var backendType string
		var connectionString, resultsPath sql.NullString

		if err := rows.Scan(&backendType, &connectionString, &resultsPath); err != nil {
			return nil, fmt.Errorf("failed to scan storage config row: %w", err)
		}

		switch backendType {
		case "timescaledb":
			if connectionString.Valid {
				storage.TimescaleDB = &TimescaleDBData{
					ConnectionString: connectionString.String,
				}
			}
		case "results":
			if resultsPath.Valid {
				storage.Results = &ResultsData{
					Path: resultsPath.String,
				}
			}
		}
	}

	return storage, rows.Err()
}

// GetControllers returns controller configurations from the database
func (s *SQLiteProvider) GetControllers() ([]ControllerData, error) {
	query := `
		SELECT controller_type, rest_cert, rest_key, rest_port, rest_listen_addr
		FROM controller_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default') AND enabled = 1
		ORDER BY controller_type
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query controller configs: %w", err)
	}
	defer rows.Close()

	var controllers []ControllerData

	for rows.Next() {
		var controllerType string
		var restCert, restKey, restListenAddr sql.NullString
		var restPort sql.NullInt64

		err := rows.Scan(&controllerType, &restCert, &restKey, &restPort, &restListenAddr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan controller config row: %w", err)
		}

		controller := ControllerData{
			Type: controllerType,
		}

		switch controllerType {
		case "rest":
			controller.RESTServer = &RESTServerData{
				Cert:       restCert.String,
				Key:        restKey.String,
				Port:       int(restPort.Int64),
				ListenAddr: restListenAddr.String,
			}
		}

		controllers = append(controllers, controller)
	}

	return controllers, rows.Err()
}

// IsReadOnly returns false since SQLite configuration can be modified
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

// Write methods for configuration management

// SaveConfig saves complete configuration to the database, replacing whatever
// was stored under the default config
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	// Start transaction
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Insert or update config record
	configID, err := s.insertConfig(tx, "default")
	if err != nil {
		return fmt.Errorf("failed to insert config: %w", err)
	}

	// Clear existing data
	if err := s.clearExistingConfig(tx, configID); err != nil {
		return fmt.Errorf("failed to clear existing config: %w", err)
	}

	for _, site := range configData.Sites {
		if err := s.insertSite(tx, configID, &site); err != nil {
			return fmt.Errorf("failed to insert site %s: %w", site.Name, err)
		}
	}

	// Insert storage configuration
	if err := s.insertStorageConfigs(tx, configID, &configData.Storage); err != nil {
		return fmt.Errorf("failed to insert storage configs: %w", err)
	}

	// Insert controllers
	for _, controller := range configData.Controllers {
		if err := s.insertController(tx, configID, &controller); err != nil {
			return fmt.Errorf("failed to insert controller %s: %w", controller.Type, err)
		}
	}

	// Commit transaction
	return tx.Commit()
}

func (s *SQLiteProvider) insertConfig(tx *sql.Tx, name string) (int64, error) {
	query := `
		INSERT INTO configs (name, created_at, updated_at) VALUES (?, datetime('now'), datetime('now'))
		ON CONFLICT(name) DO UPDATE SET updated_at = datetime('now')
	`
	if _, err := tx.Exec(query, name); err != nil {
		return 0, err
	}

	var id int64
	err := tx.QueryRow(`SELECT id FROM configs WHERE name = ?`, name).Scan(&id)
	return id, err
}

func (s *SQLiteProvider) clearExistingConfig(tx *sql.Tx, configID int64) error {
	queries := []string{
		"DELETE FROM sites WHERE config_id = ?",
		"DELETE FROM storage_configs WHERE config_id = ?",
		"DELETE FROM controller_configs WHERE config_id = ?",
	}

	for _, query := range queries {
		if _, err := tx.Exec(query, configID); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteProvider) insertSite(tx *sql.Tx, configID int64, site *SiteData) error {
	query := `
		INSERT INTO sites (config_id, name, station_name, latitude, longitude, elevation,
		                   wind_height, method, penman_a, penman_b, alpha, makkink_f,
		                   crop_height, lai, canopy, aerodynamic, fidelity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	c := site.Coefficients
	_, err := tx.Exec(query,
		configID, site.Name, nullString(site.StationName),
		site.Latitude, site.Longitude, site.Elevation,
		nullFloat64(site.WindHeight), nullString(site.Method),
		nullFloat64(c.PenmanA), nullFloat64(c.PenmanB), nullFloat64(c.Alpha), nullFloat64(c.MakkinkF),
		nullFloat64(c.CropHeight), nullFloat64(c.LAI),
		nullString(c.Canopy), nullString(c.Aerodynamic), nullString(c.Fidelity),
	)
	return err
}

func (s *SQLiteProvider) insertStorageConfigs(tx *sql.Tx, configID int64, storage *StorageData) error {
	query := `
		INSERT INTO storage_configs (config_id, backend_type, enabled, timescale_connection_string, results_path)
		VALUES (?, ?, 1, ?, ?)
	`

	if storage.TimescaleDB != nil {
		if _, err := tx.Exec(query, configID, "timescaledb", storage.TimescaleDB.ConnectionString, nil); err != nil {
			return err
		}
	}
	if storage.Results != nil {
		if _, err := tx.Exec(query, configID, "results", nil, storage.Results.Path); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteProvider) insertController(tx *sql.Tx, configID int64, controller *ControllerData) error {
	query := `
		INSERT INTO controller_configs (config_id, controller_type, enabled,
		                                rest_cert, rest_key, rest_port, rest_listen_addr)
		VALUES (?, ?, 1, ?, ?, ?, ?)
	`

	var cert, key, listenAddr interface{}
	var port interface{}
	if rs := controller.RESTServer; rs != nil {
		cert = nullString(rs.Cert)
		key = nullString(rs.Key)
		listenAddr = nullString(rs.ListenAddr)
		if rs.Port != 0 {
			port = rs.Port
		}
	}

	_, err := tx.Exec(query, configID, controller.Type, cert, key, port, listenAddr)
	return err
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat64(f float64) interface{} {
	if f == 0 {
		return nil
	}
	return f
}
