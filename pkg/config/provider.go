package config

import (
	"fmt"
	"math"

	"github.com/chrissnell/evapo/pkg/et"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetSites() ([]SiteData, error)
	GetStorageConfig() (*StorageData, error)
	GetControllers() ([]ControllerData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Sites       []SiteData       `json:"sites"`
	Storage     StorageData      `json:"storage,omitempty"`
	Controllers []ControllerData `json:"controllers,omitempty"`
}

// SiteData describes a location whose evapotranspiration is computed from the
// readings of one weather station
type SiteData struct {
	Name         string          `json:"name"`
	StationName  string          `json:"station_name"`
	Latitude     float64         `json:"latitude"`  // degrees
	Longitude    float64         `json:"longitude"` // degrees
	Elevation    float64         `json:"elevation"` // metres
	WindHeight   float64         `json:"wind_height,omitempty"`
	Method       string          `json:"method,omitempty"`
	Coefficients CoefficientData `json:"coefficients,omitempty"`
}

// CoefficientData holds the per-method coefficients of a site. Zero values
// select the published defaults.
type CoefficientData struct {
	PenmanA     float64 `json:"penman_a,omitempty"`
	PenmanB     float64 `json:"penman_b,omitempty"`
	Alpha       float64 `json:"alpha,omitempty"`
	MakkinkF    float64 `json:"makkink_f,omitempty"`
	CropHeight  float64 `json:"crop_height,omitempty"`
	LAI         float64 `json:"lai,omitempty"`
	Canopy      string  `json:"canopy,omitempty"`      // fixed | lai
	Aerodynamic string  `json:"aerodynamic,omitempty"` // fixed | log_profile
	Fidelity    string  `json:"fidelity,omitempty"`    // reference | full
}

// StorageData holds the configuration for the storage backends
type StorageData struct {
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty"`
	Results     *ResultsData     `json:"results,omitempty"`
}

// TimescaleDBData points at the station readings database
type TimescaleDBData struct {
	ConnectionString string `json:"connection_string"`
}

// ResultsData points at the SQLite file computed runs are written to
type ResultsData struct {
	Path string `json:"path"`
}

// ControllerData holds the configuration for the controllers
type ControllerData struct {
	Type       string          `json:"type,omitempty"`
	RESTServer *RESTServerData `json:"rest,omitempty"`
}

type RESTServerData struct {
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
	Port       int    `json:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty"`
}

// Defaults
const (
	DefaultMethod     = "fao56"
	DefaultWindHeight = 2.0
	DefaultListenAddr = "0.0.0.0"
	DefaultPort       = 8080
)

// ApplyDefaults fills in optional values that were left empty
func (c *ConfigData) ApplyDefaults() {
	for i := range c.Sites {
		if c.Sites[i].Method == "" {
			c.Sites[i].Method = DefaultMethod
		}
		if c.Sites[i].WindHeight == 0 {
			c.Sites[i].WindHeight = DefaultWindHeight
		}
	}
	for i := range c.Controllers {
		rs := c.Controllers[i].RESTServer
		if rs == nil {
			continue
		}
		if rs.ListenAddr == "" {
			rs.ListenAddr = DefaultListenAddr
		}
		if rs.Port == 0 {
			rs.Port = DefaultPort
		}
	}
}

// Validate checks the configuration for values no site can be evaluated with
func (c *ConfigData) Validate() error {
	seen := make(map[string]bool)
	for _, s := range c.Sites {
		if s.Name == "" {
			return fmt.Errorf("site without a name")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate site name %q", s.Name)
		}
		seen[s.Name] = true

		if math.Abs(s.Latitude) > 90 {
			return fmt.Errorf("site %s: latitude %.2f out of range", s.Name, s.Latitude)
		}
		if math.Abs(s.Longitude) > 180 {
			return fmt.Errorf("site %s: longitude %.2f out of range", s.Name, s.Longitude)
		}
		if s.WindHeight < 0 {
			return fmt.Errorf("site %s: negative wind sensor height", s.Name)
		}
		if s.Method != "" {
			if _, err := et.ParseMethod(s.Method); err != nil {
				return fmt.Errorf("site %s: %w", s.Name, err)
			}
		}
		if _, err := et.ParseCanopyModel(s.Coefficients.Canopy); err != nil {
			return fmt.Errorf("site %s: %w", s.Name, err)
		}
		if _, err := et.ParseAerodynamicModel(s.Coefficients.Aerodynamic); err != nil {
			return fmt.Errorf("site %s: %w", s.Name, err)
		}
		if _, err := et.ParseFidelity(s.Coefficients.Fidelity); err != nil {
			return fmt.Errorf("site %s: %w", s.Name, err)
		}
	}
	return nil
}

// GetSite returns the named site
func (c *ConfigData) GetSite(name string) (*SiteData, bool) {
	for i := range c.Sites {
		if c.Sites[i].Name == name {
			return &c.Sites[i], true
		}
	}
	return nil, false
}
