package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var yamlConfig struct {
		Sites       []SiteYAML       `yaml:"sites"`
		Storage     StorageYAML      `yaml:"storage,omitempty"`
		Controllers []ControllerYAML `yaml:"controllers,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	config := &ConfigData{
		Sites:       make([]SiteData, len(yamlConfig.Sites)),
		Controllers: make([]ControllerData, len(yamlConfig.Controllers)),
	}

	for i, site := range yamlConfig.Sites {
		config.Sites[i] = SiteData{
			Name:        site.Name,
			StationName: site.StationName,
			Latitude:    site.Latitude,
			Longitude:   site.Longitude,
			Elevation:   site.Elevation,
			WindHeight:  site.WindHeight,
			Method:      site.Method,
			Coefficients: CoefficientData{
				PenmanA:     site.Coefficients.PenmanA,
				PenmanB:     site.Coefficients.PenmanB,
				Alpha:       site.Coefficients.Alpha,
				MakkinkF:    site.Coefficients.MakkinkF,
				CropHeight:  site.Coefficients.CropHeight,
				LAI:         site.Coefficients.LAI,
				Canopy:      site.Coefficients.Canopy,
				Aerodynamic: site.Coefficients.Aerodynamic,
				Fidelity:    site.Coefficients.Fidelity,
			},
		}
	}

	if yamlConfig.Storage.TimescaleDB != nil {
		config.Storage.TimescaleDB = &TimescaleDBData{
			ConnectionString: yamlConfig.Storage.TimescaleDB.ConnectionString,
		}
	}
	if yamlConfig.Storage.Results != nil {
		config.Storage.Results = &ResultsData{
			Path: yamlConfig.Storage.Results.Path,
		}
	}

	for i, controller := range yamlConfig.Controllers {
		config.Controllers[i] = ControllerData{
			Type: controller.Type,
		}

		if controller.RESTServer != nil {
			config.Controllers[i].RESTServer = &RESTServerData{
				Cert:       controller.RESTServer.Cert,
				Key:        controller.RESTServer.Key,
				Port:       controller.RESTServer.Port,
				ListenAddr: controller.RESTServer.ListenAddr,
			}
		}
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

func (y *YAMLProvider) loaded() error {
	if y.config != nil {
		return nil
	}
	_, err := y.LoadConfig()
	return err
}

// GetSites returns site configurations
func (y *YAMLProvider) GetSites() ([]SiteData, error) {
	if err := y.loaded(); err != nil {
		return nil, err
	}
	return y.config.Sites, nil
}

// GetStorageConfig returns storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	if err := y.loaded(); err != nil {
		return nil, err
	}
	return &y.config.Storage, nil
}

// GetControllers returns controller configurations
func (y *YAMLProvider) GetControllers() ([]ControllerData, error) {
	if err := y.loaded(); err != nil {
		return nil, err
	}
	return y.config.Controllers, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with the file's key names
type SiteYAML struct {
	Name         string          `yaml:"name"`
	StationName  string          `yaml:"station-name"`
	Latitude     float64         `yaml:"latitude"`
	Longitude    float64         `yaml:"longitude"`
	Elevation    float64         `yaml:"elevation"`
	WindHeight   float64         `yaml:"wind-height,omitempty"`
	Method       string          `yaml:"method,omitempty"`
	Coefficients CoefficientYAML `yaml:"coefficients,omitempty"`
}

type CoefficientYAML struct {
	PenmanA     float64 `yaml:"penman-a,omitempty"`
	PenmanB     float64 `yaml:"penman-b,omitempty"`
	Alpha       float64 `yaml:"alpha,omitempty"`
	MakkinkF    float64 `yaml:"makkink-f,omitempty"`
	CropHeight  float64 `yaml:"crop-height,omitempty"`
	LAI         float64 `yaml:"lai,omitempty"`
	Canopy      string  `yaml:"canopy,omitempty"`
	Aerodynamic string  `yaml:"aerodynamic,omitempty"`
	Fidelity    string  `yaml:"fidelity,omitempty"`
}

type StorageYAML struct {
	TimescaleDB *TimescaleDBYAML `yaml:"timescaledb,omitempty"`
	Results     *ResultsYAML     `yaml:"results,omitempty"`
}

type TimescaleDBYAML struct {
	ConnectionString string `yaml:"connection-string"`
}

type ResultsYAML struct {
	Path string `yaml:"path"`
}

type ControllerYAML struct {
	Type       string          `yaml:"type"`
	RESTServer *RESTServerYAML `yaml:"rest,omitempty"`
}

type RESTServerYAML struct {
	Cert       string `yaml:"cert,omitempty"`
	Key        string `yaml:"key,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	ListenAddr string `yaml:"listen-addr,omitempty"`
}
