// Package config loads application configuration from config.yaml, TWB_*
// environment variables, and defaults, and initializes the global logger.
package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/twbmap/twb-cli/internal/model"
	"github.com/twbmap/twb-cli/internal/source"
)

// Config holds the full application configuration.
type Config struct {
	Sheets  SheetsConfig  `yaml:"sheets" mapstructure:"sheets"`
	Maps    MapsConfig    `yaml:"maps" mapstructure:"maps"`
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// SheetsConfig identifies the spreadsheet and its tabs.
type SheetsConfig struct {
	ID   string       `yaml:"id" mapstructure:"id"`
	Tabs []source.Tab `yaml:"tabs" mapstructure:"tabs"`
}

// MapsConfig identifies the custom map to export as KML.
type MapsConfig struct {
	ID string `yaml:"id" mapstructure:"id"`
}

// GeocodeConfig configures the reverse-geocoding client.
type GeocodeConfig struct {
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent    string  `yaml:"user_agent" mapstructure:"user_agent"`
	RatePerSec   float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	CacheTTLDays int     `yaml:"cache_ttl_days" mapstructure:"cache_ttl_days"`
}

// DataConfig locates the on-disk outputs, cache, and run database.
type DataConfig struct {
	Dir      string `yaml:"dir" mapstructure:"dir"`
	CacheDir string `yaml:"cache_dir" mapstructure:"cache_dir"`
	RunsDB   string `yaml:"runs_db" mapstructure:"runs_db"`
}

// ServerConfig configures the read-only GeoJSON server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads config.yaml (optional), TWB_* environment variables, and
// defaults into a Config.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TWB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("sheets.id", "1jAMaD3afMfA19U2u1aRLkL0M-ufFvz1fKDpT_BraOfY")
	v.SetDefault("maps.id", "1QEJocnDLq-vO8XRTOfRa50sFfJ3tLns0")
	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "twb-cli/1.0")
	v.SetDefault("geocode.rate_per_sec", 1.0)
	v.SetDefault("geocode.cache_ttl_days", 7)
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.cache_dir", "data/cache")
	v.SetDefault("data.runs_db", "data/runs.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if len(cfg.Sheets.Tabs) == 0 {
		cfg.Sheets.Tabs = DefaultTabs()
	}
	return &cfg, nil
}

// DefaultTabs describes the three known spreadsheet tabs.
func DefaultTabs() []source.Tab {
	return []source.Tab{
		{
			Name: "MALE TOILETS", GID: "0",
			NameHeader: "Location", AddressHeader: "Address",
			RemarksHeader: "Remarks", RegionHeader: "Region",
			Gender: model.GenderMale,
		},
		{
			Name: "FEMALE TOILETS", GID: "1908890944",
			NameHeader: "Location", AddressHeader: "Address",
			RemarksHeader: "Remarks", RegionHeader: "Region",
			Gender: model.GenderFemale,
		},
		{
			Name: "HOTEL ROOMS W BIDET", GID: "1650628758",
			NameHeader: "Hotel", AddressHeader: "Location",
			RemarksHeader: "Room Name w bidet (if applicable)",
			Gender:        model.GenderAny,
		},
	}
}

// SheetCSVURL builds the CSV export URL for one tab.
func (c SheetsConfig) SheetCSVURL(tab source.Tab) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=%s", c.ID, tab.GID)
}

// KMLURL builds the KML export URL for the custom map.
func (c MapsConfig) KMLURL() string {
	return fmt.Sprintf("https://www.google.com/maps/d/kml?mid=%s&forcekml=1", c.ID)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
