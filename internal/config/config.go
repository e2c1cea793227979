// Package config loads application settings, scene files and charge presets.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/perf"
	"github.com/semo00000/champ-electrostatique/internal/scene"
)

const (
	DefaultWidth     = 1280
	DefaultHeight    = 800
	DefaultSpeed     = 1.0

	// FromTier leaves density, particle_count or arrow_grid to the
	// profile of the resolved quality tier.
	FromTier = 0

	// AutoQuality asks for the tier detected from the hardware.
	AutoQuality = -1

	EnvPrefix = "CHAMP"
)

type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names the colour of each level in console output.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

type Settings struct {
	Quality   int          `mapstructure:"quality" yaml:"quality"`
	AutoAdapt bool         `mapstructure:"auto_adapt" yaml:"auto_adapt"`
	Density   int          `mapstructure:"density" yaml:"density"`
	Particles int          `mapstructure:"particle_count" yaml:"particle_count"`
	ArrowGrid int          `mapstructure:"arrow_grid" yaml:"arrow_grid"`
	Speed     float64      `mapstructure:"speed" yaml:"speed"`
	Width     int          `mapstructure:"width" yaml:"width"`
	Height    int          `mapstructure:"height" yaml:"height"`
	Heatmap   string       `mapstructure:"heatmap" yaml:"heatmap"`
	StoreDir  string       `mapstructure:"store_dir" yaml:"store_dir"`
	Logger    LoggerConfig `mapstructure:"logger" yaml:"logger"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("quality", AutoQuality)
	v.SetDefault("auto_adapt", true)
	v.SetDefault("density", FromTier)
	v.SetDefault("particle_count", FromTier)
	v.SetDefault("arrow_grid", FromTier)
	v.SetDefault("speed", DefaultSpeed)
	v.SetDefault("width", DefaultWidth)
	v.SetDefault("height", DefaultHeight)
	v.SetDefault("heatmap", "off")
	v.SetDefault("store_dir", "sessions")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "champ")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")
}

// NewViper returns a viper instance with defaults, CHAMP_ environment
// overrides and, when present, champ.yaml from the working directory or
// $HOME/.config/champ. An explicit cfgFile must exist.
func NewViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "champ"))
		}
		v.SetConfigName("champ")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

func NewSettingsFromViper(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &s, nil
}

func (s *Settings) Validate() error {
	if s.Quality != AutoQuality {
		if _, ok := perf.ClampTier(s.Quality); !ok {
			return fmt.Errorf("%w: quality %d", core.ErrTierOutOfRange, s.Quality)
		}
	}
	if s.Width < 64 || s.Height < 64 {
		return fmt.Errorf("%w: viewport %dx%d is smaller than 64x64", core.ErrInvalidSettings, s.Width, s.Height)
	}
	if _, err := core.ParseHeatmapMode(s.Heatmap); err != nil {
		return err
	}
	return s.Scene(perf.MinTier).Validate()
}

// ResolveQuality returns the configured tier, or detected when the
// configuration asks for automatic selection.
func (s *Settings) ResolveQuality(detected int) int {
	if s.Quality == AutoQuality {
		t, _ := perf.ClampTier(detected)
		return t
	}
	return s.Quality
}

// Scene converts the settings into the scene's knobs at tier quality.
// Knobs left at FromTier take the tier profile's value.
func (s *Settings) Scene(quality int) scene.Settings {
	prof := perf.ForTier(quality)
	return scene.Settings{
		Density:   orTier(s.Density, prof.Density),
		Particles: orTier(s.Particles, prof.Particles),
		ArrowGrid: orTier(s.ArrowGrid, prof.ArrowGrid),
		Speed:     s.Speed,
		Quality:   quality,
		AutoAdapt: s.AutoAdapt,
	}
}

func orTier(v, tier int) int {
	if v == FromTier {
		return tier
	}
	return v
}

// HeatmapMode parses the heatmap name; Validate guarantees it is known.
func (s *Settings) HeatmapMode() core.HeatmapMode {
	m, _ := core.ParseHeatmapMode(s.Heatmap)
	return m
}
