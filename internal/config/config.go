// Package config resolves run settings from an optional config file and
// NUPOP_* environment variables. Command-line flags override both; the
// caller applies them on top of the returned Settings.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"nupop-core/errs"
	"nupop-core/model"
)

// EnvPrefix is prepended to every environment key (NUPOP_SPECIES, ...).
const EnvPrefix = "NUPOP"

// Settings are the tunables a config file or the environment may supply.
type Settings struct {
	Model     string `mapstructure:"model"`
	Species   string `mapstructure:"species"`
	Order     int    `mapstructure:"order"`
	LinkerCap int    `mapstructure:"linker_cap"`
	Threads   int    `mapstructure:"threads"`
	Format    string `mapstructure:"format"`
	Ambiguity string `mapstructure:"ambiguity"`
	MaxCells  int64  `mapstructure:"max_cells"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Defaults are the built-in values at the bottom of the precedence chain.
func Defaults() Settings {
	return Settings{
		Species:   "1",
		Order:     4,
		LinkerCap: model.DefaultLinkerCap,
		Format:    "text",
		Ambiguity: "reject",
		LogLevel:  "warn",
		LogFormat: "text",
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	d := Defaults()
	v.SetDefault("model", d.Model)
	v.SetDefault("species", d.Species)
	v.SetDefault("order", d.Order)
	v.SetDefault("linker_cap", d.LinkerCap)
	v.SetDefault("threads", d.Threads)
	v.SetDefault("format", d.Format)
	v.SetDefault("ambiguity", d.Ambiguity)
	v.SetDefault("max_cells", d.MaxCells)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (YAML, JSON or TOML by extension; empty means none) and
// the environment on top of Defaults.
func Load(path string) (Settings, error) {
	const op = "config.Load"
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, errs.Wrap(errs.Configuration, op, err)
		}
	}
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, errs.Wrap(errs.Configuration, op, err)
	}
	return s, nil
}
