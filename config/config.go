// Package config wraps viper for engine configuration: flag, environment
// (QUORIDOR_ prefix), and config-file sources with sane defaults.
package config

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// DefaultLevel is the search depth bound used when none is configured.
	DefaultLevel = 2

	DefaultBombsPerPlayer = 1
)

// BoardSettings are the per-difficulty game dimensions.
type BoardSettings struct {
	Rows           int
	Cols           int
	WallsPerPlayer int
}

// SettingsForLevel maps a search level to board dimensions: deeper search is
// only tractable on smaller boards.
func SettingsForLevel(level int) BoardSettings {
	switch {
	case level <= 2:
		return BoardSettings{Rows: 9, Cols: 9, WallsPerPlayer: 10}
	case level <= 4:
		return BoardSettings{Rows: 7, Cols: 7, WallsPerPlayer: 7}
	default:
		return BoardSettings{Rows: 5, Cols: 5, WallsPerPlayer: 5}
	}
}

type Config struct {
	v *viper.Viper

	Level          int
	NumPlayers     int
	BombsPerPlayer int

	PersistentCache bool
	CachePath       string

	Debug bool
	Seed  string
}

// Load builds a Config from defaults, environment, and the given command
// line args, in increasing precedence.
func Load(args []string) (*Config, error) {
	v := viper.New()
	v.SetDefault("level", DefaultLevel)
	v.SetDefault("num-players", 2)
	v.SetDefault("bombs-per-player", DefaultBombsPerPlayer)
	v.SetDefault("persistent-cache", false)
	v.SetDefault("cache-path", "quoridor-cache.db")
	v.SetDefault("debug", false)
	v.SetDefault("seed", "")

	v.SetEnvPrefix("quoridor")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs := pflag.NewFlagSet("quoridor", pflag.ContinueOnError)
	fs.Int("level", DefaultLevel, "search depth bound")
	fs.Int("num-players", 2, "number of players (2 or 4)")
	fs.Int("bombs-per-player", DefaultBombsPerPlayer, "power bombs per player")
	fs.Bool("persistent-cache", false, "persist the search memo to sqlite across sessions")
	fs.String("cache-path", "quoridor-cache.db", "path for the persistent cache")
	fs.Bool("debug", false, "debug logging")
	fs.String("seed", "", "hex seed for deterministic tie-breaking")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	c := &Config{
		v:               v,
		Level:           v.GetInt("level"),
		NumPlayers:      v.GetInt("num-players"),
		BombsPerPlayer:  v.GetInt("bombs-per-player"),
		PersistentCache: v.GetBool("persistent-cache"),
		CachePath:       v.GetString("cache-path"),
		Debug:           v.GetBool("debug"),
		Seed:            v.GetString("seed"),
	}
	log.Debug().Int("level", c.Level).Bool("persistent-cache", c.PersistentCache).
		Msg("loaded-config")
	return c, nil
}

// Get returns an arbitrary raw config value, for shell `set`/`get` access.
func (c *Config) Get(key string) interface{} {
	return c.v.Get(key)
}
