// Package config loads the static startup table the façade requires: the
// supported symbol set plus each symbol's tick/lot sizes, and the
// transport listen addresses. spec.md §9 leaves tick/lot validation rules
// unspecified by the source; this package is where an operator supplies
// them.
package config

import (
	"fmt"

	"matchcore/internal/common"
	"matchcore/internal/engine"

	"github.com/spf13/viper"
)

// SymbolConfig is the on-disk shape of one symbol's entry.
type SymbolConfig struct {
	Symbol string `mapstructure:"symbol"`
	Tick   string `mapstructure:"tick"`
	Lot    string `mapstructure:"lot"`
}

// Config is the engine's startup configuration.
type Config struct {
	HTTPAddr   string         `mapstructure:"http_addr"`
	WSAddr     string         `mapstructure:"ws_addr"`
	QueueDepth int            `mapstructure:"queue_depth"`
	Symbols    []SymbolConfig `mapstructure:"symbols"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("http_addr", "0.0.0.0:8080")
	v.SetDefault("ws_addr", "0.0.0.0:8081")
	v.SetDefault("queue_depth", 256)
}

// Load reads symbol/tick/lot and listen-address configuration from path
// (YAML or JSON, anything viper supports) with environment overrides
// under the MATCHCORE_ prefix.
func Load(path string) (Config, error) {
	v := viper.New()
	defaults(v)
	v.SetConfigFile(path)
	v.SetEnvPrefix("matchcore")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(cfg.Symbols) == 0 {
		return Config{}, fmt.Errorf("config %s: no symbols configured", path)
	}
	return cfg, nil
}

// SymbolSpecs converts the on-disk symbol table into engine.SymbolSpec,
// parsing tick/lot as exact decimals.
func (c Config) SymbolSpecs() ([]engine.SymbolSpec, error) {
	specs := make([]engine.SymbolSpec, 0, len(c.Symbols))
	for _, s := range c.Symbols {
		tick, err := common.ParsePrice(s.Tick)
		if err != nil {
			return nil, fmt.Errorf("symbol %s: tick: %w", s.Symbol, err)
		}
		lot, err := common.ParseQuantity(s.Lot)
		if err != nil {
			return nil, fmt.Errorf("symbol %s: lot: %w", s.Symbol, err)
		}
		specs = append(specs, engine.SymbolSpec{
			Symbol:   s.Symbol,
			TickSize: tick,
			LotSize:  lot,
		})
	}
	return specs, nil
}
