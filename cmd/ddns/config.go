package main

import (
	"os"

	"github.com/jxo-me/curl-dyndns/config"
	"github.com/jxo-me/curl-dyndns/core/logger"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// overrides are the command line values layered on top of the config file.
// Zero values are not applied.
type overrides struct {
	URL         string
	Interval    int
	LogLevel    string
	LogFormat   string
	MetricsAddr string
}

func overridesFromContext(c *cli.Context) overrides {
	o := overrides{}
	if c.IsSet("url") {
		o.URL = c.String("url")
	}
	if c.IsSet("interval") {
		o.Interval = c.Int("interval")
	}
	if c.IsSet("log-level") {
		o.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-format") {
		o.LogFormat = c.String("log-format")
	}
	if c.IsSet("metrics-addr") {
		o.MetricsAddr = c.String("metrics-addr")
	}
	return o
}

func (o overrides) apply(cfg *config.Config) {
	if o.URL != "" {
		cfg.URL = o.URL
	}
	if o.Interval != 0 {
		cfg.ScanInterval = o.Interval
	}
	if o.LogLevel != "" || o.LogFormat != "" {
		if cfg.Log == nil {
			cfg.Log = &config.LogConfig{}
		}
		if o.LogLevel != "" {
			cfg.Log.Level = o.LogLevel
		}
		if o.LogFormat != "" {
			cfg.Log.Format = o.LogFormat
		}
	}
	if o.MetricsAddr != "" {
		cfg.Metrics = &config.MetricsConfig{Addr: o.MetricsAddr}
	}
}

// configSource reads the config file, or only the DDNS_* environment when
// there is no file, and applies the command line overrides.
type configSource struct {
	path      string
	overrides overrides
}

func newConfigSource(c *cli.Context) (*configSource, error) {
	path := c.String("config")
	if path == "" {
		path = config.GetConfigFilePath()
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "stat config %s", path)
		}
		if c.IsSet("config") {
			return nil, errors.Wrap(config.ErrNoConfigFile, path)
		}
		path = ""
	}
	return &configSource{path: path, overrides: overridesFromContext(c)}, nil
}

// Watched reports whether there is a file to watch for changes.
func (s *configSource) Watched() bool {
	return s.path != ""
}

// Read matches config.FileManager.ReadConfig.
func (s *configSource) Read(path string, log logger.ILogger) (config.Config, error) {
	cfg := config.Config{}
	if path != "" {
		if err := cfg.ReadFile(path); err != nil {
			return config.Config{}, err
		}
	} else if err := cfg.Load(config.NewViper()); err != nil {
		return config.Config{}, err
	}
	s.overrides.apply(&cfg)
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	if log != nil && path != "" {
		log.Debugf("Loaded config from %s", path)
	}
	return cfg, nil
}

func (s *configSource) Load() (config.Config, error) {
	return s.Read(s.path, nil)
}
