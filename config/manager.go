package config

import (
	"github.com/jxo-me/curl-dyndns/core/logger"
	"github.com/jxo-me/curl-dyndns/pkg/watcher"
	"github.com/pkg/errors"
)

// Notifier sends out config updates
type Notifier interface {
	ConfigDidUpdate(Config)
}

// Manager is the base functions of the config manager
type Manager interface {
	Start(Notifier) error
	Shutdown()
}

// FileManager watches the yaml config for changes
// sends updates to the service to reconfigure to match the updated config
type FileManager struct {
	watcher    watcher.Notifier
	notifier   Notifier
	configPath string
	logger     logger.ILogger
	ReadConfig func(string, logger.ILogger) (Config, error)
}

var _ Manager = (*FileManager)(nil)

// NewFileManager creates a config manager
func NewFileManager(watcher watcher.Notifier, configPath string, log logger.ILogger) (*FileManager, error) {
	if log == nil {
		log = logger.Default()
	}
	m := &FileManager{
		watcher:    watcher,
		configPath: configPath,
		logger:     log,
		ReadConfig: ReadConfigFromPath,
	}
	err := watcher.Add(configPath)
	return m, err
}

// Start starts the runloop to watch for config changes
func (m *FileManager) Start(notifier Notifier) error {
	m.notifier = notifier

	// update the notifier with a fresh config on start
	config, err := m.GetConfig()
	if err != nil {
		return err
	}
	notifier.ConfigDidUpdate(config)

	m.watcher.Start(m)
	return nil
}

// GetConfig reads the yaml file from the disk
func (m *FileManager) GetConfig() (Config, error) {
	return m.ReadConfig(m.configPath, m.logger)
}

// Shutdown stops the watcher
func (m *FileManager) Shutdown() {
	m.watcher.Shutdown()
}

// WatcherItemDidChange notifies when the config file has changed
func (m *FileManager) WatcherItemDidChange(filepath string) {
	config, err := m.GetConfig()
	if err != nil {
		m.logger.Errorf("Failed to read new config: %v", err)
		return
	}
	m.logger.Infof("Config file %s has been updated", filepath)
	m.notifier.ConfigDidUpdate(config)
}

// WatcherDidError notifies when the watcher encountered an error
func (m *FileManager) WatcherDidError(err error) {
	m.logger.Errorf("Config watcher encountered an error: %v", err)
}

// ReadConfigFromPath reads, defaults and validates the config file at path.
func ReadConfigFromPath(configPath string, log logger.ILogger) (Config, error) {
	c := Config{}
	if err := c.ReadFile(configPath); err != nil {
		return Config{}, err
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, errors.WithMessagef(err, "config %s", configPath)
	}
	if log != nil {
		log.Debugf("Loaded config from %s", configPath)
	}
	return c, nil
}
