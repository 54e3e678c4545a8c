package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jxo-me/curl-dyndns/consts"
	"github.com/jxo-me/curl-dyndns/core/ddns"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFilePathENV = "DDNS_CONFIG_FILE_PATH"
	EnvPrefix         = "DDNS"
)

var (
	ErrNoConfigFile      = errors.New("config file not found")
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

var (
	global    = &Config{}
	globalMux sync.RWMutex
)

type Ipv4 struct {
	// 逗号分隔, 依次尝试
	URL     string        `yaml:"url,omitempty" json:"url,omitempty" mapstructure:"url"`
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty" mapstructure:"timeout" validate:"gte=0"`
}

type Ipv6 struct {
	// 获取IP类型 netInterface/url
	GetType      string `yaml:"get_type,omitempty" json:"getType,omitempty" mapstructure:"get_type" validate:"omitempty,oneof=netInterface url"`
	URL          string `yaml:"url,omitempty" json:"url,omitempty" mapstructure:"url"`
	NetInterface string `yaml:"net_interface,omitempty" json:"netInterface,omitempty" mapstructure:"net_interface"`
	// ipv6匹配正则表达式
	IPv6Reg string        `yaml:"ipv6_reg,omitempty" json:"IPv6Reg,omitempty" mapstructure:"ipv6_reg"`
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty" mapstructure:"timeout" validate:"gte=0"`
}

// Webhook 支持的变量 #{ipv4Addr} #{ipv6Addr} #{result} #{error}
type Webhook struct {
	WebhookURL string `yaml:"url,omitempty" json:"webhookURL,omitempty" mapstructure:"url" validate:"omitempty,url"`
	// 如 RequestBody 为空则为 GET 请求，否则为 POST 请求
	WebhookRequestBody string `yaml:"request_body,omitempty" json:"webhookRequestBody,omitempty" mapstructure:"request_body"`
	// 一行一个Header, 如：Authorization: Bearer API_KEY
	WebhookHeaders string `yaml:"headers,omitempty" json:"webhookHeaders,omitempty" mapstructure:"headers"`
}

type LogRotationConfig struct {
	MaxSize    int  `yaml:"max_size,omitempty" json:"maxSize,omitempty" mapstructure:"max_size"`
	MaxAge     int  `yaml:"max_age,omitempty" json:"maxAge,omitempty" mapstructure:"max_age"`
	MaxBackups int  `yaml:"max_backups,omitempty" json:"maxBackups,omitempty" mapstructure:"max_backups"`
	LocalTime  bool `yaml:"local_time,omitempty" json:"localTime,omitempty" mapstructure:"local_time"`
	Compress   bool `yaml:"compress,omitempty" json:"compress,omitempty" mapstructure:"compress"`
}

type LogConfig struct {
	// stderr, stdout, none or a file path
	Output   string             `yaml:"output,omitempty" json:"output,omitempty" mapstructure:"output"`
	Level    string             `yaml:"level,omitempty" json:"level,omitempty" mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error fatal"`
	Format   string             `yaml:"format,omitempty" json:"format,omitempty" mapstructure:"format" validate:"omitempty,oneof=text json"`
	Backend  string             `yaml:"backend,omitempty" json:"backend,omitempty" mapstructure:"backend" validate:"omitempty,oneof=zerolog logrus"`
	Rotation *LogRotationConfig `yaml:"rotation,omitempty" json:"rotation,omitempty" mapstructure:"rotation"`
}

type MetricsConfig struct {
	// listen address of the /metrics endpoint, empty disables it
	Addr string `yaml:"addr,omitempty" json:"addr,omitempty" mapstructure:"addr" validate:"omitempty,hostname_port"`
}

type Config struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty" mapstructure:"name"`
	// 更新地址, 可包含 %ip4% 和 %ip6%
	URL string `yaml:"url" json:"url" mapstructure:"url" validate:"required"`
	// 分钟
	ScanInterval  int            `yaml:"scan_interval" json:"scan_interval" mapstructure:"scan_interval" validate:"min=5"`
	UpdateTimeout time.Duration  `yaml:"update_timeout,omitempty" json:"update_timeout,omitempty" mapstructure:"update_timeout" validate:"gte=0"`
	Ipv4          *Ipv4          `yaml:"ipv4,omitempty" json:"ipv4,omitempty" mapstructure:"ipv4"`
	Ipv6          *Ipv6          `yaml:"ipv6,omitempty" json:"ipv6,omitempty" mapstructure:"ipv6"`
	Webhook       *Webhook       `yaml:"webhook,omitempty" json:"webhook,omitempty" mapstructure:"webhook"`
	Log           *LogConfig     `yaml:"log,omitempty" json:"log,omitempty" mapstructure:"log"`
	Metrics       *MetricsConfig `yaml:"metrics,omitempty" json:"metrics,omitempty" mapstructure:"metrics"`
}

// SetDefaults fills every unset field.
func (c *Config) SetDefaults() {
	if c.Name == "" {
		c.Name = consts.DefaultDDNSName
	}
	if c.ScanInterval == 0 {
		c.ScanInterval = consts.DefaultScanIntervalMinutes
	}
	if c.UpdateTimeout == 0 {
		c.UpdateTimeout = consts.DefaultUpdateTimeout
	}
	if c.Ipv4 == nil {
		c.Ipv4 = &Ipv4{}
	}
	if c.Ipv4.URL == "" {
		c.Ipv4.URL = consts.DefaultIPv4EchoURL
	}
	if c.Ipv4.Timeout == 0 {
		c.Ipv4.Timeout = consts.DefaultLookupTimeout
	}
	if c.Ipv6 == nil {
		c.Ipv6 = &Ipv6{}
	}
	if c.Ipv6.GetType == "" {
		c.Ipv6.GetType = consts.GetTypeNetInterface
	}
	if c.Ipv6.URL == "" {
		c.Ipv6.URL = consts.DefaultIPv6EchoURL
	}
	if c.Ipv6.IPv6Reg == "" {
		c.Ipv6.IPv6Reg = consts.DefaultIPv6Reg
	}
	if c.Ipv6.Timeout == 0 {
		c.Ipv6.Timeout = consts.DefaultLookupTimeout
	}
	if c.Log == nil {
		c.Log = &LogConfig{}
	}
}

// Validate returns ddns.ErrConfigMissing when there is no url to call.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return ddns.ErrConfigMissing
	}
	return validate().Struct(c)
}

// Interval is the scan interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.ScanInterval) * time.Minute
}

// ReadFile 读取配置文件, DDNS_* 环境变量优先
func (c *Config) ReadFile(file string) error {
	v := NewViper()
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(ErrNoConfigFile, file)
		}
		return errors.Wrapf(err, "read config %s", file)
	}
	return c.Load(v)
}

// Load decodes the settings held by v.
func (c *Config) Load(v *viper.Viper) error {
	if err := v.Unmarshal(c); err != nil {
		return errors.Wrap(err, "decode config")
	}
	return nil
}

// NewViper returns a viper instance bound to the DDNS_* environment.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only resolves keys viper knows about
	for _, key := range []string{
		"name", "url", "scan_interval", "update_timeout",
		"ipv4.url", "ipv4.timeout",
		"ipv6.get_type", "ipv6.url", "ipv6.net_interface", "ipv6.ipv6_reg", "ipv6.timeout",
		"webhook.url", "webhook.request_body", "webhook.headers",
		"log.output", "log.level", "log.format", "log.backend",
		"metrics.addr",
	} {
		_ = v.BindEnv(key)
	}
	return v
}

// Write 输出配置, format 为 yaml 或 json
func (c *Config) Write(w io.Writer, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	case "yaml", "yml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(c)
	default:
		return errors.Wrap(ErrUnsupportedFormat, format)
	}
}

func Global() *Config {
	globalMux.RLock()
	defer globalMux.RUnlock()

	cfg := &Config{}
	*cfg = *global
	return cfg
}

func Set(c *Config) {
	globalMux.Lock()
	defer globalMux.Unlock()

	global = c
}

// GetConfigFilePath 获得配置文件路径
func GetConfigFilePath() string {
	configFilePath := os.Getenv(ConfigFilePathENV)
	if configFilePath != "" {
		return configFilePath
	}
	return GetConfigFilePathDefault()
}

// GetConfigFilePathDefault 获得默认的配置文件路径
func GetConfigFilePathDefault() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "../.curl_dyndns.yaml"
	}
	return dir + string(os.PathSeparator) + ".curl_dyndns.yaml"
}
