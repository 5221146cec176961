package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingToken is returned when the bot token is absent. It is the
// only configuration problem treated as fatal at startup.
var ErrMissingToken = errors.New("telegram bot token is required (WARDEN_BOT_TOKEN)")

// Config holds the full configuration surface of the daemon. Every
// field is settable through the environment with the WARDEN_ prefix
// (nested keys joined with underscores, e.g. WARDEN_ALERT_CPU_PCT).
type Config struct {
	BotToken string `mapstructure:"bot_token"`
	DataDir  string `mapstructure:"data_dir"`

	// Fixed operator chat override. Zero means unbound: the first
	// /start claims the binding.
	AllowedChatID int64 `mapstructure:"allowed_chat_id"`

	Sample struct {
		IntervalSec int `mapstructure:"interval_sec"`
		// Net throughput measurement window, independent of the
		// sampling interval.
		NetWindowSec int    `mapstructure:"net_window_sec"`
		DiskPath     string `mapstructure:"disk_path"`
	} `mapstructure:"sample"`

	Alert struct {
		CPUPct      float64 `mapstructure:"cpu_pct"`
		MemPct      float64 `mapstructure:"mem_pct"`
		NetMbps     float64 `mapstructure:"net_mbps"`
		CooldownMin int     `mapstructure:"cooldown_min"`
	} `mapstructure:"alert"`

	Chart struct {
		DefaultHours int `mapstructure:"default_hours"`
	} `mapstructure:"chart"`

	WGContainer       string `mapstructure:"wg_container"`
	SpeedtestServerID string `mapstructure:"speedtest_server_id"`

	Issuance struct {
		Enabled    bool   `mapstructure:"enabled"`
		ConfigPath string `mapstructure:"config_path"`
		Container  string `mapstructure:"container"`
		InboundTag string `mapstructure:"inbound_tag"`

		// Connection-string template parameters
		Host      string `mapstructure:"host"`
		Port      int    `mapstructure:"port"`
		Flow      string `mapstructure:"flow"`
		Security  string `mapstructure:"security"`
		SNI       string `mapstructure:"sni"`
		PublicKey string `mapstructure:"public_key"`
		ShortID   string `mapstructure:"short_id"`
		LinkName  string `mapstructure:"link_name"`
	} `mapstructure:"issuance"`

	MetricsAddr string `mapstructure:"metrics_addr"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

// SampleInterval returns the sampling tick period
func (c *Config) SampleInterval() time.Duration {
	return time.Duration(c.Sample.IntervalSec) * time.Second
}

// NetWindow returns the network measurement window
func (c *Config) NetWindow() time.Duration {
	return time.Duration(c.Sample.NetWindowSec) * time.Second
}

// AlertCooldown returns the minimum spacing between alert notifications
func (c *Config) AlertCooldown() time.Duration {
	return time.Duration(c.Alert.CooldownMin) * time.Minute
}

// Load reads configuration from the environment with defaults applied
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WARDEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// AutomaticEnv only resolves keys viper already knows about, so
	// every key needs a default (possibly empty) registered above.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.BotToken) == "" {
		return nil, ErrMissingToken
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot_token", "")
	v.SetDefault("data_dir", "/var/lib/warden")
	v.SetDefault("allowed_chat_id", 0)

	v.SetDefault("sample.interval_sec", 15)
	v.SetDefault("sample.net_window_sec", 1)
	v.SetDefault("sample.disk_path", "/")

	v.SetDefault("alert.cpu_pct", 85)
	v.SetDefault("alert.mem_pct", 85)
	v.SetDefault("alert.net_mbps", 200)
	v.SetDefault("alert.cooldown_min", 10)

	v.SetDefault("chart.default_hours", 3)

	v.SetDefault("wg_container", "wg-easy")
	v.SetDefault("speedtest_server_id", "")

	v.SetDefault("issuance.enabled", false)
	v.SetDefault("issuance.config_path", "/etc/xray/config.json")
	v.SetDefault("issuance.container", "xray")
	v.SetDefault("issuance.inbound_tag", "vless-in")
	v.SetDefault("issuance.host", "")
	v.SetDefault("issuance.port", 443)
	v.SetDefault("issuance.flow", "xtls-rprx-vision")
	v.SetDefault("issuance.security", "reality")
	v.SetDefault("issuance.sni", "")
	v.SetDefault("issuance.public_key", "")
	v.SetDefault("issuance.short_id", "")
	v.SetDefault("issuance.link_name", "warden")

	v.SetDefault("metrics_addr", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}
