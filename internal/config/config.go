package config

import (
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	envPrefix             = "COSCRIBE"
	defaultServerURL      = "http://localhost:8000"
	defaultLogLevel       = "info"
	defaultTypingQuietMS  = 300
	defaultConnectTimeout = 10 * time.Second
)

// AppConfig captures runtime configuration for the workspace client.
type AppConfig struct {
	ServerURL      string
	SocketURL      string
	Token          string
	LogLevel       string
	TypingQuiet    time.Duration
	ConnectTimeout time.Duration
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("server.url", defaultServerURL)
	configViper.SetDefault("socket.url", "")
	configViper.SetDefault("auth.token", "")
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("typing.quiet_ms", defaultTypingQuietMS)
	configViper.SetDefault("connect.timeout_s", 10)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		ServerURL:      strings.TrimRight(configViper.GetString("server.url"), "/"),
		SocketURL:      configViper.GetString("socket.url"),
		Token:          configViper.GetString("auth.token"),
		LogLevel:       configViper.GetString("log.level"),
		TypingQuiet:    time.Duration(configViper.GetInt("typing.quiet_ms")) * time.Millisecond,
		ConnectTimeout: time.Duration(configViper.GetInt("connect.timeout_s")) * time.Second,
	}

	if cfg.SocketURL == "" {
		cfg.SocketURL = deriveSocketURL(cfg.ServerURL)
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ServerURL, validation.Required, is.URL),
		validation.Field(&c.SocketURL, validation.Required, is.URL),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "warning", "error")),
		validation.Field(&c.TypingQuiet, validation.Required, validation.Min(time.Millisecond)),
	)
}

// deriveSocketURL maps the REST base URL onto the realtime endpoint.
func deriveSocketURL(serverURL string) string {
	parsed, err := url.Parse(serverURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	scheme := "ws"
	if parsed.Scheme == "https" {
		scheme = "wss"
	}
	return scheme + "://" + parsed.Host + "/ws"
}
