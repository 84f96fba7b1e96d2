package config

import (
	"net"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Server struct {
	Host        string `envconfig:"SERVER_HOST" default:""`
	Port        string `envconfig:"PORT" default:"5000"`
	ReadTimeout int    `envconfig:"SERVER_TIMEOUT" default:"10"`
}

type Upstream struct {
	APIKey string `envconfig:"OPEN_WEATHER_MAP_API_KEY" required:"true"`
	URL    string `envconfig:"OPEN_WEATHER_MAP_URL" default:"https://api.openweathermap.org/data/2.5"`
	// Timeout bounds each upstream call, in seconds.
	Timeout int `envconfig:"UPSTREAM_TIMEOUT" default:"10"`
}

type Breaker struct {
	TimeInterval int    `envconfig:"BREAKER_INTERVAL" default:"30"`
	TimeTimeOut  int    `envconfig:"BREAKER_TIMEOUT" default:"10"`
	RepeatNumber uint32 `envconfig:"BREAKER_REPEAT_NUM" default:"5"`
}

// Config is the proxy server configuration.
type Config struct {
	Server   Server
	Upstream Upstream
	Breaker  Breaker

	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	LogsPath     string `envconfig:"LOGS_PATH" default:"./log/weather-proxy.log"`
	HTTPLogsPath string `envconfig:"HTTP_LOGS_PATH" default:"./log/upstream-http.log"`
}

func NewConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) ServerAddress() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Upstream.Timeout) * time.Second
}

type Redis struct {
	Host string `envconfig:"REDIS_HOST" default:"localhost"`
	Port string `envconfig:"REDIS_PORT" default:"6379"`
	DB   int    `envconfig:"REDIS_DB" default:"0"`
}

func (r Redis) Address() string {
	return net.JoinHostPort(r.Host, r.Port)
}

type History struct {
	// Backend is either "sqlite" or "redis".
	Backend    string `envconfig:"HISTORY_BACKEND" default:"sqlite"`
	SqlitePath string `envconfig:"HISTORY_SQLITE_PATH" default:"./weather-client.db"`
	Key        string `envconfig:"HISTORY_KEY" default:"weatherSearchHistory"`
}

// Location is a fixed device position used by the terminal client in place
// of browser geolocation. Unset means geolocation is unsupported.
type Location struct {
	Latitude  *float64 `envconfig:"CLIENT_LATITUDE"`
	Longitude *float64 `envconfig:"CLIENT_LONGITUDE"`
}

// ClientConfig is the terminal client configuration.
type ClientConfig struct {
	ProxyURL string `envconfig:"WEATHER_PROXY_URL" default:"http://localhost:5000"`
	Timeout  int    `envconfig:"CLIENT_TIMEOUT" default:"15"`

	History  History
	Redis    Redis
	Location Location

	LogsPath string `envconfig:"CLIENT_LOGS_PATH" default:"./log/weather-client.log"`
}

func NewClientConfig() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *ClientConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
