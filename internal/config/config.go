package config

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env               string `yaml:"env" default:"development"`
	PostgresConfig    `yaml:"database"`
	JWTConfig         `yaml:"jwt"`
	Server            `yaml:"server"`
	RateLimiterConfig `yaml:"rate_limiter"`
	RedisConfig       `yaml:"redis"`
	ProvidersConfig   `yaml:"providers"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// RateLimiterConfig carries the generic window applied to login/register
// and a tighter one applied to the charged add-location route.
type RateLimiterConfig struct {
	Limit          int           `yaml:"limit" env:"RATE_LIMITER_LIMIT" env-default:"100"`
	Window         time.Duration `yaml:"window" env:"RATE_LIMITER_WINDOW" env-default:"1m"`
	LocationLimit  int           `yaml:"location_limit" env:"RATE_LIMITER_LOCATION_LIMIT" env-default:"5"`
	LocationWindow time.Duration `yaml:"location_window" env:"RATE_LIMITER_LOCATION_WINDOW" env-default:"1m"`
}

type Server struct {
	Port        int           `yaml:"port" env:"SERVER_PORT" env-default:"8082"`
	Mode        string        `yaml:"mode" env:"SERVER_MODE" env-default:"debug"`
	Host        string        `yaml:"host" env:"SERVER_HOST" env-default:"localhost"`
	Timeout     time.Duration `yaml:"timeout" env:"SERVER_TIMEOUT" env-default:"15s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
}

type JWTConfig struct {
	Secret     string        `yaml:"secret" env:"JWT_SECRET"`
	AccessTTL  time.Duration `yaml:"access_ttl" env:"JWT_ACCESS_TTL" env-default:"30m"`
	RefreshTTL time.Duration `yaml:"refresh_ttl" env:"JWT_REFRESH_TTL" env-default:"168h"`
}

// ProvidersConfig points at the three upstream services consumed by the
// charged add-location flow. Every call is bounded by Timeout.
type ProvidersConfig struct {
	GeoBaseURL     string        `yaml:"geo_base_url" env:"GEO_BASE_URL" env-default:"http://ip-api.com"`
	WeatherBaseURL string        `yaml:"weather_base_url" env:"WEATHER_BASE_URL" env-default:"https://api.openweathermap.org/data/2.5/weather"`
	WeatherAPIKey  string        `yaml:"weather_api_key" env:"WEATHER_API_KEY"`
	TextGenBaseURL string        `yaml:"textgen_base_url" env:"TEXTGEN_BASE_URL"`
	TextGenAPIKey  string        `yaml:"textgen_api_key" env:"TEXTGEN_API_KEY"`
	Timeout        time.Duration `yaml:"timeout" env:"PROVIDERS_TIMEOUT" env-default:"5s"`
}

// postgres config
type PostgresConfig struct {
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"5432"`
	Username string `yaml:"username" default:"postgres"`
	Password string `yaml:"password" default:"postgres"`
	Name     string `yaml:"name" default:"skyledgerdb"`
}

func (cfg *PostgresConfig) DSN() string {
	return "postgres://" +
		cfg.Username + ":" +
		cfg.Password + "@" +
		cfg.Host + ":" +
		strconv.Itoa(cfg.Port) + "/" +
		cfg.Name + "?sslmode=disable"
}

// -------------Get Config Path from Flag or Env --------------
var configPath string

func init() {
	flag.StringVar(&configPath, "config", "", "Path to the config file")
}

func fetchConfigPath() string {
	var res string

	if !flag.Parsed() {
		flag.Parse()
	}

	res = configPath

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		panic("config path is not provided")
	}

	return res
}
func LoadConfig() Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}
	return LoadConfigFromPath(path)
}

func LoadConfigFromPath(path string) Config {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		panic(err)
	}
	return cfg
}
