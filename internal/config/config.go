package config

import (
	"flag"
	"github.com/ilyakaznacheev/cleanenv"
	"os"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	Env        string     `yaml:"env" env:"ENV" env-default:"local"`
	Storage    Storage    `yaml:"storage"`
	Database   Database   `yaml:"database"`
	Mongo      Mongo      `yaml:"mongo"`
	Media      Media      `yaml:"media"`
	Cache      Cache      `yaml:"cache"`
	HTTPServer HTTPServer `yaml:"http_server"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
}

type Database struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"DB_NAME" env-default:"dev_events"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
}

type Mongo struct {
	URI            string        `yaml:"uri" env:"MONGODB_URI"`
	Database       string        `yaml:"database" env:"MONGODB_DB" env-default:"dev_events"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env-default:"10s"`
}

type Media struct {
	Bucket          string `yaml:"bucket" env:"MEDIA_BUCKET"`
	Region          string `yaml:"region" env:"MEDIA_REGION" env-default:"us-east-1"`
	Endpoint        string `yaml:"endpoint" env:"MEDIA_ENDPOINT"`
	AccessKeyID     string `yaml:"access_key_id" env:"MEDIA_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"MEDIA_SECRET_ACCESS_KEY"`
	PublicURL       string `yaml:"public_url" env:"MEDIA_PUBLIC_URL"`
	Folder          string `yaml:"folder" env-default:"DevEvents"`
}

type Cache struct {
	RedisURL  string        `yaml:"redis_url" env:"REDIS_URL"`
	Prefix    string        `yaml:"prefix" env-default:"devevents:"`
	ListTTL   time.Duration `yaml:"list_ttl" env-default:"1h"`
	DetailTTL time.Duration `yaml:"detail_ttl" env-default:"5m"`
}

type HTTPServer struct {
	Address       string        `yaml:"address" env-default:"localhost:8080"`
	BaseURL       string        `yaml:"base_url" env:"BASE_URL" env-default:"http://localhost:8080"`
	Timeout       time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout   time.Duration `yaml:"idle_timeout" env-default:"60s"`
	UploadTimeout time.Duration `yaml:"upload_timeout" env-default:"60s"`
	MaxUploadSize int64         `yaml:"max_upload_size" env-default:"10485760"`
	RateLimit     RateLimit     `yaml:"rate_limit"`
}

type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"2"`
	Burst int     `yaml:"burst" env-default:"10"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	if cfg.Storage.Driver != DriverPostgres && cfg.Storage.Driver != DriverMongo {
		panic("unknown storage driver: " + cfg.Storage.Driver)
	}

	return &cfg
}

// fetchConfigPath fetches config path from command line flag or environment variable.
// Priority: flag > env > default.
// Default value is empty string.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
