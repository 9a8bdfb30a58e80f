package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"storefront/internal/storefront"
)

type SinkKind string

const (
	SinkMongo  SinkKind = "mongo"
	SinkMySQL  SinkKind = "mysql"
	SinkMemory SinkKind = "memory"
)

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

type MySQLConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
}

func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

type Config struct {
	Port           string
	Sink           SinkKind
	Mongo          MongoConfig
	MySQL          MySQLConfig
	RedisAddr      string
	SessionTTL     time.Duration
	SubmitTimeout  time.Duration
	RabbitMQURL    string
	Exchange       string
	ResetPolicy    storefront.ResetPolicy
	ValidateForm   bool
	CatalogFile    string
	CatalogURL     string
	LogDevelopment bool
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Port: get("PORT", "8080"),
		Sink: SinkKind(get("ORDER_SINK", string(SinkMongo))),
		Mongo: MongoConfig{
			URI:        get("MONGO_URI", "mongodb://localhost:27017/?directConnection=true"),
			Database:   get("MONGO_DATABASE", "narea"),
			Collection: get("MONGO_COLLECTION", "orders"),
		},
		MySQL: MySQLConfig{
			User:     get("MYSQL_USER", "root"),
			Password: get("MYSQL_PASSWORD", ""),
			Host:     get("MYSQL_HOST", "localhost"),
			Port:     get("MYSQL_PORT", "3306"),
			Database: get("MYSQL_DATABASE", "narea"),
		},
		RedisAddr:   get("REDIS_ADDR", ""),
		RabbitMQURL: get("RABBITMQ_URL", ""),
		Exchange:    get("RABBITMQ_EXCHANGE", "order.exchange"),
		CatalogFile: get("CATALOG_FILE", ""),
		CatalogURL:  get("CATALOG_URL", ""),
	}

	switch cfg.Sink {
	case SinkMongo, SinkMySQL, SinkMemory:
	default:
		return nil, fmt.Errorf("config: ORDER_SINK: unknown sink %q", cfg.Sink)
	}

	var err error
	if cfg.SessionTTL, err = time.ParseDuration(get("SESSION_TTL", "30m")); err != nil {
		return nil, fmt.Errorf("config: SESSION_TTL: %w", err)
	}
	if cfg.SubmitTimeout, err = time.ParseDuration(get("SUBMISSION_TIMEOUT", "2m")); err != nil {
		return nil, fmt.Errorf("config: SUBMISSION_TIMEOUT: %w", err)
	}
	if cfg.ResetPolicy, err = storefront.ParseResetPolicy(get("RESET_POLICY", "")); err != nil {
		return nil, fmt.Errorf("config: RESET_POLICY: %w", err)
	}
	if cfg.ValidateForm, err = strconv.ParseBool(get("VALIDATE_FORM", "false")); err != nil {
		return nil, fmt.Errorf("config: VALIDATE_FORM: %w", err)
	}
	if cfg.LogDevelopment, err = strconv.ParseBool(get("LOG_DEVELOPMENT", "false")); err != nil {
		return nil, fmt.Errorf("config: LOG_DEVELOPMENT: %w", err)
	}
	if cfg.CatalogFile != "" && cfg.CatalogURL != "" {
		return nil, fmt.Errorf("config: CATALOG_FILE and CATALOG_URL are mutually exclusive")
	}
	return cfg, nil
}
