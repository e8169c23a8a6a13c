// Package config reads the service configuration from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all settings of the contacts service. The environment variable of each setting is
// its mapstructure key in upper case.
type Config struct {
	Port int `mapstructure:"port" validate:"required,gt=0,lt=65536"`

	// DBDriver selects the backend, either "mongo" or "mysql".
	DBDriver      string `mapstructure:"dbdriver"       validate:"required,oneof=mongo mysql"`
	MongoURI      string `mapstructure:"mongo_uri"      validate:"required_if=DBDriver mongo"`
	MongoDatabase string `mapstructure:"mongo_database" validate:"required_if=DBDriver mongo"`
	DBHost        string `mapstructure:"dbhost"         validate:"required_if=DBDriver mysql"`
	DBUser        string `mapstructure:"dbuser"`
	DBPwd         string `mapstructure:"dbpwd"`
	DBName        string `mapstructure:"dbname"         validate:"required_if=DBDriver mysql"`

	GinLogging string `mapstructure:"gin_logging"`
	LogLevel   string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFile    string `mapstructure:"log_file"`

	// MissingNameStatus is the status code of a create call without a name.
	MissingNameStatus int `mapstructure:"missing_name_status" validate:"oneof=400 404"`
}

var defaults = map[string]interface{}{
	"port":                8080,
	"dbdriver":            "mongo",
	"mongo_uri":           "mongodb://localhost:27017",
	"mongo_database":      "contacts",
	"dbhost":              "localhost:3306",
	"dbuser":              "",
	"dbpwd":               "",
	"dbname":              "test",
	"gin_logging":         "on",
	"log_level":           "info",
	"log_file":            "",
	"missing_name_status": 404,
}

var validate = validator.New()

// Load reads the configuration from the environment, falling back to defaults, and validates it.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error reading configuration: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// RequestLogging reports whether HTTP requests shall be logged. It is turned off with
// GIN_LOGGING=off.
func (c *Config) RequestLogging() bool {
	return !strings.EqualFold(c.GinLogging, "off")
}
