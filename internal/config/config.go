package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Dynamics DynamicsConfig `mapstructure:"dynamics"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Seeder   SeederConfig   `mapstructure:"seeder"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type DynamicsConfig struct {
	URL     string `mapstructure:"url"`      // default environment, e.g. https://org.crm.dynamics.com
	APIPath string `mapstructure:"api_path"` // Web API version segment
	Token   string `mapstructure:"token"`    // bearer token, usually via DYNAMICS_TOKEN
}

type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// Timeout returns the outbound HTTP timeout as a duration.
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

type SeederConfig struct {
	MaxQuantity int `mapstructure:"max_quantity"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../..")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("dynamics.url", "")
	viper.SetDefault("dynamics.api_path", "/api/data/v9.2/")
	viper.SetDefault("dynamics.token", "")
	viper.SetDefault("http.timeout_seconds", 30)
	viper.SetDefault("seeder.max_quantity", 100)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// No config file is fine: defaults and env cover a bare checkout.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
