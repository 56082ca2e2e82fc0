package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	// FromFile is false when no config.yaml was found and only defaults and env apply.
	FromFile bool
}

func New() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var typeErr viper.ConfigFileNotFoundError
		if errors.As(err, &typeErr) {
			return &Config{FromFile: false}, nil
		}

		return nil, err
	}

	return &Config{FromFile: true}, nil
}
