package config

import (
	dotxchSchema "github.com/everFinance/dotxch/schema"
	"github.com/spf13/viper"
	"strings"
)

const EnvPrefix = "DOTXCH"

// LoadFile reads a yaml config. An empty path looks for ./dotxch.yaml.
// Environment variables such as DOTXCH_NODE_URL override file values.
func LoadFile(path string) (dotxchSchema.Config, error) {
	cfg := dotxchSchema.Config{}
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("dotxch")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return cfg, err
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.SetDefaults()
	return cfg, nil
}
