package config

import (
	"strings"

	"github.com/spf13/viper"
)

func init() {
	viper.AutomaticEnv()
}

func getEnv(key, fallback string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if viper.IsSet(key) {
		if n := viper.GetInt(key); n != 0 {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := strings.ToLower(viper.GetString(key)); v != "" {
		return v == "1" || v == "true" || v == "yes" || v == "on"
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	if v := viper.GetString(key); v != "" {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return fallback
}
