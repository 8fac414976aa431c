package util

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// LoadEnvFile loads key/values from paths without overriding variables
// already present in the process environment. Missing files are ignored.
func LoadEnvFile(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return errors.Wrap(err, "load env file failed")
		}
	}
	return nil
}

func GetEnvString(env, fallback string) string {
	envString := os.Getenv(env)
	if envString == "" {
		return fallback
	}
	return envString
}

// GetEnvStringSlice splits a comma separated value, dropping empty entries.
func GetEnvStringSlice(env string, fallback []string) []string {
	envString := os.Getenv(env)
	if envString == "" {
		return fallback
	}
	var values []string
	for _, value := range strings.Split(envString, ",") {
		if value = strings.TrimSpace(value); value != "" {
			values = append(values, value)
		}
	}
	return values
}

func GetEnvBool(env string, fallback bool) bool {
	envString := os.Getenv(env)
	envBool, err := strconv.ParseBool(envString)
	if err != nil {
		return fallback
	}
	return envBool
}

func GetEnvInt(env string, fallback int) int {
	envString := os.Getenv(env)
	envInt, err := strconv.Atoi(envString)
	if err != nil {
		return fallback
	}
	return envInt
}

func GetEnvInt64(env string, fallback int64) int64 {
	envString := os.Getenv(env)
	envInt64, err := strconv.ParseInt(envString, 10, 64)
	if err != nil {
		return fallback
	}
	return envInt64
}

func GetEnvDuration(env string, fallback time.Duration) time.Duration {
	envString := os.Getenv(env)
	envDuration, err := time.ParseDuration(envString)
	if err != nil {
		return fallback
	}
	return envDuration
}
