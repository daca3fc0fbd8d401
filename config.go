package main

import (
	"os"
	"strconv"
	"strings"

	"tvshowcase/database"
)

// Config holds the server settings read from the environment
type Config struct {
	Port               string
	DBDriver           string
	DatabaseURL        string
	AdminToken         string
	MetricsToken       string
	ResetSchedule      string
	AutoSeed           bool
	CORSAllowedOrigins []string
}

func loadConfig() Config {
	autoSeed, err := strconv.ParseBool(getenv("AUTO_SEED", "true"))
	if err != nil {
		autoSeed = true
	}

	return Config{
		Port:               getenv("PORT", "8080"),
		DBDriver:           getenv("DB_DRIVER", database.DriverSQLite),
		DatabaseURL:        getenv("DATABASE_URL", "catalog.db"),
		AdminToken:         os.Getenv("ADMIN_TOKEN"),
		MetricsToken:       os.Getenv("METRICS_TOKEN"),
		ResetSchedule:      os.Getenv("RESET_SCHEDULE"),
		AutoSeed:           autoSeed,
		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
