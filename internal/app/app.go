package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr            string
	DatabaseURL     string
	SessionLifetime time.Duration
	PageSize        int
}

func LoadConfig() Config {
	addr := getenv("ADDR", ":8080")
	dbURL := getenv("DATABASE_URL", "postgres://localhost/blog?sslmode=disable")

	lifeHours := getenv("SESSION_LIFETIME_HOURS", "24")
	dur, err := time.ParseDuration(lifeHours + "h")
	if err != nil {
		dur = 24 * time.Hour
	}

	pageSize, err := strconv.Atoi(getenv("PAGE_SIZE", "10"))
	if err != nil || pageSize < 1 {
		pageSize = 10
	}

	return Config{
		Addr:            addr,
		DatabaseURL:     dbURL,
		SessionLifetime: dur,
		PageSize:        pageSize,
	}
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
