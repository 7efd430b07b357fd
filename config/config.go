package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 从环境变量读取（可选 .env）
type Config struct {
	Port        string
	DBDriver    string // postgres | sqlite
	DatabaseURL string
	SQLitePath  string
	RedisAddr   string
	RedisPwd    string
	WebOrigin   string
	SessionTTL  time.Duration
	LockTimeout time.Duration
	// 这些用户名登录后总是 admin
	AdminUsernames []string
	BootstrapAdmin string
	LogLevel       string
	LogFormat      string
	SeenThrottle   time.Duration
}

// Load reads .env when present and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}

	return Config{
		Port:           get("PORT", "3001"),
		DBDriver:       strings.ToLower(get("DB_DRIVER", "postgres")),
		DatabaseURL:    get("DATABASE_URL", postgresDSN(get)),
		SQLitePath:     get("SQLITE_PATH", "ong_equipment.db"),
		RedisAddr:      get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:       os.Getenv("REDIS_PASSWORD"),
		WebOrigin:      get("WEB_ORIGIN", "http://localhost:5173"),
		SessionTTL:     seconds(get("SESSION_TTL_SECONDS", "86400"), 24*time.Hour),
		LockTimeout:    duration(get("LOCK_TIMEOUT", "5s"), 5*time.Second),
		AdminUsernames: csvLower(os.Getenv("ADMIN_USERNAMES")),
		BootstrapAdmin: strings.ToLower(strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN"))),
		LogLevel:       get("LOG_LEVEL", "info"),
		LogFormat:      get("LOG_FORMAT", "console"),
		SeenThrottle:   duration(get("SEEN_THROTTLE", "1m"), time.Minute),
	}
}

// IsAdminUsername reports whether username is pinned to the admin role.
func (c Config) IsAdminUsername(username string) bool {
	u := strings.ToLower(username)
	for _, a := range c.AdminUsernames {
		if u == a {
			return true
		}
	}
	return false
}

func postgresDSN(get func(k, def string) string) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		get("DB_HOST", "127.0.0.1"),
		get("DB_USER", "postgres"),
		get("DB_PASSWORD", "postgres"),
		get("DB_NAME", "ong_equipment"),
		get("DB_PORT", "5432"),
	)
}

func seconds(v string, def time.Duration) time.Duration {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

func duration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func csvLower(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, strings.ToLower(t))
		}
	}
	return out
}
