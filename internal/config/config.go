package config // package config loads application configuration from environment variables

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	APIPrefix string // path prefix for API routes (link routes stay outside it)

	DBUser string
	DBPass string // optional, empty allowed
	DBHost string
	DBPort string
	DBName string

	JWTSecret       string        // secret used to sign JWTs
	AccessTokenTTL  time.Duration // access token lifetime (short, minutes)
	RefreshTokenTTL time.Duration // refresh token lifetime (long, days)
	BcryptCost      int           // bcrypt cost for password hashing

	AdminRole     string // code of the administrator role
	UserRole      string // code of the base role assigned on register
	AdminEmail    string // seeded administrator account
	AdminPassword string

	BaseURL     string // public base URL used in emailed links
	FrontendURL string // frontend the link endpoints redirect to
	Brand       string // brand name used in email subjects

	CanDeleteSelfAccount bool // when false, DELETE /auth/delete-account is rejected

	Access AccessPolicy // module -> allowed role codes
}

// Load reads configuration from environment variables. Optional values fall
// back to defaults; a malformed access policy or TTL is fatal since access
// control must not start half-configured.
func Load() Config {
	access, err := LoadAccessPolicy(KnownModules...)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return Config{
		Env:       must("APP_ENV"),
		Port:      must("APP_PORT"),
		APIPrefix: getenv("API_PREFIX", "api"),

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		JWTSecret:       must("JWT_SECRET"),
		AccessTokenTTL:  mustTTL("ACCESS_TOKEN_TTL", "15m"),
		RefreshTokenTTL: mustTTL("REFRESH_TOKEN_TTL", "30d"),
		BcryptCost:      mustInt("BCRYPT_COST"),

		AdminRole:     getenv("ADMIN_ROLE_NAME", "admin"),
		UserRole:      getenv("USER_ROLE_NAME", "user"),
		AdminEmail:    getenv("ADMIN_EMAIL", "admin@test.dev"),
		AdminPassword: getenv("ADMIN_PASSWORD", "admin"),

		BaseURL:     must("APP_BASE_URL"),
		FrontendURL: must("FRONTEND_URL"),
		Brand:       getenv("BRAND", "UserAdmin"),

		CanDeleteSelfAccount: envBool("SETTINGS_CAN_DELETE_SELF_ACCOUNT", true),

		Access: access,
	}
}

// ParseTTL parses a token lifetime. On top of Go duration syntax it accepts
// a trailing "d" for days ("30d"), which is how refresh lifetimes are
// usually written in deployment env files.
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if strings.HasSuffix(s, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func mustTTL(key, def string) time.Duration {
	d, err := ParseTTL(getenv(key, def))
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return d
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
