package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultMongoURI      = "mongodb://localhost:27017"
	defaultMongoDatabase = "planty"
	defaultRedisAddr     = "localhost:6379"
	defaultJWTSecret     = "change-me-in-production"
	defaultAppPort       = "8080"
	defaultGRPCPort      = "9090"
	defaultAppEnv        = "local"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load merges defaults, config/app.json, .env and the process environment,
// in that order. Later sources win. Safe to call many times.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_ENV":            defaultAppEnv,
		"APP_PORT":           defaultAppPort,
		"GRPC_PORT":          defaultGRPCPort,
		"MONGO_URI":          defaultMongoURI,
		"MONGO_DATABASE":     defaultMongoDatabase,
		"DB_TIMEOUT":         "5s",
		"REDIS_ADDR":         defaultRedisAddr,
		"REDIS_PASSWORD":     "",
		"JWT_SECRET":         defaultJWTSecret,
		"REGISTER_TOKEN_TTL": "1h",
		"LOGIN_TOKEN_TTL":    "24h",
		"BCRYPT_COST":        "10",
		"OTP_TTL":            "10m",
		"OTP_MAX_ATTEMPTS":   "5",
		"CACHE_TTL":          "5m",
		"STORAGE_DISK":       "local",
		"AMQP_URL":           "",
		"LOG_TO_MONGO":       "false",
		"MAIL_HOST":          "smtp.gmail.com",
		"MAIL_PORT":          "587",
		"MAIL_FROM_NAME":     "Planty",
		"CORS_ORIGINS":       "*",
		"RATE_LIMIT":         "120",
	}
}

// ── App ──────────────────────────────────────────────────────────────────────

func AppPort() string  { _ = Load(); return get("APP_PORT", defaultAppPort) }
func GRPCPort() string { _ = Load(); return get("GRPC_PORT", defaultGRPCPort) }
func AppEnv() string   { _ = Load(); return get("APP_ENV", defaultAppEnv) }

// ── Database ─────────────────────────────────────────────────────────────────

func MongoURI() string      { _ = Load(); return get("MONGO_URI", defaultMongoURI) }
func MongoDatabase() string { _ = Load(); return get("MONGO_DATABASE", defaultMongoDatabase) }

// DBTimeout bounds every single document-store call.
func DBTimeout() time.Duration { return Duration("DB_TIMEOUT", 5*time.Second) }

func RedisAddr() string     { _ = Load(); return get("REDIS_ADDR", defaultRedisAddr) }
func RedisPassword() string { _ = Load(); return get("REDIS_PASSWORD", "") }

// ── Auth ─────────────────────────────────────────────────────────────────────

func JWTSecret() string { _ = Load(); return get("JWT_SECRET", defaultJWTSecret) }

// ErrDefaultJWTSecret is returned by CheckJWTSecret in production when
// JWT_SECRET was never set.
var ErrDefaultJWTSecret = errors.New("config: JWT_SECRET must be set in production")

// CheckJWTSecret refuses the built-in signing key when APP_ENV is production.
func CheckJWTSecret() error {
	if AppEnv() == "production" && JWTSecret() == defaultJWTSecret {
		return ErrDefaultJWTSecret
	}
	return nil
}

func RegisterTokenTTL() time.Duration { return Duration("REGISTER_TOKEN_TTL", time.Hour) }
func LoginTokenTTL() time.Duration    { return Duration("LOGIN_TOKEN_TTL", 24*time.Hour) }
func OTPTTL() time.Duration           { return Duration("OTP_TTL", 10*time.Minute) }
func OTPMaxAttempts() int             { return Int("OTP_MAX_ATTEMPTS", 5) }
func BcryptCost() int                 { return Int("BCRYPT_COST", 10) }

func CacheTTL() time.Duration { return Duration("CACHE_TTL", 5*time.Minute) }

// ── Messaging / logging ──────────────────────────────────────────────────────

func AMQPURL() string  { _ = Load(); return get("AMQP_URL", "") }
func LogToMongo() bool { return Bool("LOG_TO_MONGO", false) }

// ── Mail ─────────────────────────────────────────────────────────────────────

func MailHost() string     { _ = Load(); return get("MAIL_HOST", "smtp.gmail.com") }
func MailPort() string     { _ = Load(); return get("MAIL_PORT", "587") }
func MailUsername() string { _ = Load(); return get("MAIL_USERNAME", "") }
func MailPassword() string { _ = Load(); return get("MAIL_PASSWORD", "") }
func MailFromName() string { _ = Load(); return get("MAIL_FROM_NAME", "Planty") }

// MailFrom defaults to the SMTP username, which is what most relays expect.
func MailFrom() string { _ = Load(); return get("MAIL_FROM", MailUsername()) }

// ── HTTP ─────────────────────────────────────────────────────────────────────

// CORSOrigins is a comma-separated allow list; "*" allows any origin.
func CORSOrigins() []string {
	_ = Load()
	var out []string
	for _, o := range strings.Split(get("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// RateLimit is the per-IP request budget per minute.
func RateLimit() int { return Int("RATE_LIMIT", 120) }

// ── Storage ──────────────────────────────────────────────────────────────────

func StorageDefault() string {
	_ = Load()
	return get("STORAGE_DISK", "local")
}

func StorageLocalRoot() string {
	_ = Load()
	return get("STORAGE_LOCAL_ROOT", "storage")
}

func StorageURL() string {
	_ = Load()
	return get("STORAGE_URL", "http://localhost:8080/storage")
}

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }
func StorageS3URL() string      { _ = Load(); return get("S3_URL", "") }

// ── Loading ──────────────────────────────────────────────────────────────────

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mergeProcessEnv(loaded)

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		var s string
		switch v := val.(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			s = strconv.FormatBool(v)
		default:
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	env, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	for key, value := range env {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(value)
	}
	return nil
}

// mergeProcessEnv lets real environment variables override any key that is
// already known from defaults or files.
func mergeProcessEnv(out map[string]string) {
	for key := range out {
		if v, ok := os.LookupEnv(key); ok {
			out[key] = strings.TrimSpace(v)
		}
	}
}

func get(key, fallback string) string {
	mu.RLock()
	value := strings.TrimSpace(values[key])
	mu.RUnlock()

	if value != "" {
		return value
	}
	if env := strings.TrimSpace(os.Getenv(key)); env != "" {
		return env
	}
	return fallback
}

// Get reads any config key by name with an optional fallback.
// Keys from .env and app.json are available after config.Load().
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Set overrides a key at runtime. Intended for tests and CLI flags.
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	values[strings.ToUpper(key)] = value
	mu.Unlock()
}

// Duration reads key as a time.Duration ("90s", "1h").
func Duration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(Get(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Int reads key as an integer.
func Int(key string, fallback int) int {
	n, err := strconv.Atoi(Get(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

// Bool reads key as a boolean ("true", "1", ...).
func Bool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(Get(key, ""))
	if err != nil {
		return fallback
	}
	return b
}
