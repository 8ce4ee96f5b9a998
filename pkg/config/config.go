package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config agrupa la configuración del servicio de estado (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	API       APIConfig
	Storage   StorageConfig
	Redis     RedisConfig
	DB        DBConfig
	Mongo     MongoConfig
	Currency  CurrencyConfig
	S3        S3Config
	RateLimit RateLimitConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// HTTPConfig superficie HTTP local que consumen los shells de UI.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// APIConfig cliente hacia el backend del marketplace.
type APIConfig struct {
	BaseURL       string        // ej. https://api.channah.com/api/v1
	Timeout       time.Duration // timeout por petición
	CSRFCookie    string        // cookie legible con el token CSRF
	CSRFHeader    string        // header donde se reenvía
	RefreshPath   string        // endpoint de refresco silencioso
	MePath        string        // endpoint de validación de sesión
	SessionCookie string        // cookie de sesión (para el bootstrap)
	LoginURL      string        // destino al expirar la sesión
}

// StorageConfig adaptador de persistencia local.
type StorageConfig struct {
	Driver      string        // file | memory | redis | postgres | mongo
	Dir         string        // directorio para driver file
	Namespace   string        // prefijo de claves en redis
	WriteBehind time.Duration // 0 = escritura síncrona en cada mutación
}

// RedisConfig conexión Redis.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr devuelve host:port.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no uno construido.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// MongoConfig conexión MongoDB.
type MongoConfig struct {
	URI    string
	DBName string
}

// CurrencyConfig servicios externos de tasas y geolocalización.
type CurrencyConfig struct {
	Default  string // moneda si la detección falla
	RatesURL string
	GeoURL   string
}

// S3Config bucket para los archivos de documentos.
type S3Config struct {
	Bucket           string
	Region           string
	AccessKeyID      string
	SecretAccessKey  string
	CloudFrontDomain string
}

// RateLimitConfig límite por IP de la superficie HTTP local (formato ulule: "120-M").
type RateLimitConfig struct {
	Rate string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Un .env en el directorio actual se carga primero.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignoramos error si no existe

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	timeout, err := getDuration(v, "API_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	writeBehind, err := getDuration(v, "STORAGE_WRITE_BEHIND", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "channah-state"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "127.0.0.1"),
			Port: getInt(v, "HTTP_PORT", 4100),
		},
		API: APIConfig{
			BaseURL:       getString(v, "API_BASE_URL", "http://localhost:8000/api/v1"),
			Timeout:       timeout,
			CSRFCookie:    getString(v, "CSRF_COOKIE", "csrf_token"),
			CSRFHeader:    getString(v, "CSRF_HEADER", "X-CSRF-Token"),
			RefreshPath:   getString(v, "REFRESH_PATH", "/auth/refresh"),
			MePath:        getString(v, "ME_PATH", "/auth/me"),
			SessionCookie: getString(v, "SESSION_COOKIE", "access_token"),
			LoginURL:      getString(v, "LOGIN_URL", "/login"),
		},
		Storage: StorageConfig{
			Driver:      getString(v, "STORAGE_DRIVER", "file"),
			Dir:         getString(v, "STORAGE_DIR", "./data"),
			Namespace:   getString(v, "STORAGE_NAMESPACE", "channah"),
			WriteBehind: writeBehind,
		},
		Redis: RedisConfig{
			Host:     getString(v, "REDIS_HOST", "localhost"),
			Port:     getInt(v, "REDIS_PORT", 6379),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "channah_state"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		Mongo: MongoConfig{
			URI:    getString(v, "MONGO_URI", "mongodb://localhost:27017"),
			DBName: getString(v, "MONGO_DBNAME", "channah_state"),
		},
		Currency: CurrencyConfig{
			Default:  getString(v, "CURRENCY_DEFAULT", "USD"),
			RatesURL: getString(v, "RATES_URL", "https://open.er-api.com/v6/latest"),
			GeoURL:   getString(v, "GEO_URL", "https://ipapi.co/json/"),
		},
		S3: S3Config{
			Bucket:           getString(v, "S3_BUCKET", ""),
			Region:           getString(v, "S3_REGION", "us-east-1"),
			AccessKeyID:      getString(v, "S3_ACCESS_KEY_ID", ""),
			SecretAccessKey:  getString(v, "S3_SECRET_ACCESS_KEY", ""),
			CloudFrontDomain: getString(v, "S3_CLOUDFRONT_DOMAIN", ""),
		},
		RateLimit: RateLimitConfig{
			Rate: getString(v, "RATE_LIMIT", "120-M"),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if !v.IsSet(key) {
		return def
	}
	if s, ok := v.Get(key).(string); ok {
		n, err := strconv.Atoi(s)
		if err != nil {
			return def
		}
		return n
	}
	return v.GetInt(key)
}

// getDuration acepta "5s", "250ms" o un entero en milisegundos.
func getDuration(v *viper.Viper, key string, def time.Duration) (time.Duration, error) {
	if !v.IsSet(key) {
		return def, nil
	}
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return def, nil
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s inválido: %w", key, err)
	}
	return d, nil
}
