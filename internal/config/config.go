package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once in main and injected; nothing else reads the
// environment directly.
type Config struct {
	Port  string
	DBDSN string

	LogFile string

	// Auth
	MasterPassword string
	JWTSecret      string

	// ELIT supplier credentials
	ElitUserID  string
	ElitToken   string
	ElitJSONURL string
	ElitCSVURL  string

	// Scheduled full-feed sync interval
	SyncInterval time.Duration
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file, using process environment")
	}

	cfg := Config{
		Port:           getenv("PORT", "8080"),
		DBDSN:          getenv("DB_DSN", "tiendasur.db"),
		LogFile:        os.Getenv("LOG_FILE"),
		MasterPassword: os.Getenv("ADMIN_PASSWORD"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		ElitUserID:     os.Getenv("ELIT_USER_ID"),
		ElitToken:      os.Getenv("ELIT_TOKEN"),
		ElitJSONURL:    getenv("ELIT_JSON_URL", "https://clientes.elit.com.ar/v1/api/productos"),
		ElitCSVURL:     getenv("ELIT_CSV_URL", "https://clientes.elit.com.ar/v1/api/productos/csv"),
		SyncInterval:   getduration("SYNC_INTERVAL", 6*time.Hour),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s SYNC_INTERVAL=%s", cfg.Port, cfg.DBDSN, cfg.SyncInterval)
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getduration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] bad %s=%q, using %s", key, v, def)
		return def
	}
	return d
}
