package config

import (
	"fmt"
	"time"

	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/utils"
)

// Config collects every runtime setting for the server. It is built once in
// main and passed down explicitly; nothing reads the environment after load.
type Config struct {
	Port          string
	MongoURI      string
	MongoDB       string
	JWTSecret     string
	JWTExpiration time.Duration
	RedisURL      string // empty disables the token blacklist
	UploadsDir    string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:          utils.GetEnvAsString("PORT", "3000"),
		MongoURI:      utils.GetEnvAsString("MONGO_URI", ""),
		MongoDB:       utils.GetEnvAsString("MONGO_DB", "notas"),
		JWTSecret:     utils.GetEnvAsString("JWT_SECRET", ""),
		JWTExpiration: utils.GetEnvAsDuration("JWT_EXPIRATION", 7*24*time.Hour),
		RedisURL:      utils.GetEnvAsString("REDIS_URL", ""),
		UploadsDir:    utils.GetEnvAsString("UPLOADS_DIR", "uploads"),
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	return cfg, nil
}
