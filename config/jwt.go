package config

import (
	"log/slog"
	"os"
)

// JwtKey signs and verifies session tokens. Falls back to a development
// key when JWT_SECRET is not set; never run production without it.
var JwtKey = loadJwtKey()

func loadJwtKey() []byte {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		return []byte(v)
	}
	slog.Warn("JWT_SECRET not set, using insecure development key")
	return []byte("dev-only-insecure-key")
}
