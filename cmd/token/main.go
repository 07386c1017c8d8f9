// Command token mints a bearer token for a user, for use with AUTH_MODE=jwt.
//
//	go run ./cmd/token -user 3
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/fkhayef/groupledger/internal/config"
	"github.com/fkhayef/groupledger/pkg/logging"
	"github.com/fkhayef/groupledger/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	userID := flag.Int64("user", 0, "user ID the token is issued for")
	secret := flag.String("secret", cfg.JWTSecret, "signing secret (defaults to JWT_SECRET)")
	ttl := flag.Duration("ttl", cfg.TokenTTL, "token lifetime")
	flag.Parse()

	if *userID <= 0 {
		slog.Error("-user must be a positive user ID")
		os.Exit(2)
	}
	if len(*secret) < 16 {
		slog.Error("signing secret must be at least 16 characters")
		os.Exit(2)
	}

	token, err := middleware.NewTokenManager(*secret, *ttl).Issue(*userID)
	if err != nil {
		slog.Error("Failed to issue token", "error", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
