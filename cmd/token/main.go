// Command token mints an admin console bearer token for a staff user.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/SarthakSoni31/Driven-backend/internal/auth"
	"github.com/SarthakSoni31/Driven-backend/internal/config"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	userID := flag.String("user", "", "staff user id")
	role := flag.String("role", "", "role name, e.g. Admin or Editor")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	if *userID == "" || *role == "" {
		logger.Error("usage: token -user <id> -role <role> [-ttl 12h]")
		os.Exit(1)
	}

	cfg := config.Load("")
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}

	token, err := auth.NewTokenManager(cfg.JWTSecret, *ttl).Issue(*userID, *role)
	if err != nil {
		logger.Error("failed to issue token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
