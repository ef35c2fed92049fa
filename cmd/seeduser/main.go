// cmd/seeduser creates the allow-listed user (AUTH_USERNAME) with
// AUTH_DEFAULT_PASSWORD in the configured store when it is missing.
// Usage: go run ./cmd/seeduser
package main

import (
	"context"
	"fmt"

	"tileledger/internal/app"
	"tileledger/internal/config"
	"tileledger/internal/service"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()
	stack, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer stack.Close()

	created, err := service.NewAuthService(stack.Store, stack.Locker, cfg).EnsureUser(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed user")
	}
	if created {
		fmt.Printf("user %q created with the default password\n", service.NormalizeUsername(cfg.AuthUsername))
		return
	}
	fmt.Printf("user %q already exists, left unchanged\n", service.NormalizeUsername(cfg.AuthUsername))
}
