package main

import (
	"context"
	"flag"
	"fmt"

	"rps_link/internal/config"
	"rps_link/internal/db"
	"rps_link/internal/logger"
	"rps_link/internal/service"
)

// Creates an account in the configured store and prints a bearer token for
// it, for poking the API with curl.
func main() {
	name := flag.String("name", "", "display name (default: Anonymous Player)")
	flag.Parse()

	cfg := config.Load()
	service.InitJWT(cfg.JWTSecret, cfg.JWTTTL)

	ctx := context.Background()
	store, err := db.OpenStore(ctx, cfg)
	if err != nil {
		logger.Fatal("open store", "error", err)
	}
	defer store.Close()

	u, err := service.NewAccountService(store).Register(ctx, *name)
	if err != nil {
		logger.Fatal("create user failed", "error", err)
	}

	token, err := service.GenerateJWT(u.ID)
	if err != nil {
		logger.Fatal("failed to generate token", "error", err)
	}

	fmt.Printf("user_id=%s\ndisplay_name=%s\ntoken=%s\n", u.ID, u.DisplayName, token)
}
