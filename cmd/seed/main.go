// Command seed creates the default OrderFlow accounts on the configured
// backend. Existing usernames are left untouched.
package main

import (
	"context"
	"os"
	"time"

	"github.com/orderflow/orderflow/internal/app"
	"github.com/orderflow/orderflow/internal/core/domain"
	"github.com/orderflow/orderflow/internal/infrastructure/config"
	"github.com/orderflow/orderflow/pkg/logger"
)

type account struct {
	username string
	password string
	role     domain.Role
}

var defaultAccounts = []account{
	{"admin", "admin01", domain.RoleAdmin},
	{"fish", "fish01", domain.RoleFish},
	{"pork", "pork01", domain.RolePork},
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.New(logger.Options{})
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logger.Init(logger.Options{Service: "orderflow-seed", Level: cfg.LogLevel, Pretty: true})

	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open order store")
	}
	defer stores.Close(context.Background())

	failed := false
	for _, a := range defaultAccounts {
		created, err := stores.Users.CreateUser(ctx, a.username, a.password, a.role)
		switch {
		case err != nil:
			failed = true
			log.Error().Err(err).Str("username", a.username).Msg("create user")
		case created:
			log.Info().Str("username", a.username).Str("role", string(a.role)).Msg("user created")
		default:
			log.Info().Str("username", a.username).Msg("user exists, skipped")
		}
	}
	if failed {
		stores.Close(context.Background())
		os.Exit(1)
	}
}
