// main.go
//
// Entry point for the Jobly API server.
//   - Loads .env (if present) and the environment into config.Config.
//   - Configures the global zerolog logger.
//   - Migrates and opens the database, then serves HTTP until SIGINT/SIGTERM.
//   - SIGHUP re-reads .env and rotates the token signing secret.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayresjulia/jobly/internal/config"
	"github.com/ayresjulia/jobly/internal/httpserver"
	"github.com/ayresjulia/jobly/internal/store"
	"github.com/ayresjulia/jobly/internal/token"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)
	if cfg.UsingDevSecret() {
		log.Warn().Msg("SECRET_KEY not set, signing tokens with the development secret")
	}

	if err := store.Migrate(cfg.DBDriver, cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}
	db, err := store.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	codec := token.NewCodec(cfg.SecretKey)
	srv := httpserver.New(httpserver.Options{
		ClientOrigin:   cfg.ClientOrigin,
		RequestTimeout: cfg.RequestTimeout,
	}, store.New(db, cfg.BcryptCost), codec)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go rotateOnHangup(ctx, codec)

	log.Info().Str("driver", cfg.DBDriver).Str("port", cfg.Port).Msg("starting jobly")
	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		log.Error().Err(err).Msg("server exited")
		return
	}
	log.Info().Msg("bye")
}

func setupLogging(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// rotateOnHangup swaps the signing secret on SIGHUP. Tokens issued under
// the old secret stop verifying.
func rotateOnHangup(ctx context.Context, codec *token.Codec) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			_ = godotenv.Overload()
			cfg, err := config.Load()
			if err != nil {
				log.Error().Err(err).Msg("reload configuration")
				continue
			}
			codec.Rotate(cfg.SecretKey)
			log.Info().Bool("dev_secret", cfg.UsingDevSecret()).Msg("token secret rotated")
		}
	}
}
