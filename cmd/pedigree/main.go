// @title        Pedigree Tracker API
// @version      1.0
// @description  Registro de animales con genealogía (madre / padre), validación de parentesco y consultas de linaje.
// @BasePath     /api/v1
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pedigree-tracker/internal/adapters/storage"
	"pedigree-tracker/internal/config"
	"pedigree-tracker/internal/domain/animals"
	"pedigree-tracker/internal/platform/logger"
	"pedigree-tracker/internal/platform/metrics"
	"pedigree-tracker/internal/router"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func main() {
	root := &cli.Command{
		Name:  "pedigree",
		Usage: "Livestock pedigree registry: HTTP server and CLI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file (env vars override it)",
				Sources: cli.EnvVars("PEDIGREE_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			seedCommand(),
			clientCommand(),
		},
		// sin subcomando: levanta el servidor
		Action: func(ctx context.Context, c *cli.Command) error {
			return runServe(ctx, c.String("config"))
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Action: func(ctx context.Context, c *cli.Command) error {
			return runServe(ctx, c.String("config"))
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending schema migrations (sqlite / postgres)",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, log, err := setup(c.String("config"))
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			v, err := storage.Migrate(ctx, cfg.Storage)
			if err != nil {
				return err
			}
			log.Info("schema up to date", map[string]any{"driver": string(cfg.Storage.Driver), "version": v})
			return nil
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Create the default animal types if none exist",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, log, err := setup(c.String("config"))
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			st, err := storage.Open(ctx, cfg.Storage, log)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			n, err := animals.NewService(st.Repo, animals.WithLogger(log)).SeedDefaultTypes(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%d animal type(s) created\n", n)
			return nil
		},
	}
}

func setup(configPath string) (config.Config, *logger.ZapLogger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.Log.AppName,
	})
	return cfg, log, nil
}

func runServe(ctx context.Context, configPath string) error {
	cfg, log, err := setup(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error("close storage", map[string]any{"error": err})
		}
	}()

	if cfg.Seed.DefaultTypes {
		if _, err := animals.NewService(st.Repo, animals.WithLogger(log)).SeedDefaultTypes(ctx); err != nil {
			return fmt.Errorf("seed default types: %w", err)
		}
	}

	handler := router.NewRouter(router.Options{
		Repo:        st.Repo,
		Logger:      log,
		Metrics:     metrics.New(),
		CORSOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", map[string]any{"addr": srv.Addr, "driver": string(cfg.Storage.Driver)})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
