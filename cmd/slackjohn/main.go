package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/slackjohn/internal/config"
	"github.com/dropDatabas3/slackjohn/internal/events"
	httpserver "github.com/dropDatabas3/slackjohn/internal/http"
	debugctrl "github.com/dropDatabas3/slackjohn/internal/http/controllers/debug"
	healthctrl "github.com/dropDatabas3/slackjohn/internal/http/controllers/health"
	slackctrl "github.com/dropDatabas3/slackjohn/internal/http/controllers/slack"
	"github.com/dropDatabas3/slackjohn/internal/oauth"
	"github.com/dropDatabas3/slackjohn/internal/observability/logger"
	"github.com/dropDatabas3/slackjohn/internal/security/secretbox"
	"github.com/dropDatabas3/slackjohn/internal/security/signature"
	"github.com/dropDatabas3/slackjohn/internal/slack"
	"github.com/dropDatabas3/slackjohn/internal/store"
	"github.com/dropDatabas3/slackjohn/internal/vault"

	// Los adapters se registran vía init()
	_ "github.com/dropDatabas3/slackjohn/internal/store/adapters/fs"
	_ "github.com/dropDatabas3/slackjohn/internal/store/adapters/pg"
)

func main() {
	// .env opcional; en despliegues reales las vars vienen del entorno.
	_ = godotenv.Load()

	var configPath string

	root := &cobra.Command{
		Use:          "slackjohn",
		Short:        "Multi-workspace Slack bot que responde \"thinking\"",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "ruta al config.yaml (opcional)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el endpoint HTTP y los workers de eventos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	installationsCmd := &cobra.Command{
		Use:   "installations",
		Short: "Operaciones sobre instalaciones guardadas",
	}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Lista los workspaces instalados (sin tokens)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstallationsList(cmd.Context(), configPath)
		},
	}
	installationsCmd.AddCommand(listCmd)

	keygenCmd := &cobra.Command{
		Use:   "keygen",
		Short: "Genera una clave nueva para ENCRYPTION_KEY (32 bytes, hex)",
		RunE: func(cmd *cobra.Command, args []string) error {
			key := make([]byte, 32)
			if _, err := rand.Read(key); err != nil {
				return err
			}
			fmt.Println(hex.EncodeToString(key))
			return nil
		},
	}

	root.AddCommand(serveCmd, installationsCmd, keygenCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildDeps abre el storage y arma el vault a partir de la config.
func buildDeps(ctx context.Context, cfg *config.Config) (store.Connection, *vault.Store, error) {
	conn, err := store.Open(ctx, store.AdapterConfig{
		Name:         cfg.Storage.Driver,
		DSN:          cfg.Storage.DSN,
		DataDir:      cfg.Storage.DataDir,
		MaxOpenConns: cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Storage.Postgres.MaxIdleConns,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("store open: %w", err)
	}

	box, err := secretbox.NewFromHex(cfg.Security.EncryptionKey)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("encryption key: %w", err)
	}

	return conn, vault.New(conn.Installations(), box), nil
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       os.Getenv("LOG_LEVEL"),
		ServiceName: "slackjohn",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, v, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	apiClient := slack.NewClient(cfg.Slack.APIBaseURL)
	coordinator := oauth.NewCoordinator(oauth.Config{
		ClientID:     cfg.Slack.ClientID,
		ClientSecret: cfg.Slack.ClientSecret,
		RedirectURI:  cfg.RedirectURI(),
		Scopes:       cfg.Slack.Scopes,
	}, oauth.NewStateStore(cfg.OAuth.StateTTL), apiClient, v)

	router := events.NewRouter(v, apiClient, conn.EventLog())
	dispatcher := events.NewDispatcher(router, cfg.Events.QueueSize, cfg.Events.Workers)
	verifier := signature.NewVerifier(cfg.Slack.SigningSecret)

	handler := httpserver.NewRouter(httpserver.RouterDeps{
		Env:    cfg.App.Env,
		Slack:  slackctrl.NewControllers(verifier, dispatcher, coordinator),
		Health: healthctrl.NewController(conn),
		Debug:  debugctrl.NewInstallationsController(v),
	})
	srv := httpserver.NewServer(cfg.Server.Addr, handler)

	log.Info("service starting",
		logger.Component("main"),
		logger.Driver(conn.Name()),
		logger.Addr(cfg.Server.Addr),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return dispatcher.Run(gctx) })
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("service stopped with error", logger.Err(err))
		return err
	}
	log.Info("service stopped")
	return nil
}

func runInstallationsList(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: "warn", ServiceName: "slackjohn"})

	conn, v, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	summaries, err := v.ListSummary(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TEAM ID\tTEAM NAME\tBOT USER")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.TeamID, s.TeamName, s.BotUserID)
	}
	return tw.Flush()
}
