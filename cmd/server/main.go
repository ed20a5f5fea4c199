// Package main provides the typrr server and its stats commands.
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

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/typrr/internal/arena"
	"github.com/DoyleJ11/typrr/internal/config"
	"github.com/DoyleJ11/typrr/internal/gateway"
	"github.com/DoyleJ11/typrr/internal/httpapi"
	"github.com/DoyleJ11/typrr/internal/session"
	"github.com/DoyleJ11/typrr/internal/store"
	"github.com/DoyleJ11/typrr/internal/words"
)

const shutdownGrace = 10 * time.Second

var envFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "typrr",
		Short:        "Typing races and practice rooms",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newProfileCmd())
	return rootCmd
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// setup loads config and opens the logger and store shared by every command.
func setup() (config.Config, *zap.Logger, *store.Store, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	st, err := store.Open(cfg.DatabaseDSN, log)
	if err != nil {
		_ = log.Sync()
		return config.Config{}, nil, nil, fmt.Errorf("open store: %w", err)
	}
	return cfg, log, st, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, log, st, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Warn("close store", zap.Error(cerr))
		}
	}()

	pools := words.DefaultPools()
	if cfg.WordsFile != "" {
		extra, err := words.LoadPack(cfg.WordsFile)
		if err != nil {
			return fmt.Errorf("load words: %w", err)
		}
		pools = pools.Merge(extra)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw := gateway.New(log)
	for _, name := range cfg.Channels {
		gw.EnsureChannel(name)
	}

	race := session.NewRace(ctx, st, cfg.PersistTimeout, session.Options{Log: log})
	practice := session.DefaultPracticeSettings()
	practice.DefaultWords = cfg.PracticeWords
	practice.DefaultDuration = cfg.PracticeTime
	practice.Countdown = cfg.Countdown

	a := arena.New(ctx, arena.Deps{
		Platform:     gw,
		Race:         race,
		Prompts:      words.New(pools),
		Stats:        st,
		Log:          log,
		RaceWords:    cfg.RaceWords,
		RaceDuration: cfg.RaceDuration,
	}, practice)
	defer a.Close()

	if n, err := a.Rehydrate(ctx); err != nil {
		log.Warn("rehydrate practice channels", zap.Error(err))
	} else if n > 0 {
		log.Info("rehydrated practice channels", zap.Int("count", n))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.SetupRoutes(a, gw, race, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
