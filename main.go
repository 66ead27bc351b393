package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JohnBravos/bookhub-manager/config"
	"github.com/JohnBravos/bookhub-manager/engine"
	"github.com/JohnBravos/bookhub-manager/log"
	"github.com/JohnBravos/bookhub-manager/server"
	"github.com/JohnBravos/bookhub-manager/store"
	"github.com/JohnBravos/bookhub-manager/store/db"
	"github.com/JohnBravos/bookhub-manager/util"
	"github.com/JohnBravos/bookhub-manager/version"
	"github.com/JohnBravos/bookhub-manager/worker"
)

const greetingBanner = `
██████   ██████   ██████  ██   ██ ██   ██ ██    ██ ██████
██   ██ ██    ██ ██    ██ ██  ██  ██   ██ ██    ██ ██   ██
██████  ██    ██ ██    ██ █████   ███████ ██    ██ ██████
██   ██ ██    ██ ██    ██ ██  ██  ██   ██ ██    ██ ██   ██
██████   ██████   ██████  ██   ██ ██   ██  ██████  ██████
`

var (
	configFile string

	rootCmd = &cobra.Command{
		Use:     "bookhub",
		Short:   "BookHub is a library lending management system",
		Version: version.GetCurrentVersion(),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if err := run(ctx); err != nil {
				log.Fatal("Failed to start server", zap.Error(err))
			}
		},
	}
)

func init() {
	config.GetDefaultOptions()
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to the config file")
	rootCmd.PersistentFlags().StringVar(&config.Opts.Host, "host", config.Opts.Host, "listen host")
	rootCmd.PersistentFlags().IntVar(&config.Opts.Port, "port", config.Opts.Port, "listen port")
	rootCmd.PersistentFlags().StringVar(&config.Opts.Data, "data", config.Opts.Data, "data directory")
}

func run(ctx context.Context) error {
	if configFile != "" {
		if _, err := config.ParseFile(configFile); err != nil {
			return err
		}
	}
	if _, err := config.GetConfig(); err != nil {
		return err
	}
	if config.Opts.JWTSecret == "" {
		secret, err := util.GenerateSecret(32)
		if err != nil {
			return err
		}
		config.Opts.JWTSecret = secret
	}

	// Rebuild the logger now that config is final.
	log.Logger = log.NewLogger()
	defer log.Logger.Sync()

	database, err := db.NewDB(config.Opts.DSN)
	if err != nil {
		log.Error("Error connecting to database", zap.Error(err))
		return err
	}
	defer database.Close()
	if err := database.Migrate(ctx); err != nil {
		log.Error("Error migrating database", zap.Error(err))
		return err
	}

	s := store.NewStore(database.DB)
	if err := s.Ping(); err != nil {
		log.Error("Error pinging database", zap.Error(err))
		return err
	}

	e := engine.NewEngine(s, engine.PolicyFromOptions(config.Opts))
	if err := e.LoadPolicy(ctx); err != nil {
		log.Error("Error loading lending settings", zap.Error(err))
		return err
	}

	pool := worker.NewPool(s, config.Opts.WorkerPoolSize)
	worker.StartNotifyLoop(ctx, s, pool)

	httpServer, err := server.StartServer(ctx, e)
	if err != nil {
		log.Error("Error starting server", zap.Error(err))
		return err
	}

	println(greetingBanner)
	log.Info("Server started",
		zap.String("host", config.Opts.Host),
		zap.Int("port", config.Opts.Port),
		zap.String("data", config.Opts.Data))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down server", zap.Error(err))
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
