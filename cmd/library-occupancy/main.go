package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/library-occupancy/config"
	"github.com/theoremus-urban-solutions/library-occupancy/internal"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	rootCmd := &cobra.Command{
		Use:           "library-occupancy",
		Short:         "Reconciles library occupancy feeds with the live occupancy record",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadAppConfig(configPath); err != nil {
				return err
			}
			if logLevel != "" {
				config.Config.Logging.Level = logLevel
			}
			internal.InitLogging(config.Config.Logging.Level, config.Config.Logging.Format)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yml (default: search config.yml, ./config/config.yml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug|info|warn|error)")

	rootCmd.AddCommand(serveCommand(), oneshotCommand())
	return rootCmd
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the live client, the feed refresher and the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, config.Config)
		},
	}
}

// serve runs until ctx is done or the server fails; either way the
// refresher is stopped before returning
func serve(ctx context.Context, cfg config.AppConfig) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.live.Start(ctx); err != nil {
		return err
	}

	refreshDone := make(chan struct{})
	go func() {
		defer close(refreshDone)
		a.refresher.Run(ctx, cfg.RefreshInterval())
	}()

	err = a.server().Run(ctx)
	cancel()
	<-refreshDone
	return err
}
