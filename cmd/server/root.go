package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/pokerdraws-server/internal/app"
	"github.com/vovakirdan/pokerdraws-server/internal/config"
	"github.com/vovakirdan/pokerdraws-server/internal/log"
)

type flags struct {
	configPath string
	addr       string
	logLevel   string
}

func newCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:           "pokerdraws-server",
		Short:         "Real-time planning poker rooms over WebSocket.",
		Args:          cobra.ExactArgs(0),
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(f)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "path to config file, created with defaults when missing (default: ./config.yaml)")
	fs.StringVar(&f.addr, "addr", "", "HTTP listen address (env: POKERDRAWS_ADDR)")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error (env: POKERDRAWS_LOG_LEVEL)")

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("pokerdraws-server v{{.Version}}\n")

	return cmd
}

func run(f *flags) error {
	bootLogger := log.New("info", "console")

	cfg, path, err := config.Load(bootLogger, f.configPath)
	if err != nil {
		return err
	}
	cfg.UpdateFrom(config.Config{Addr: f.addr, LogLevel: f.logLevel})

	logger := log.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info().Str("config", path).Str("addr", cfg.Addr).Msg("starting pokerdraws server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, &cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize app")
		return err
	}

	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
