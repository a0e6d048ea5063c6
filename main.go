package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fhluo/xpic/cmd"
	"github.com/fhluo/xpic/internal/buildinfo"
	"github.com/fhluo/xpic/internal/conf"
	"github.com/fhluo/xpic/internal/config"
	"github.com/fhluo/xpic/internal/errors"
	"github.com/fhluo/xpic/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	build := buildinfo.Current()

	if settings.Sentry.Enabled {
		flush, err := errors.InitSentry(errors.SentryOptions{
			DSN:     settings.Sentry.DSN,
			Release: build.Release(),
		})
		if err != nil {
			logger.Global().Module("main").Warn("telemetry disabled", logger.Error(err))
		}
		defer flush()
	}

	appCtx := config.NewContext(settings, nil)
	defer appCtx.Close()

	rootCmd := cmd.RootCommand(appCtx)
	rootCmd.Version = build.GetVersion()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
