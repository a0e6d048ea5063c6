package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fhluo/xpic/cmd/list"
	"github.com/fhluo/xpic/cmd/markets"
	"github.com/fhluo/xpic/cmd/refresh"
	"github.com/fhluo/xpic/cmd/save"
	"github.com/fhluo/xpic/cmd/serve"
	"github.com/fhluo/xpic/cmd/thumbnail"
	"github.com/fhluo/xpic/internal/config"
	"github.com/fhluo/xpic/internal/errors"
	"github.com/fhluo/xpic/pkg/bing"
)

// rootFlags holds values that need parsing before they reach the settings
type rootFlags struct {
	market string
}

// RootCommand creates and returns the root command
func RootCommand(ctx *config.Context) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "xpic",
		Short:         "Bing wallpaper archive",
		Long:          `Keep a local archive of Bing wallpapers per market, refresh it from the community mirror and the live API, and serve it over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, ctx, flags); err != nil {
		ctx.Logger.Warn(err.Error())
	}

	marketsCmd := markets.Command(ctx)
	subcommands := []*cobra.Command{
		list.Command(ctx),
		save.Command(ctx),
		refresh.Command(ctx),
		thumbnail.Command(ctx),
		serve.Command(ctx),
		marketsCmd,
	}

	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := initialize(ctx, flags); err != nil {
			return err
		}

		// markets only prints static data
		if cmd.Name() == marketsCmd.Name() {
			return nil
		}
		return ctx.Setup()
	}

	return rootCmd
}

// initialize applies parsed flags to the settings and sets up logging.
func initialize(ctx *config.Context, flags *rootFlags) error {
	if flags.market != "" {
		market, err := bing.ParseMarket(flags.market)
		if err != nil {
			return errors.New(err).
				Category(errors.CategoryValidation).
				Component("cli").
				Context("flag", "market").
				Build()
		}
		ctx.Settings.Market = market
	}

	return ctx.SetupLogging()
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, ctx *config.Context, flags *rootFlags) error {
	settings := ctx.Settings
	pf := rootCmd.PersistentFlags()

	pf.BoolVarP(&settings.Debug, "debug", "d", settings.Debug, "Enable debug output")
	pf.StringVarP(&flags.market, "market", "m", settings.Market.Code(), "Market code, for example en-US")
	pf.StringVar(&settings.Paths.DataDir, "data-dir", settings.Paths.DataDir, "Directory holding the per-market snapshots")
	pf.StringVar(&settings.Paths.CacheDir, "cache-dir", settings.Paths.CacheDir, "Directory holding cached thumbnails")

	for key, name := range map[string]string{
		"debug":          "debug",
		"market":         "market",
		"paths.datadir":  "data-dir",
		"paths.cachedir": "cache-dir",
	} {
		if err := viper.BindPFlag(key, pf.Lookup(name)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", name, err)
		}
	}

	return nil
}
