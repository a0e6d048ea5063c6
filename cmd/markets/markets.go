package markets

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fhluo/xpic/internal/conf"
	"github.com/fhluo/xpic/internal/config"
	"github.com/fhluo/xpic/internal/errors"
	"github.com/fhluo/xpic/internal/logger"
	"github.com/fhluo/xpic/pkg/bing"
)

// Command creates the markets command.
func Command(ctx *config.Context) *cobra.Command {
	var (
		native     bool
		setDefault string
	)

	cmd := &cobra.Command{
		Use:   "markets",
		Short: "List supported markets or change the default one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()

			if setDefault != "" {
				market, err := saveDefaultMarket(ctx, setDefault)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(w, "default market: %s\n", market.Code())
				return err
			}

			for _, market := range bing.Markets() {
				name := market.DisplayName()
				if native {
					name = market.NativeName()
				}
				if _, err := fmt.Fprintf(w, "%-6s %s\n", market.Code(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&native, "native", false, "Print market names in their own language")
	cmd.Flags().StringVar(&setDefault, "set-default", "", "Store this market as the default in the config file")

	return cmd
}

// saveDefaultMarket writes code as the configured market.
func saveDefaultMarket(ctx *config.Context, code string) (bing.Market, error) {
	market, err := bing.ParseMarket(code)
	if err != nil {
		return "", errors.New(err).
			Category(errors.CategoryValidation).
			Component("cli").
			Context("flag", "set-default").
			Build()
	}

	if err := conf.SaveSettings(func(s *conf.Settings) { s.Market = market }); err != nil {
		return "", err
	}
	ctx.Settings.Market = market
	ctx.Logger.Info("default market changed", logger.String("market", market.Code()))
	return market, nil
}
