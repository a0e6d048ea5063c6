package refresh

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/fhluo/xpic/internal/config"
	"github.com/fhluo/xpic/internal/gallery"
	"github.com/fhluo/xpic/internal/wallpaper"
	"github.com/fhluo/xpic/pkg/bing"
)

// Command creates the refresh command.
func Command(ctx *config.Context) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh market snapshots",
		Long:  `Bring the snapshot of the selected market, or of every market with --all, up to date and print how many wallpapers it holds.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()

			if !all {
				market := ctx.Settings.Market
				images, err := ctx.Refresher.Refresh(cmd.Context(), market, nil)
				if err != nil {
					return err
				}
				return printSummary(w, market, images)
			}

			results, err := ctx.Refresher.RefreshAll(cmd.Context(), bing.Markets(), ctx.Settings.HTTP.Concurrency)
			markets := make([]bing.Market, 0, len(results))
			for market := range results {
				markets = append(markets, market)
			}
			slices.Sort(markets)
			for _, market := range markets {
				if err := printSummary(w, market, results[market]); err != nil {
					return err
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Refresh every supported market")

	return cmd
}

func printSummary(w io.Writer, market bing.Market, images []wallpaper.Image) error {
	newest, ok := gallery.Newest(images)
	if !ok {
		_, err := fmt.Fprintf(w, "%s: %d images\n", market.Code(), len(images))
		return err
	}
	_, err := fmt.Fprintf(w, "%s: %d images, newest %s\n", market.Code(), len(images), newest.Format(time.DateOnly))
	return err
}
