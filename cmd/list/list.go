package list

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fhluo/xpic/internal/config"
	"github.com/fhluo/xpic/internal/wallpaper"
)

type options struct {
	number int
	query  string
}

// Command creates the list command, which prints the wallpapers of the
// selected market newest first.
func Command(ctx *config.Context) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List wallpapers",
		Long:  `Refresh the selected market if its snapshot is stale and print each wallpaper as "title: url".`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			images, err := ctx.Refresher.Refresh(cmd.Context(), ctx.Settings.Market, nil)
			if err != nil {
				return err
			}

			images = wallpaper.Filter(images, opts.query)
			if opts.number > 0 && len(images) > opts.number {
				images = images[:opts.number]
			}

			w := cmd.OutOrStdout()
			for i := range images {
				if _, err := fmt.Fprintf(w, "%s: %s\n", images[i].DisplayTitle(), images[i].URL); err != nil {
					return err
				}
			}
			return nil
		},
	}

	setupFlags(cmd, opts)

	return cmd
}

func setupFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().IntVarP(&opts.number, "number", "n", 0, "Print at most this many wallpapers, 0 prints all")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "Only print wallpapers whose title or copyright contains this text")
}
