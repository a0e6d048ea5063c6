package save

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/fhluo/xpic/internal/config"
	"github.com/fhluo/xpic/internal/errors"
	"github.com/fhluo/xpic/internal/wallpaper"
)

// Command creates the save command, which downloads full-size wallpapers.
func Command(ctx *config.Context) *cobra.Command {
	var number int

	cmd := &cobra.Command{
		Use:   "save DIR",
		Short: "Download wallpapers to a directory",
		Long:  `Download the wallpapers of the selected market to DIR/<id>. Files that already exist are skipped and failed downloads do not stop the others.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			images, err := ctx.Refresher.Refresh(cmd.Context(), ctx.Settings.Market, nil)
			if err != nil {
				return err
			}
			if number > 0 && len(images) > number {
				images = images[:number]
			}

			report, err := ctx.Downloader().SaveAll(cmd.Context(), images, args[0])
			if err != nil {
				return err
			}
			return printReport(cmd, report)
		},
	}

	cmd.Flags().IntVarP(&number, "number", "n", 0, "Download at most this many wallpapers, 0 downloads all")

	return cmd
}

func printReport(cmd *cobra.Command, report *wallpaper.DownloadReport) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "saved %d, skipped %d, failed %d\n", len(report.Saved), len(report.Skipped), len(report.Failed))

	if len(report.Failed) == 0 {
		return nil
	}

	ids := make([]string, 0, len(report.Failed))
	for id := range report.Failed {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "  %s: %v\n", id, report.Failed[id])
	}

	return errors.Newf("%d of %d downloads failed", len(report.Failed),
		len(report.Saved)+len(report.Skipped)+len(report.Failed)).
		Category(errors.CategoryImageFetch).
		Component("cli").
		Build()
}
