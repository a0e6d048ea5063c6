package thumbnail

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fhluo/xpic/internal/config"
	"github.com/fhluo/xpic/internal/errors"
	"github.com/fhluo/xpic/pkg/bing"
)

const outputMode = 0o644

type options struct {
	width     int
	height    int
	crop      string
	noPadding bool
	output    string
}

// Command creates the thumbnail command. Thumbnails go through the local
// cache, so asking twice for the same size does not hit the network.
func Command(ctx *config.Context) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "thumbnail ID",
		Short: "Fetch a resized wallpaper",
		Long:  `Fetch a thumbnail of the wallpaper ID through the cache. Without -o the path of the cached file is printed.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := opts.query(args[0])
			if err != nil {
				return err
			}

			thumbURL, err := ctx.Wallpapers.ThumbnailURL(q)
			if err != nil {
				return err
			}

			data, err := ctx.Thumbnails.Fetch(cmd.Context(), thumbURL)
			if err != nil {
				return err
			}

			if opts.output == "" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), ctx.Thumbnails.Path(thumbURL))
				return err
			}

			if err := os.WriteFile(opts.output, data, outputMode); err != nil {
				return errors.New(err).
					Category(errors.CategoryFileIO).
					Component("cli").
					FileContext(opts.output).
					Build()
			}
			return nil
		},
	}

	setupFlags(cmd, opts)

	return cmd
}

func (o *options) query(id string) (bing.ThumbnailQuery, error) {
	q := bing.ThumbnailQuery{
		ID:        id,
		Width:     o.width,
		Height:    o.height,
		NoPadding: o.noPadding,
	}
	if o.crop != "" {
		mode, err := bing.ParseCropMode(o.crop)
		if err != nil {
			return q, errors.New(err).
				Category(errors.CategoryValidation).
				Component("cli").
				Context("flag", "crop").
				Build()
		}
		q.Crop = mode
	}
	return q, nil
}

func setupFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().IntVarP(&opts.width, "width", "w", 0, "Thumbnail width in pixels")
	cmd.Flags().IntVarP(&opts.height, "height", "H", 0, "Thumbnail height in pixels")
	cmd.Flags().StringVar(&opts.crop, "crop", "", "Crop mode: smart or blind")
	cmd.Flags().BoolVar(&opts.noPadding, "no-padding", false, "Do not pad the image when the ratio differs")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the thumbnail to this file")
}
