package serve

import (
	"github.com/spf13/cobra"

	"github.com/fhluo/xpic/internal/api"
	"github.com/fhluo/xpic/internal/config"
)

// Command creates the serve command, which runs the HTTP API until the
// process is interrupted.
func Command(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the wallpaper API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server := api.NewServer(api.ConfigFromSettings(ctx.Settings),
				ctx.Refresher, ctx.Wallpapers, ctx.Thumbnails,
				api.WithServerMetrics(ctx.Metrics),
				api.WithServerLogger(ctx.Logger))
			return server.Run(cmd.Context())
		},
	}

	setupFlags(cmd, ctx)

	return cmd
}

func setupFlags(cmd *cobra.Command, ctx *config.Context) {
	cmd.Flags().StringVarP(&ctx.Settings.WebServer.Listen, "listen", "l", ctx.Settings.WebServer.Listen, "Address to listen on")
	cmd.Flags().BoolVar(&ctx.Settings.WebServer.Metrics, "metrics", ctx.Settings.WebServer.Metrics, "Expose Prometheus metrics on /metrics")
}
