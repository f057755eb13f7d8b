package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/entjos/academic-kickstart/internal/build"
	"github.com/entjos/academic-kickstart/internal/server"
)

var (
	servePort    int
	serveDrafts  bool
	serveNoWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site locally and rebuild on change",
	Long: `The serve command performs an initial build, then starts a local web
server and watches the content, layouts and static directories. Changes
trigger a rebuild; a failed rebuild keeps the previous output up.
The base URL is pointed at the local server so links work during
development. Configuration changes need a restart.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort > 0 {
			cfg.Server.Port = servePort
		}
		cfg.BaseURL = fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)

		rebuild := func(ctx context.Context) (build.Stats, error) {
			s, err := loadSite(serveDrafts || cfg.Content.BuildDrafts)
			if err != nil {
				return build.Stats{}, err
			}
			return build.Build(ctx, cfg, s)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.New(cfg, rebuild)
		srv.NoWatch = serveNoWatch

		printer.Info("Press Ctrl+C to stop the server.")
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to serve on (overrides config)")
	serveCmd.Flags().BoolVarP(&serveDrafts, "drafts", "D", false, "include draft posts")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "build once and serve without watching for changes")
}
