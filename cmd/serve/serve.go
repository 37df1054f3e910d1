// Package serve provides the "sheetviz serve" command.
package serve

import (
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/klytics/sheetviz/internal/config"
	"github.com/klytics/sheetviz/internal/logging"
	"github.com/klytics/sheetviz/internal/server"
)

// NewCommand returns the serve command.
func NewCommand() *cobra.Command {
	var (
		addr        string
		maxUploadMB int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the workbook API over HTTP",
		Long: `Starts an HTTP server. Upload a workbook to /api/workbooks, then fetch its
sheets as HTML tables, Chart.js configurations, PNG charts or GeoJSON.
Uploaded workbooks live in memory until deleted or the server stops.

Endpoints:
  GET    /api/health
  POST   /api/workbooks                       (multipart field "file")
  GET    /api/workbooks/{id}/sheets
  GET    /api/workbooks/{id}/sheets/{sheet}/table
  GET    /api/workbooks/{id}/sheets/{sheet}/months
  GET    /api/workbooks/{id}/sheets/{sheet}/chart?label=&values=&month=&sort=&type=&palette=
  GET    /api/workbooks/{id}/sheets/{sheet}/chart.png
  GET    /api/workbooks/{id}/sheets/{sheet}/map?lat=&lon=&name=
  DELETE /api/workbooks/{id}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Serve.Addr
			}
			if !cmd.Flags().Changed("max-upload-mb") {
				maxUploadMB = cfg.Serve.MaxUploadMB
			}
			if _, _, err := net.SplitHostPort(addr); err != nil {
				return fmt.Errorf("invalid address %q — use host:port, e.g. 127.0.0.1:8080", addr)
			}

			logger, err := logging.New(verbose)
			if err != nil {
				return fmt.Errorf("could not create logger: %w", err)
			}
			defer logger.Sync()

			srv := server.New(server.Options{
				Addr:          addr,
				MaxUploadMB:   maxUploadMB,
				MonthKeywords: cfg.Month.Keywords,
				Logger:        logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (Ctrl+C to stop)\n", addr)
			if err := srv.ListenAndServe(ctx); err != nil {
				logger.Error("server stopped", zap.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address (default: serve.addr)")
	cmd.Flags().IntVar(&maxUploadMB, "max-upload-mb", server.DefaultMaxUploadMB, "Largest accepted upload in MB (default: serve.max_upload_mb)")

	return cmd
}
