package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/inkpress-dev/inkpress/internal/build"
	"github.com/inkpress-dev/inkpress/internal/logging"
	"github.com/inkpress-dev/inkpress/internal/server"
)

type serveCmd struct {
	host string
	port int
}

func (c *serveCmd) register() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Build the site and serve it with live reload",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&c.host, "host", "", "Bind host (default from settings)")
	cmd.Flags().IntVar(&c.port, "port", 0, "Bind port (default from settings)")
	return cmd
}

func (c *serveCmd) run(ctx context.Context, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	journal, err := openJournal(cfg)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.SiteRoot)
	if err != nil {
		return err
	}
	defer logger.Close()

	settings := server.DefaultSettings()
	if c.host != "" {
		settings.Host = c.host
	}
	if c.port > 0 {
		settings.Port = c.port
	}
	builder := build.New(cfg, journal)
	srv := server.New(settings, cfg, builder, server.WithLogger(logger))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	fmt.Printf("Serving %s on %s\n", cfg.OutputDir(), settings.URL())
	return srv.Run(ctx)
}
