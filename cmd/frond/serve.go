package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/frond-ui/frond/pkg/build"
	"github.com/frond-ui/frond/pkg/observe"
	"github.com/frond-ui/frond/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		port       int
		host       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tree with live updates",
		Long: `Start the preview server.

The tree is served as HTML, state writes are accepted on POST /state,
and rebuilt fragments are pushed to the browser over a websocket so
the page updates in place.

Examples:
  frond serve
  frond serve --port 9000
  frond serve --host 0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, port, host)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Project config file (default frond.json in cwd)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to serve on (default from frond.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from frond.json)")

	return cmd
}

func runServe(configPath string, port int, host string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Serve.Port = port
	}
	if host != "" {
		cfg.Serve.Host = host
	}

	var (
		observer build.Observer
		metrics  *observe.Metrics
	)
	if cfg.Serve.Metrics {
		metrics = observe.NewMetrics()
		observer = metrics
	}

	sess, err := newSession(cfg, observer)
	if err != nil {
		return err
	}
	defer sess.Close()

	if metrics != nil {
		sess.Fetcher().SetInflightGauge(metrics.InflightGauge())
	}

	srv := server.New(sess.Builder(), &server.Config{
		Address:       cfg.ServeAddress(),
		Title:         cfg.Serve.Title,
		Styles:        cfg.Serve.Styles,
		EnableMetrics: cfg.Serve.Metrics,
	})

	printBanner()
	fmt.Println()
	info("serving %s", cfg.TreePath())
	info("http://%s:%d", cfg.Serve.Host, cfg.Serve.Port)
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx)
}
