// Command peerauthd runs a standalone Peer Authorization Manager
// instance with a Prometheus metrics endpoint, wiring configuration,
// logging, the registry and the manager together the way cli/app and
// cli/server wire a node together in the example corpus.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/circuitmesh/peerauth/config"
	"github.com/circuitmesh/peerauth/internal/logging"
	"github.com/circuitmesh/peerauth/pkg/auth"
	"github.com/circuitmesh/peerauth/pkg/authmetrics"
	"github.com/circuitmesh/peerauth/pkg/network"
)

var version = "dev"

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "peerauthd"
	app.Usage = "stand-alone peer authorization manager daemon"
	app.Version = version
	app.Commands = []*cli.Command{
		startCommand(),
	}
	return app
}

func startCommand() *cli.Command {
	return &cli.Command{
		Name:  "start",
		Usage: "start the peer authorization manager daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the YAML config file",
				Value: config.DefaultConfigPath,
			},
		},
		Action: runStart,
	}
}

func runStart(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logging.New(logging.Settings{
		Level:           cfg.Logger.LogLevel,
		Encoding:        cfg.Logger.LogEncoding,
		ForceTimestamps: cfg.Logger.ForceTimestamps,
	})
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	registry := network.NewInMemoryRegistry()

	manager := auth.NewManager(
		registry,
		cfg.Identity.LocalID,
		auth.WithLogger(logging.Named(log, "auth")),
		auth.WithIntakeBuffer(cfg.P2P.DisconnectIntakeBuffer),
		auth.WithDisconnectDedupeSize(cfg.P2P.DisconnectDedupeSize),
	)

	if err := authmetrics.Register(manager); err != nil {
		return fmt.Errorf("registering metrics callback: %w", err)
	}

	if cfg.Metrics.Enabled {
		go serveMetrics(logging.Named(log, "metrics"), cfg.Metrics.Address)
	}

	log.Info("peer authorization manager started",
		zap.String("local_id", manager.LocalIdentity()))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	manager.Close()
	return nil
}

func serveMetrics(log *zap.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info("metrics endpoint listening", zap.String("address", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics endpoint stopped", zap.Error(err))
	}
}
