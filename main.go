package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/mirecekd/diktatOR/config"
	"github.com/mirecekd/diktatOR/pkg/client"
	"github.com/mirecekd/diktatOR/pkg/observe"
	"github.com/mirecekd/diktatOR/pkg/wizard"
	"github.com/mirecekd/diktatOR/server"
	"github.com/mirecekd/diktatOR/server/ui"
)

const version = "1.0.0"

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("error loading .env file", "err", err)
	}

	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Parse(*configPath)

	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	shutdown, err := observe.InitProvider(ctx, "diktator", version)

	if err != nil {
		slog.Error("initializing metrics failed", "err", err)
		os.Exit(1)
	}

	defer shutdown(ctx)

	metrics, err := observe.NewMetrics(nil)

	if err != nil {
		slog.Error("creating metric instruments failed", "err", err)
		os.Exit(1)
	}

	var opts []client.RequestOption

	if cfg.API.Token != "" {
		opts = append(opts, client.WithToken(cfg.API.Token))
	}

	c := client.New(cfg.API.URL, opts...)

	handler := ui.New(c, wizard.New(c, metrics), metrics)

	if err := server.New(cfg.Addr, handler).ListenAndServe(); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}
