package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"orderboard/internal/app/board"
	"orderboard/internal/app/subscriber"
	"orderboard/internal/common/logger"
	"orderboard/internal/config"
)

func main() {
	mode := flag.String("mode", "", "board-service | change-subscriber")
	cfgPath := flag.String("config", "", "path to config.yaml (default: probe known locations)")
	port := flag.Int("port", 0, "board-service: override http port")
	flag.Parse()

	lg := logger.New("bootstrap")

	path := *cfgPath
	if path == "" {
		var err error
		if path, err = config.FindConfig(); err != nil {
			fmt.Fprintln(os.Stderr, "no config.yaml found; pass --config")
			os.Exit(2)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		lg.Error("config_load_failed", err, map[string]any{"path": path})
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch *mode {
	case "board-service":
		lg.Info("service_starting", map[string]any{"service": "board-service", "port": cfg.Server.Port})
		if err := board.Run(ctx, cfg); err != nil {
			lg.Error("fatal", err, nil)
			os.Exit(1)
		}
	case "change-subscriber":
		lg.Info("service_starting", map[string]any{"service": "change-subscriber"})
		if err := subscriber.Run(ctx, cfg); err != nil {
			lg.Error("fatal", err, nil)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "--mode is required: board-service | change-subscriber")
		os.Exit(2)
	}
}
