// Command gallery is a terminal browser for the assets stored behind the gateway.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/inkpad/service/internal/client"
	"github.com/inkpad/service/internal/logger"
	"github.com/inkpad/service/internal/tui"
)

const (
	apiURLEnvVar     = "INKPAD_API_URL"
	publicBaseEnvVar = "INKPAD_PUBLIC_BASE"
	defaultAPIURL    = "http://localhost:8080"
	defaultPageSize  = 12
)

func main() {
	apiURL := flag.String("api", envOr(apiURLEnvVar, defaultAPIURL), "gateway base URL (overrides "+apiURLEnvVar+")")
	limit := flag.Int("limit", defaultPageSize, "files per page")
	prefix := flag.String("prefix", "", "initial key prefix, e.g. uploads/")
	all := flag.Bool("all", false, "show every file, not only images")
	logPath := flag.String("log", "", "write debug logs to this file")
	publicBase := flag.String("public", os.Getenv(publicBaseEnvVar), "public base URL used by \"copy public URL\" (overrides "+publicBaseEnvVar+")")
	flag.Parse()

	if *limit <= 0 {
		fmt.Fprintln(os.Stderr, "gallery: -limit must be positive")
		os.Exit(2)
	}

	lg, err := logger.NewFile(*logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gallery: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	lg.Info("gallery starting", zap.String("api", *apiURL), zap.Int("limit", *limit))
	err = tui.Run(ctx, client.New(*apiURL), tui.Options{
		PageSize:   *limit,
		Prefix:     *prefix,
		ImagesOnly: !*all,
		PublicBase: *publicBase,
	}, lg)
	if err != nil {
		lg.Error("gallery exited", zap.Error(err))
		fmt.Fprintf(os.Stderr, "gallery: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
