// Command glowctl is the operator CLI for the GlowNatura storefront admin API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prohmpiriya/glownatura-admin/pkg/config"
	"github.com/prohmpiriya/glownatura-admin/pkg/logger"
	"github.com/prohmpiriya/glownatura-admin/pkg/telemetry"
)

const serviceName = "glowctl"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || isHelp(args[0]) {
		usage(stderr)
		return 2
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// Initialize logger; stdout is reserved for command output
	level := "warn"
	if cfg.App.Debug {
		level = "debug"
	}
	if err := logger.Init(&logger.Config{
		Level:       level,
		ServiceName: serviceName,
		Development: cfg.IsDevelopment(),
	}); err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync()
	appLog := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown(context.WithoutCancel(ctx))

	a, cleanup, err := newApp(ctx, cfg, appLog, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer cleanup()

	return a.execute(ctx, args)
}

func isHelp(arg string) bool {
	return arg == "help" || arg == "-h" || arg == "--help"
}
