package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/b0bbywan/go-portal-doctor/cli"
	"github.com/b0bbywan/go-portal-doctor/config"
	"github.com/b0bbywan/go-portal-doctor/logger"
)

func main() {
	var (
		check          = pflag.Bool("check", false, "run the full diagnostic (default)")
		testScreenCast = pflag.Bool("test-screencast", false, "run the live screen cast portal test")
		asJSON         = pflag.Bool("json", false, "machine-readable output")
		logLevel       = pflag.String("log-level", "", "override the log level (DEBUG, INFO, WARN, ERROR)")
		version        = pflag.BoolP("version", "V", false, "print the version and exit")
	)
	pflag.Parse()

	if *version {
		fmt.Printf("%s %s\n", config.AppName, config.AppVersion)
		return
	}

	cfg, err := config.New()
	if err != nil {
		logger.Fatal("[%s] Failed to load config: %v", config.AppName, err)
	}

	logger.SetLevel(cfg.LogLevel)
	if *logLevel != "" {
		logger.SetLevel(logger.ParseLevel(*logLevel))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch {
	case *testScreenCast && !*check:
		os.Exit(cli.ScreenCastTest(ctx, cfg, *asJSON))
	default:
		os.Exit(cli.Check(ctx, cfg, *testScreenCast, *asJSON))
	}
}
