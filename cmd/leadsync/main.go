package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/leadsync/internal/cli"
)

func main() {
	// Load .env file if it exists; real environment variables win
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	// SIGINT stops the run between calls; completed batches stay written
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}
