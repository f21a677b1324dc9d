// main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Bootstrap logger; replaced once configuration is loaded.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &application{logger: logger}
	if err := app.rootCommand().ExecuteContext(ctx); err != nil {
		app.logger.Error("Application terminated with an error", "error", fmt.Sprintf("%+v", err))
		stop()
		os.Exit(1)
	}
}
