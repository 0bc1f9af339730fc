package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"horde-hunt/server/internal/app"
	"horde-hunt/server/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := app.ConfigFromEnv(telemetry.WrapLogger(log.Default()))
	if err := app.Run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}
}
