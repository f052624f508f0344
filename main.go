package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/TFMV/findfile/cmd"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync()

	// Set up a deferred function to recover from panics.
	defer func() {
		if r := recover(); r != nil {
			logger.Error("recovered from panic", zap.Any("panic", r))
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		stop()
		logger.Fatal("error executing command", zap.Error(err))
	}
}
