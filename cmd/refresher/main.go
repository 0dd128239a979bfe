package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"goldrates-service/internal/bootstrap"
	"goldrates-service/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	log := logx.L()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, cleanup, err := bootstrap.InitRefresher(ctx)
	if err != nil {
		log.Fatal("init refresher", zap.Error(err))
	}
	defer cleanup()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	w.Start(ctx)
}
