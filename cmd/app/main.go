// Command app is the ledger service's entrypoint: load configuration,
// wire the service, start the HTTP server and hold-expiration sweep, and
// shut down cleanly on signal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentledger/ledger/internal/bootstrap"
)

func main() {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		panic(err)
	}

	svc, err := bootstrap.NewService(cfg)
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go svc.RunHoldSweep(ctx)

	go func() {
		<-ctx.Done()
		svc.Logger.Info("shutting down")

		if err := svc.App.Shutdown(); err != nil {
			svc.Logger.Errorf("shutdown: %v", err)
		}
	}()

	svc.Logger.Infof("listening on %s", cfg.ServerAddress)

	if err := svc.App.Listen(cfg.ServerAddress); err != nil {
		svc.Logger.Errorf("server stopped: %v", err)
	}
}
