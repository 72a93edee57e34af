package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApp()
	if err := app.Startup(ctx); err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if app.cfg.Web.Enabled {
		srv := web.New(app.cfg.Web.Addr, app, app.Stats(), app)
		g.Go(func() error {
			log.Printf("[web] status server listening on %s", app.cfg.Web.Addr)
			return srv.Run(ctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("shutting down: %v", err)
	}

	shutdownCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app.Shutdown(shutdownCtx)
}
