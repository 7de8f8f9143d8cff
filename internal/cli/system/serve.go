package system

import (
	"context"
	"fmt"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"github.com/julianstephens/orbitflow/internal/cli"
	"github.com/julianstephens/orbitflow/internal/logger"
	"github.com/julianstephens/orbitflow/internal/server"
)

const shutdownTimeout = 10 * time.Second

type ServeCmd struct {
	Host string `help:"Listen host (default from config)."`
	Port int    `help:"Listen port (default from config)."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	if ctx.Accounts == nil {
		return fmt.Errorf("serve needs a signing secret: set ORBITFLOW_JWT_SECRET or enable the OS keyring")
	}

	cfg := server.Config{
		Host:     ctx.Config.Server.Host,
		Port:     ctx.Config.Server.Port,
		Timezone: ctx.Timezone(),
	}
	if c.Host != "" {
		cfg.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Port = c.Port
	}

	srv, err := server.New(server.Deps{
		Store:     ctx.Store,
		Accounts:  ctx.Accounts,
		Habits:    ctx.Habits,
		Todos:     ctx.Todos,
		Bookmarks: ctx.Bookmarks,
	}, cfg)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	fmt.Printf("orbitflow API listening on http://%s (metrics at /metrics)\n", cfg.Addr())

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(sctx context.Context) error {
				return srv.Shutdown(sctx)
			},
			"snapshot-cache": func(context.Context) error {
				if ctx.Cache == nil {
					return nil
				}
				return ctx.Cache.Close()
			},
		},
	)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case code := <-wait:
		logger.Info("Server stopped", "exit_code", code)
		if code != 0 {
			return fmt.Errorf("shutdown finished with exit code %d", code)
		}
		return nil
	}
}
