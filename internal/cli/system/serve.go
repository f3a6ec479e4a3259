package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/habitgrid/internal/api"
	"github.com/julianstephens/habitgrid/internal/cli"
)

type ServeCmd struct {
	Addr string `help:"Listen address (default: server.addr from config)."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	if len(ctx.Config.Auth.Tokens) == 0 {
		return fmt.Errorf("no API tokens configured; add auth.tokens to the config file")
	}

	addr := ctx.Config.Server.Addr
	if c.Addr != "" {
		addr = c.Addr
	}

	if !ctx.Config.Log.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := api.NewRouter(ctx.Service, ctx.Store, ctx.Config.Auth.Tokens)
	fmt.Printf("Serving habitgrid API on %s\n", addr)
	return api.NewServer(addr, router).Run(sigCtx)
}
