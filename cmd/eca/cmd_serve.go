package main

import (
	"os"
	"os/signal"
	"syscall"

	"eca-morph/internal/metrics"
	"eca-morph/internal/server"
	"eca-morph/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func runServe(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	reg := metrics.NewRegistry()
	runner, closeStore, err := newRunner(cfg, []service.Option{service.WithMetrics(reg.Metrics)})
	if err != nil {
		return err
	}
	defer closeStore()

	gin.SetMode(gin.ReleaseMode)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(runner, reg, cfg).ListenAndServe(ctx, cfg.Server.Addr)
}
