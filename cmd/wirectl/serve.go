package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/danmuck/mcwire/internal/config"
	"github.com/danmuck/mcwire/internal/logging"
	"github.com/danmuck/mcwire/internal/observability"
	"github.com/danmuck/mcwire/internal/status"
)

const adminShutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	var (
		cfgPath   string
		addr      string
		adminAddr string
		motd      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer status pings and expose /health and /metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServerConfig(cfgPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Addr = addr
			}
			if flags.Changed("admin") {
				cfg.AdminAddr = adminAddr
			}
			if flags.Changed("motd") {
				cfg.Status.MOTD = motd
			}
			if err := config.ValidateServerConfig(cfg); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "server config file")
	cmd.Flags().StringVar(&addr, "addr", ":25565", "status listener address")
	cmd.Flags().StringVar(&adminAddr, "admin", "127.0.0.1:9465", "admin HTTP address, empty disables it")
	cmd.Flags().StringVar(&motd, "motd", "", "status description text")
	return cmd
}

func runServe(ctx context.Context, cfg config.ServerConfig) error {
	level := zerolog.InfoLevel
	if parsed, ok := logging.ParseLevel(cfg.LogLevel); ok {
		level = parsed
	}
	logger := observability.InitLogger("wirectl", level, os.Stdout)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("serve: listen %s: %w", cfg.Addr, err)
	}
	svc := status.New(cfg.StatusConfig(), logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return svc.Serve(ctx, ln)
	})

	if strings.TrimSpace(cfg.AdminAddr) != "" {
		gin.SetMode(gin.ReleaseMode)
		srv := &http.Server{
			Addr:              cfg.AdminAddr,
			Handler:           observability.NewAdminRouter(cfg.Node, logger, cfg.CorsOrigins),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info().Str("addr", cfg.AdminAddr).Msg("admin_listen")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: admin: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), adminShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
