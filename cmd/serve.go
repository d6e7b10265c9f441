package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/gstin-gateway/internal/adapters/httpapi"
	"github.com/bnema/gstin-gateway/internal/log"
)

const (
	shutdownTimeout          = 10 * time.Second
	readHeaderTimeout        = 10 * time.Second
	rateLimiterCleanupPeriod = time.Minute
)

func newServeCmd(loader *appLoader) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the GSTIN verification HTTP gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loader.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Port = port
				if err := a.cfg.Validate(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ctx, err = a.logContext(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			listener, err := net.Listen("tcp", a.cfg.Addr())
			if err != nil {
				return fmt.Errorf("listen on %s: %w", a.cfg.Addr(), err)
			}

			return a.serve(ctx, listener)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override the listening port")

	return cmd
}

// serve runs the gateway on listener until ctx is cancelled, then drains
// in-flight requests.
func (a *app) serve(ctx context.Context, listener net.Listener) error {
	gw, err := a.buildGateway(ctx)
	if err != nil {
		_ = listener.Close()
		return err
	}
	defer closeGateway(ctx, gw)

	server := &http.Server{
		Handler:           a.router(ctx, gw),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	a.logStartup(ctx, gw, listener.Addr().String())

	serveErr := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server stopped unexpectedly: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(ctx, "shutdown started")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "shutdown failed", err)
		return err
	}
	log.Info(ctx, "shutdown complete")
	return nil
}

func (a *app) router(ctx context.Context, gw *gateway) http.Handler {
	opts := httpapi.RouterOptions{
		AllowedOrigins: a.cfg.HTTP.CORSAllowedOrigins,
		ExposeKeyState: a.cfg.HTTP.ExposeKeyState,
		Metrics:        gw.metrics,
	}
	if a.cfg.HTTP.RateLimitRPS > 0 {
		limiter := httpapi.NewRateLimiter(a.cfg.HTTP.RateLimitRPS, a.cfg.HTTP.RateLimitBurst)
		limiter.StartCleanup(ctx, rateLimiterCleanupPeriod)
		opts.RateLimiter = limiter
	}

	return httpapi.NewRouter(ctx, httpapi.NewHandler(gw.service), opts)
}

func (a *app) logStartup(ctx context.Context, gw *gateway, addr string) {
	if gw.pool.Len() == 0 {
		log.Warn(ctx, "no provider keys configured, every uncached lookup will fail",
			"env", "KNOWYOURGST_KEYS", "credentials_file", a.credentialsPath)
	}

	args := []any{
		"addr", addr,
		"cache", a.cfg.Cache.Provider,
		"cache_ttl", a.cfg.CacheTTL,
		"key_cooldown", a.cfg.KeyCooldown,
		"request_timeout", a.cfg.RequestTimeout,
		"keys", gw.pool.Len(),
	}
	if credentials := gw.pool.List(); len(credentials) > 0 {
		args = append(args, "first_key", credentials[0].Prefix())
	}
	log.Info(ctx, "gateway listening", args...)
}
