package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/krishichetan/kchetan/internal/certgen"
	"github.com/krishichetan/kchetan/internal/controller"
	handler "github.com/krishichetan/kchetan/internal/server/handler/http"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboards as a local JSON view API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log := c.log.Log
			a, err := newApp(ctx, c.opts, log)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.ctl.Initialize(ctx); err != nil {
				if !errors.Is(err, controller.ErrUnauthenticated) {
					return err
				}
				log.Info("no stored session, waiting for POST /api/login")
			}

			router := handler.NewRouter(&handler.ViewHandler{
				Controller: a.ctl,
				Screen:     a.screen,
				Log:        log,
			}, log)
			server := &http.Server{
				Addr:              c.opts.ListenAddr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			if c.opts.TLS {
				created, err := certgen.Ensure(c.opts.TLSCert, c.opts.TLSKey, certgen.DefaultHosts)
				if err != nil {
					return err
				}
				if created {
					log.Info("generated self-signed certificate",
						zap.String("cert", c.opts.TLSCert), zap.String("key", c.opts.TLSKey))
				}
				if server.TLSConfig, err = certgen.ServerTLSConfig(c.opts.TLSCert, c.opts.TLSKey); err != nil {
					return err
				}
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("starting view server", zap.String("addr", server.Addr), zap.Bool("tls", c.opts.TLS))
				if server.TLSConfig != nil {
					errCh <- server.ListenAndServeTLS("", "")
				} else {
					errCh <- server.ListenAndServe()
				}
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("shutting down view server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}
