// Package server runs the HTTP listener and the background daemons with a
// shared graceful-shutdown path.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gitinsky/gatekeeper/config"
)

// Daemon is a long-running background component with a bounded shutdown.
type Daemon interface {
	Name() string
	Start() error
	Stop(ctx context.Context) error
}

type Server struct {
	configProvider *config.Provider
	handler        http.Handler
	logger         *slog.Logger
	daemons        []Daemon

	// reloadFunc runs on SIGHUP.
	reloadFunc func() error

	// exitFunc is os.Exit, swappable for tests.
	exitFunc func(int)
}

func NewServer(provider *config.Provider, handler http.Handler, logger *slog.Logger, reloadFunc func() error) *Server {
	return &Server{
		configProvider: provider,
		handler:        handler,
		logger:         logger,
		reloadFunc:     reloadFunc,
		exitFunc:       os.Exit,
	}
}

// AddDaemon registers a daemon to start with the server and stop with it.
func (s *Server) AddDaemon(d Daemon) {
	s.daemons = append(s.daemons, d)
}

// Run blocks until a shutdown signal or a fatal error, then stops the HTTP
// server and every daemon within the configured graceful timeout.
func (s *Server) Run() {
	cfg := s.configProvider.Get().Server

	s.logger.Info("server configuration",
		"addr", cfg.Addr,
		"read_timeout", cfg.ReadTimeout.Duration,
		"read_header_timeout", cfg.ReadHeaderTimeout.Duration,
		"write_timeout", cfg.WriteTimeout.Duration,
		"idle_timeout", cfg.IdleTimeout.Duration,
		"shutdown_timeout", cfg.ShutdownGracefulTimeout.Duration,
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadTimeout:       cfg.ReadTimeout.Duration,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout.Duration,
		WriteTimeout:      cfg.WriteTimeout.Duration,
		IdleTimeout:       cfg.IdleTimeout.Duration,
	}

	serverError := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	started, startErr := s.startDaemons()
	if startErr != nil {
		s.logger.Error("daemon startup failed - shutting down", "err", startErr)
		s.shutdown(srv, started, cfg.ShutdownGracefulTimeout.Duration)
		s.exitFunc(1)
		return
	}

	sigHup := make(chan os.Signal, 1)
	signal.Notify(sigHup, syscall.SIGHUP)
	defer signal.Stop(sigHup)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	defer stop()

	for {
		select {
		case <-sigHup:
			s.logger.Info("received SIGHUP - reloading configuration")
			if s.reloadFunc != nil {
				if err := s.reloadFunc(); err != nil {
					s.logger.Error("configuration reload failed", "err", err)
				}
			}
			continue

		case <-ctx.Done():
			s.logger.Info("received shutdown signal - gracefully shutting down")

		case err := <-serverError:
			s.logger.Error("server error - initiating shutdown", "err", err)
		}
		break
	}
	stop()

	if err := s.shutdown(srv, started, cfg.ShutdownGracefulTimeout.Duration); err != nil {
		s.exitFunc(1)
		return
	}

	s.logger.Info("all systems stopped gracefully")
	s.exitFunc(0)
}

// startDaemons starts the registered daemons in order and returns the ones
// that came up, so a partial failure can be unwound.
func (s *Server) startDaemons() ([]Daemon, error) {
	started := make([]Daemon, 0, len(s.daemons))
	for _, d := range s.daemons {
		s.logger.Info("starting daemon", "name", d.Name())
		if err := d.Start(); err != nil {
			return started, err
		}
		started = append(started, d)
	}
	return started, nil
}

func (s *Server) shutdown(srv *http.Server, daemons []Daemon, timeout time.Duration) error {
	gracefulCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	shutdownGroup, _ := errgroup.WithContext(gracefulCtx)

	shutdownGroup.Go(func() error {
		s.logger.Info("shutting down HTTP server")
		if err := srv.Shutdown(gracefulCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", "err", err)
			return err
		}
		return nil
	})

	for _, d := range daemons {
		shutdownGroup.Go(func() error {
			s.logger.Info("shutting down daemon", "name", d.Name())
			if err := d.Stop(gracefulCtx); err != nil {
				s.logger.Error("daemon shutdown error", "name", d.Name(), "err", err)
				return err
			}
			return nil
		})
	}

	return shutdownGroup.Wait()
}
