package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/turingviz"
	httpAdapter "github.com/aretw0/turingviz/pkg/adapters/http"
	"github.com/aretw0/turingviz/pkg/adapters/memory"
	"github.com/aretw0/turingviz/pkg/adapters/redis"
	"github.com/aretw0/turingviz/pkg/observability"
	"github.com/aretw0/turingviz/pkg/persistence/middleware"
	"github.com/aretw0/turingviz/pkg/ports"
	"github.com/aretw0/turingviz/pkg/runner"
	"github.com/aretw0/turingviz/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveFlags struct {
	port          string
	redisAddr     string
	redisPassword string
	redisDB       int
	sessionTTL    time.Duration
	lockTTL       time.Duration
	maxTrace      int
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the machines of the selected source over a JSON API with
server-sent step events, diagram rendering and Prometheus metrics.

Sessions live in memory unless --redis is given, in which case they are
shared between replicas and guarded by a distributed lock.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		store, locker, closeStore := sessionBackend(e)
		defer closeStore()
		store = middleware.Chain(store,
			middleware.NewLoggingMiddleware(e.logger),
			middleware.NewTraceLimitMiddleware(serveFlags.maxTrace),
		)

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(reg)

		mgrOpts := []session.Option{
			session.WithLogger(e.logger),
			session.WithLockTTL(serveFlags.lockTTL),
			session.WithMachineOptions(
				turingviz.WithLifecycleHooks(metrics.Hooks()),
				turingviz.WithTraceLimit(serveFlags.maxTrace),
			),
		}
		if locker != nil {
			mgrOpts = append(mgrOpts, session.WithLocker(locker))
		}
		mgr := session.NewManager(store, e.loader, mgrOpts...)

		srv := &http.Server{
			Addr: ":" + serveFlags.port,
			Handler: httpAdapter.NewHandler(mgr,
				httpAdapter.WithLogger(e.logger),
				httpAdapter.WithMetrics(metrics.Handler()),
			),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := runner.SignalContext(cmd.Context())
		defer stop()

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			fmt.Fprintf(cmd.ErrOrStderr(), "Starting turingviz server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			e.logger.Info("shutting down", "timeout", shutdownTimeout)

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				e.logger.Warn("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("failed to close server: %w", err)
				}
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "turingviz server stopped gracefully")
			return nil
		}
	},
}

// sessionBackend returns the Redis store and locker when --redis is set,
// an in-memory store otherwise.
func sessionBackend(e *env) (ports.SessionStore, ports.DistributedLocker, func()) {
	if serveFlags.redisAddr == "" {
		return memory.NewStore(), nil, func() {}
	}
	store := redis.New(serveFlags.redisAddr, serveFlags.redisPassword, serveFlags.redisDB,
		redis.WithTTL(serveFlags.sessionTTL),
	)
	e.logger.Info("using redis session store", "addr", serveFlags.redisAddr, "prefix", store.Prefix())
	locker := redis.NewLocker(store.Client(), store.Prefix())
	return store, locker, func() {
		if err := store.Close(); err != nil {
			e.logger.Warn("failed to close redis client", "err", err)
		}
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	f := serveCmd.Flags()
	f.StringVarP(&serveFlags.port, "port", "p", "8080", "Port to listen on")
	f.StringVar(&serveFlags.redisAddr, "redis", "", "Redis address (host:port) for shared sessions")
	f.StringVar(&serveFlags.redisPassword, "redis-password", "", "Redis password")
	f.IntVar(&serveFlags.redisDB, "redis-db", 0, "Redis database number")
	f.DurationVar(&serveFlags.sessionTTL, "session-ttl", 24*time.Hour, "Expiry of idle sessions in Redis (0 keeps them)")
	f.DurationVar(&serveFlags.lockTTL, "lock-ttl", session.DefaultLockTTL, "Lease of the distributed session lock")
	f.IntVar(&serveFlags.maxTrace, "max-trace", 1000, "Undo checkpoints kept per session (0 is unlimited)")
}
