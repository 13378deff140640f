package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/clarity/internal/config"
	"github.com/hpungsan/clarity/internal/connection"
	"github.com/hpungsan/clarity/internal/content"
	"github.com/hpungsan/clarity/internal/generate"
	"github.com/hpungsan/clarity/internal/manager"
	"github.com/hpungsan/clarity/internal/proxy"
	"github.com/hpungsan/clarity/internal/schedule"
	"github.com/hpungsan/clarity/internal/store"
)

// app is the wired service graph shared by the CLI and the MCP server.
type app struct {
	baseDir string
	cfg     *config.Config
	logger  *zap.Logger
	store   store.Store
	sched   *schedule.Real
	mgr     *manager.Manager
	conn    *connection.Manager // nil when no proxy is configured
	gen     *generate.Hybrid
}

func newApp(baseDir string, cfg *config.Config, st store.Store, logger *zap.Logger) *app {
	a := &app{
		baseDir: baseDir,
		cfg:     cfg,
		logger:  logger,
		store:   st,
		sched:   schedule.NewReal(logger),
	}

	a.mgr = manager.New(manager.Options{
		Store:     st,
		Config:    cfg,
		BaseDir:   baseDir,
		Logger:    logger,
		Notifier:  consoleNotifier{w: os.Stderr},
		Scheduler: a.sched,
	})

	opts := generate.Options{
		Brand:    a.mgr,
		Logger:   logger,
		Local:    content.NewGenerator(content.WithLogger(logger)),
		CallOpts: proxy.Options{Model: cfg.Model},
	}
	if cfg.ProxyURL != "" {
		var inv proxy.Invoker = proxy.NewClient(proxy.ClientOptions{
			URL:     cfg.ProxyURL,
			Headers: cfg.ProxyHeaders,
			Timeout: cfg.ProxyTimeout(),
			Model:   cfg.Model,
			Logger:  logger,
		})
		if cfg.BreakerEnabled {
			inv = proxy.NewBreaker(inv, proxy.DefaultBreakerSettings(), logger)
		}
		a.conn = connection.New(connection.Options{
			Invoker:         inv,
			StalenessWindow: cfg.StalenessWindow(),
			Logger:          logger,
		})
		opts.Connection = a.conn
	}
	a.gen = generate.New(opts)

	return a
}

// warmUp runs the startup connection test so generation can take the AI path.
func (a *app) warmUp(ctx context.Context) {
	if a.conn == nil || a.conn.State().IsConnected {
		return
	}
	res := a.conn.TestConnection(ctx)
	if !res.Success {
		a.logger.Info("AI proxy unavailable, using local content", zap.String("reason", res.Error))
	}
}

// close runs shutdown hooks and releases the store.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.sched.Stop(ctx)
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", zap.Error(err))
	}
}

// consoleNotifier prints user-facing notifications to a terminal stream.
type consoleNotifier struct{ w io.Writer }

func (n consoleNotifier) Success(msg string) { fmt.Fprintf(n.w, "✓ %s\n", msg) }
func (n consoleNotifier) Error(msg string)   { fmt.Fprintf(n.w, "✗ %s\n", msg) }
