// Command glashost is a demo embedding host: it drives the glas runtime
// engine (pkg/thread/pkg/namespace/pkg/register) end to end
// against a single loaded program, remote-controlling a thread through
// its load, call, and commit phases.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dmbarbour/glas/pkg/adapters"
	"github.com/dmbarbour/glas/pkg/log"
	"github.com/dmbarbour/glas/pkg/metrics"
	"github.com/dmbarbour/glas/pkg/namespace"
	"github.com/dmbarbour/glas/pkg/register"
	"github.com/dmbarbour/glas/pkg/thread"
)

var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func newApp() *cli.App {
	return &cli.App{
		Name:    "glashost",
		Usage:   "demo embedding host for the glas runtime engine",
		Version: fmt.Sprintf("%s (commit %s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "conf", Usage: "override GLAS_CONF"},
			&cli.IntFlag{Name: "workers", Value: 4, Usage: "worker pool width for background prefetch"},
			&cli.StringFlag{Name: "metrics-addr", Value: "", Usage: "address to serve Prometheus metrics on (empty disables)"},
			&cli.StringFlag{Name: "datadir", Value: "", Usage: "persistent register volume directory (empty uses in-memory only)"},
			&cli.StringFlag{Name: "origin", Value: ".", Usage: "directory relative program paths resolve against"},
			&cli.StringFlag{Name: "verbosity", Value: "info", Usage: "log level: debug, info, warn, error"},
		},
		Action: run,
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// host holds everything assemble wires together, so run's signal-driven
// shutdown and tests that only care about the load/call/commit path can
// each use as much or as little of it as they need.
type host struct {
	lg            *log.Logger
	th            *thread.Thread
	metricsServer *http.Server
	closers       []func() error
}

func (h *host) Close() {
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i](); err != nil && h.lg != nil {
			h.lg.Error("cleanup failed", "err", err)
		}
	}
}

// assemble performs every step of run that does not block: flag
// handling, InitDefault composition, optional persistent store and
// metrics server setup, and (if a program URI was given) a single
// load → call → commit pass. It returns a host whose Close releases
// the datadir lock and persistent store, so both run and tests can
// drive it without reaching for the process signal handler.
func assemble(c *cli.Context) (*host, error) {
	if c.String("conf") != "" {
		if err := os.Setenv("GLAS_CONF", c.String("conf")); err != nil {
			return nil, err
		}
	}

	lg := log.New(parseLevel(c.String("verbosity")))
	log.SetDefault(lg)
	h := &host{lg: lg}

	reg := metrics.NewRegistry("glashost")
	rm := metrics.NewRuntimeMetrics(reg)

	var store *register.Store
	if dir := c.String("datadir"); dir != "" {
		fl, err := adapters.LockDataDir(dir, lg)
		if err != nil {
			return nil, fmt.Errorf("glashost: lock datadir: %w", err)
		}
		h.closers = append(h.closers, fl.Unlock)
		ps, err := register.OpenPersistentStore(dir)
		if err != nil {
			fl.Unlock()
			return nil, fmt.Errorf("glashost: open persistent store: %w", err)
		}
		h.closers = append(h.closers, ps.Close)
		store = ps.Store
	} else {
		store = register.NewStore(rm)
	}

	di, err := adapters.InitDefault(c.String("origin"), namespace.NewCache(64<<20), lg)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("glashost: init default: %w", err)
	}
	lg.Info("default-init complete", "config_path", di.ConfigPath, "prim_prefix", adapters.PrimPrefix)

	workers := int64(c.Int("workers"))
	if cfgWorkers := di.Config.Workers; cfgWorkers > 0 {
		workers = int64(cfgWorkers)
	}
	prefetcher := namespace.NewPrefetcher(workers)

	if addr := c.String("metrics-addr"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", reg.Handler())
		h.metricsServer = &http.Server{Addr: addr, Handler: mux}
		go func() {
			lg.Info("serving metrics", "addr", addr)
			if err := h.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				lg.Error("metrics server stopped", "err", err)
			}
		}()
	}

	th := thread.NewThread(store, nil, di.Env, lg, rm)
	th.SetDebugName("glashost-main")
	h.th = th

	if c.NArg() > 0 {
		uri := c.Args().Get(0)
		env, err := di.LoadProgram(context.Background(), uri)
		if err != nil {
			h.Close()
			return nil, fmt.Errorf("glashost: load program %s: %w", uri, err)
		}
		th.SetEnv(env)
		th.Prep(context.Background(), prefetcher, []string{uri})
		if err := th.Call(uri, nil); err != nil {
			lg.Error("call failed", "uri", uri, "mask", th.ErrorMask().String())
			h.Close()
			return nil, err
		}
		ok, err := th.Commit()
		if err != nil {
			h.Close()
			return nil, err
		}
		if !ok {
			h.Close()
			return nil, fmt.Errorf("glashost: commit failed, error mask %s", th.ErrorMask())
		}
		lg.Info("program committed", "uri", uri, "stack_depth", th.Stack().Len())
	} else {
		lg.Info("no program given, idling for SIGINT/SIGTERM")
	}

	return h, nil
}

// run wires InitDefault, an optional persistent register volume, the
// metrics HTTP handler, and a single root thread.Thread together, then
// loads and calls the program named by the first positional argument
// (if any): new thread → namespace setup → call → commit. It then
// blocks for SIGINT/SIGTERM before shutting down gracefully.
func run(c *cli.Context) error {
	h, err := assemble(c)
	if err != nil {
		return err
	}
	defer h.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	h.lg.Info("shutting down")

	if h.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.metricsServer.Shutdown(ctx)
	}
	return nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
