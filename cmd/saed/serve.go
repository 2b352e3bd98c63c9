package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sebitommy123/SA/config"
	"github.com/sebitommy123/SA/hub"
	"github.com/sebitommy123/SA/hub/wshub"
	"github.com/sebitommy123/SA/log"
	"github.com/sebitommy123/SA/metrics"
	"github.com/sebitommy123/SA/store"
)

var (
	serveProvidersPath string
	serveConfigPath    string
	serveListenAddr    string
	serveLogLevel      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll every configured provider and serve the debug/metrics HTTP surface",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveProvidersPath, "providers", "providers.txt", "path to the provider list file")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "saed.toml", "path to the engine settings file")
	serveCmd.Flags().StringVar(&serveListenAddr, "listen", "", "debug/metrics HTTP listen address (overrides the config file)")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "log level override (debug, info, error)")
}

// reconciler owns the set of running pollers and restarts exactly the set
// that changed when the provider list is hot-reloaded (config.ListWatcher),
// rather than tearing down and restarting every poller on every edit.
type reconciler struct {
	mu      sync.Mutex
	st      *store.Store
	h       *hub.Hub
	met     *metrics.Engine
	lg      log.Logger
	eng     *config.Engine
	cancels map[string]context.CancelFunc
}

func newReconciler(st *store.Store, h *hub.Hub, met *metrics.Engine, lg log.Logger, eng *config.Engine) *reconciler {
	return &reconciler{st: st, h: h, met: met, lg: lg, eng: eng, cancels: map[string]context.CancelFunc{}}
}

func (r *reconciler) apply(list *config.ProviderList) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := map[string]bool{}
	for _, url := range list.URLs {
		wanted[url] = true
		if _, running := r.cancels[url]; running {
			continue
		}
		ctx, cancel := context.WithCancel(context.Background())
		r.cancels[url] = cancel
		p := hub.NewPoller(url, r.eng.IntervalFor(url), r.st, r.h, r.lg.With("provider_url", url))
		p.Metrics = r.met
		go p.Run(ctx)
	}
	for url, cancel := range r.cancels {
		if !wanted[url] {
			cancel()
			delete(r.cancels, url)
		}
	}
}

func (r *reconciler) stopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for url, cancel := range r.cancels {
		cancel()
		delete(r.cancels, url)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	eng, err := config.LoadEngine(serveConfigPath)
	if err != nil {
		return err
	}
	list, err := config.LoadProviderList(serveProvidersPath)
	if err != nil {
		return err
	}

	level := eng.Log.Level
	if serveLogLevel != "" {
		level = serveLogLevel
	}
	zlvl, err := zerolog.ParseLevel(level)
	if err != nil {
		zlvl = zerolog.InfoLevel
	}
	lg := log.NewJSON(zlvl)
	log.Root = lg

	met := metrics.New()
	st := store.New()
	h := hub.NewHub()
	go h.Run(hub.RouterFunc(func(*hub.Msg) {}))

	rec := newReconciler(st, h, met, lg, eng)
	rec.apply(list)

	watcher, err := config.NewListWatcher(serveProvidersPath, lg)
	if err != nil {
		lg.Error("provider list watcher disabled", "err", err)
	} else {
		watcher.OnReload(rec.apply)
		watcher.Start()
		defer watcher.Close()
	}

	addr := eng.Debug.ListenAddr
	if serveListenAddr != "" {
		addr = serveListenAddr
	}
	if addr != "" {
		mux := http.NewServeMux()
		mux.Handle(eng.Debug.MetricsPath, promhttp.Handler())
		mux.HandleFunc(eng.Debug.StreamPath, wshub.Serve(h, lg))
		srv := &http.Server{Addr: addr, Handler: mux}
		go func() {
			lg.Debug("debug http server listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				lg.Error("debug http server failed", "err", err)
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	lg.Debug("shutting down", "reason", "signal")
	rec.stopAll()
	return nil
}
