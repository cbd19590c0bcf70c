package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/xtding233/rngcrack/internal/cmdutil"
	"github.com/xtding233/rngcrack/internal/config"
	"github.com/xtding233/rngcrack/internal/enchant"
	"github.com/xtding233/rngcrack/internal/rpc"
	"github.com/xtding233/rngcrack/internal/session"
)

type errResp struct {
	Err string `json:"err"`
}

type api struct {
	svc *session.Service
}

func parseInt(r *http.Request, key string) (int, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		code = http.StatusNotFound
	case errors.Is(err, session.ErrNoPlan):
		code = http.StatusConflict
	case errors.Is(err, session.ErrBadRequest),
		errors.Is(err, enchant.ErrUnknownItem),
		errors.Is(err, enchant.ErrUnknownEnchantment),
		errors.Is(err, config.ErrConfig):
		code = http.StatusBadRequest
	}
	writeJSON(w, code, errResp{Err: err.Error()})
}

// decode reads an optional JSON body into v.
func decode(r *http.Request, v any) error {
	if r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid json body: %v", session.ErrBadRequest, err)
	}
	return nil
}

func reply[T any](w http.ResponseWriter, v T, err error) {
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// withBody decodes the request into Req and hands it to call with the path ID.
func withBody[Req, Resp any](call func(id string, req Req) (Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Req
		if err := decode(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		v, err := call(r.PathValue("id"), req)
		reply(w, v, err)
	}
}

func (a *api) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req session.CreateRequest
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	v, err := a.svc.Create(req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (a *api) handleGet(w http.ResponseWriter, r *http.Request) {
	v, err := a.svc.Get(r.PathValue("id"))
	reply(w, v, err)
}

func (a *api) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Delete(r.PathValue("id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleFinalized(w http.ResponseWriter, r *http.Request) {
	v, err := a.svc.Finalized(r.PathValue("id"))
	reply(w, v, err)
}

func (a *api) handleAbort(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Abort(r.PathValue("id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (a *api) handlePredict(w http.ResponseWriter, r *http.Request) {
	item := r.URL.Query().Get("item")
	if item == "" {
		http.Error(w, "missing param item", http.StatusBadRequest)
		return
	}
	power, ok, msg := parseInt(r, "power")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if !ok {
		power = 15
	}
	v, err := a.svc.Predict(r.PathValue("id"), item, power)
	reply(w, v, err)
}

func (a *api) handleItems(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.svc.Table().Items())
}

func (a *api) handleEnchantments(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.svc.Table().Enchantments())
}

func newMux(svc *session.Service) *http.ServeMux {
	a := &api{svc: svc}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", a.handleCreate)
	mux.HandleFunc("GET /sessions/{id}", a.handleGet)
	mux.HandleFunc("DELETE /sessions/{id}", a.handleDelete)
	mux.HandleFunc("POST /sessions/{id}/observe", withBody(svc.Observe))
	mux.HandleFunc("POST /sessions/{id}/finalized", a.handleFinalized)
	mux.HandleFunc("POST /sessions/{id}/steps", withBody(svc.Steps))
	mux.HandleFunc("POST /sessions/{id}/trusted", withBody(svc.Trusted))
	mux.HandleFunc("POST /sessions/{id}/reset", withBody(svc.Reset))
	mux.HandleFunc("POST /sessions/{id}/plan", withBody(svc.Plan))
	mux.HandleFunc("POST /sessions/{id}/tick", withBody(svc.Tick))
	mux.HandleFunc("POST /sessions/{id}/abort", a.handleAbort)
	mux.HandleFunc("GET /sessions/{id}/predict", a.handlePredict)
	mux.HandleFunc("GET /catalog/items", a.handleItems)
	mux.HandleFunc("GET /catalog/enchantments", a.handleEnchantments)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

// loadTable picks the catalog named by the environment, then the default
// profile, then the embedded one.
func loadTable(cfg config.ServerEnv, loader *config.Loader) (*enchant.Table, error) {
	path := cfg.Catalog
	if path == "" {
		_, params, err := loader.Resolve("", config.Overrides{})
		if err != nil {
			return nil, err
		}
		path = params.Catalog
	}
	return cmdutil.LoadTable(path)
}

func run(ctx context.Context, cfg config.ServerEnv, log *slog.Logger) error {
	loader := config.NewLoader(cfg.ConfigDir)
	table, err := loadTable(cfg, loader)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	store, err := session.NewStore(cfg.MaxSessions)
	if err != nil {
		return err
	}
	svc := session.NewService(table, loader, store, log)

	if cfg.Watch {
		w, err := config.NewFileWatcher(loader.Paths().Dir(), 0, func(paths []string) {
			loader.Invalidate()
			log.Info("config reloaded", "files", paths)
		})
		if err != nil {
			return err
		}
		defer w.Stop()
		if err := w.Start(ctx); err != nil {
			log.Warn("config watcher disabled", "dir", loader.Paths().Dir(), "err", err)
		}
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newMux(svc),
		ReadHeaderTimeout: 5 * time.Second,
	}
	grpcSrv, health := rpc.NewGRPCServer(svc, log)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
		}
		log.Info("grpc listening", "addr", cfg.GRPCAddr)
		return serveGRPC(grpcSrv, lis)
	})
	g.Go(func() error {
		<-ctx.Done()
		health.Shutdown()
		grpcSrv.GracefulStop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// serveGRPC serves until gs is stopped. A server stopped before it started
// serving, as on an early shutdown, is a clean exit too.
func serveGRPC(gs *grpc.Server, lis net.Listener) error {
	if err := gs.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func main() {
	cfg, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log, err := cmdutil.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
