// Entry point for the blcwrtr placement service: MCP tools for plan
// building, QC validation, the trust registry and publisher analysis,
// plus a small chi HTTP surface for health and reporting.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/mittpunkt/blcwrtr/analysis"
	"github.com/mittpunkt/blcwrtr/lexicon"
	"github.com/mittpunkt/blcwrtr/preflight"
	"github.com/mittpunkt/blcwrtr/qc"
	"github.com/mittpunkt/blcwrtr/registry"
)

func main() {
	port := env("PORT", "8086")
	registryPath := env("REGISTRY_DB", "db/registry.db")
	analysisPath := env("ANALYSIS_DB", "db/analysis.db")
	mcpTransport := env("MCP_TRANSPORT", "stdio")
	logLevel := env("LOG_LEVEL", "info")

	// Logging.
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	// Stdout is the MCP stdio channel; logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	lex := lexicon.Default()

	// Trust registry.
	reg, err := registry.New(&registry.Config{
		DBPath:       registryPath,
		SeedBuiltins: env("SEED_BUILTINS", "true") == "true",
	}, logger)
	if err != nil {
		slog.Error("registry", "error", err)
		os.Exit(1)
	}
	defer reg.Close()

	// Publisher analysis + audit log.
	svc, err := analysis.New(&analysis.Config{DBPath: analysisPath}, logger)
	if err != nil {
		slog.Error("analysis", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	// Plan builder and validator.
	builder := preflight.New(preflight.Config{}, lex, logger,
		preflight.WithSourceFinder(reg),
		preflight.WithAuditSink(svc))
	validator := qc.New(qc.Config{}, lex, logger, qc.WithAuditSink(svc))

	// MCP server with the full tool surface.
	mcpSrv := mcp.NewServer(&mcp.Implementation{
		Name:    "blcwrtr",
		Version: "1.0.0",
	}, nil)
	builder.RegisterMCP(mcpSrv)
	validator.RegisterMCP(mcpSrv)
	reg.RegisterMCP(mcpSrv)
	svc.RegisterMCP(mcpSrv)

	if mcpTransport == "stdio" {
		go func() {
			slog.Info("MCP stdio starting")
			if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				slog.Error("MCP stdio", "error", err)
			}
			cancel()
		}()
	}

	// HTTP reporting surface.
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Get("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		stats, err := reg.Stats(r.Context())
		if err != nil {
			writeError(w, 500, err)
			return
		}
		writeJSON(w, 200, stats)
	})

	r.Get("/api/sources", func(w http.ResponseWriter, r *http.Request) {
		sources, err := reg.SearchSources(r.Context(), nil, false, queryInt(r, "limit", 50))
		if err != nil {
			writeError(w, 500, err)
			return
		}
		writeJSON(w, 200, sources)
	})

	r.Get("/api/events", func(w http.ResponseWriter, r *http.Request) {
		events, err := svc.Events(r.Context(), r.URL.Query().Get("order_ref"), queryInt(r, "limit", 50))
		if err != nil {
			writeError(w, 500, err)
			return
		}
		if events == nil {
			events = []*analysis.Event{}
		}
		writeJSON(w, 200, events)
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

// --- Helpers ---

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
