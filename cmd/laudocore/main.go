// Command laudocore serves the report authoring HTTP API. Storage and blob
// backends are selected through LAUDOCORE_* environment variables.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"laudocore/internal/adapters/reportapi"
	"laudocore/internal/blob"
	"laudocore/internal/core"
	"laudocore/internal/render"
	"laudocore/pkg/domain"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	if err := run(logger); err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx := context.Background()

	engine := core.NewDefaultRulesEngine()
	store, err := core.OpenPersistentStore(engine)
	if err != nil {
		return err
	}
	blobs, err := blob.Open(ctx)
	if err != nil {
		return err
	}
	metrics, err := core.NewPrometheusMetricsRecorder(nil)
	if err != nil {
		return err
	}

	svc := core.NewService(store, blobs,
		core.WithLogger(core.NewSlogLogger(logger)),
		core.WithMetrics(metrics),
		core.WithAssetFetcher(render.NewFetcherFromEnv()),
	)

	handler := reportapi.NewHandler(svc, principalFromHeader(store))
	mux := http.NewServeMux()
	mux.Handle("/api/v1/reports", handler)
	mux.Handle("/api/v1/reports/", handler)
	mux.Handle("/metrics", promhttp.Handler())

	addr := os.Getenv("LAUDOCORE_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	logger.Info("listening", "addr", addr, "storage", os.Getenv("LAUDOCORE_STORAGE_DRIVER"), "blob", string(blobs.Driver()))
	return http.ListenAndServe(addr, mux)
}

// principalFromHeader resolves the principal named by the X-Principal-ID
// header. Real authentication terminates upstream of this process.
func principalFromHeader(store domain.PersistentStore) reportapi.PrincipalFunc {
	return func(r *http.Request) (domain.Principal, bool) {
		id := r.Header.Get("X-Principal-ID")
		if id == "" {
			return domain.Principal{}, false
		}
		return store.GetPrincipal(id)
	}
}
