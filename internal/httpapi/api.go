// Package httpapi assembles the HTTP surface of the feature server:
// the OGC-style collection endpoints, the health endpoints and the
// Prometheus metrics listener.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/3dgi/bag-features/internal/health"
	"github.com/3dgi/bag-features/internal/middleware"
	"github.com/3dgi/bag-features/internal/model"
	"github.com/3dgi/bag-features/internal/params"
	"github.com/3dgi/bag-features/internal/store"
)

// BBoxQuerier answers bbox queries, normally the single-slot cache in
// front of the spatial index.
type BBoxQuerier interface {
	Get(ctx context.Context, b model.BBox) ([]model.FeatureID, error)
}

// Lister returns the full feature catalog in canonical order, used when
// no bbox applies to a request.
type Lister interface {
	ListAll(ctx context.Context) ([]model.FeatureID, error)
}

// TileResolver knows which tile holds a feature. Optional: a nil
// resolver skips the tile existence check on single-feature lookups.
type TileResolver interface {
	TileOf(id model.FeatureID) (string, bool)
}

type API struct {
	log      *slog.Logger
	pcfg     params.Config
	boxes    BBoxQuerier
	catalog  Lister
	features store.FeatureStore
	tiles    TileResolver
	pingers  map[string]health.Pinger
}

func New(
	log *slog.Logger,
	pcfg params.Config,
	boxes BBoxQuerier,
	catalog Lister,
	features store.FeatureStore,
	tiles TileResolver,
	pingers map[string]health.Pinger,
) *API {
	return &API{
		log:      log,
		pcfg:     pcfg,
		boxes:    boxes,
		catalog:  catalog,
		features: features,
		tiles:    tiles,
		pingers:  pingers,
	}
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover(a.log))
	r.Use(middleware.Logging(a.log))
	r.Use(middleware.CORS())

	r.Get("/", a.handleLanding)
	r.Get("/conformance", a.handleConformance)
	r.Get("/collections", a.handleCollections)
	r.Get("/collections/pand", a.handleCollection)
	r.Get("/collections/pand/items", a.handleItems)
	r.Get("/collections/pand/items/{featureId}", a.handleFeature)

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(a.pingers))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errNotFoundRoute)
	})
	return r
}

// Run serves the API until ctx is canceled, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http listen", "addr", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
