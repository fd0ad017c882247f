package routes

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"vram-calculator/api/rest/handlers"
	"vram-calculator/core/estimator"
	"vram-calculator/core/models"
	"vram-calculator/core/monitoring"
)

// Options carries the dependencies the routes are built from
type Options struct {
	Estimator *estimator.Estimator
	Metrics   *monitoring.MetricsExporter
	Instances handlers.InstanceRanker // nil disables the instance lookup route
	Language  models.Language
}

// SetupRoutes configures all API routes
func SetupRoutes(r *mux.Router, opts Options) {
	estimateHandler := handlers.NewEstimateHandler(opts.Estimator, opts.Metrics, opts.Instances, opts.Language)
	catalogHandler := handlers.NewCatalogHandler(opts.Estimator.GPUs())

	r.Use(logRequests)

	api := r.PathPrefix("/v1").Subrouter()

	// Estimate endpoints
	api.HandleFunc("/estimate", estimateHandler.Estimate).Methods("POST")
	api.HandleFunc("/estimate", estimateHandler.EstimateQuery).Methods("GET")
	api.HandleFunc("/estimate/instances", estimateHandler.Instances).Methods("POST")
	api.HandleFunc("/compare/precisions", estimateHandler.ComparePrecisions).Methods("POST")
	api.HandleFunc("/compare/models", estimateHandler.CompareModels).Methods("GET")
	api.HandleFunc("/export", estimateHandler.Export).Methods("POST")

	// Catalog endpoints
	api.HandleFunc("/presets", catalogHandler.ListPresets).Methods("GET")
	api.HandleFunc("/presets/{id}", catalogHandler.GetPreset).Methods("GET")
	api.HandleFunc("/gpus", catalogHandler.ListGPUs).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")
	r.Handle("/metrics", opts.Metrics.Handler()).Methods("GET")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
