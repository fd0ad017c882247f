package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"vram-calculator/core/estimator"
	"vram-calculator/core/models"
	"vram-calculator/core/monitoring"
	"vram-calculator/core/presets"
	"vram-calculator/core/report"
	"vram-calculator/storage"
)

// InstanceRanker ranks cloud instances able to hold a workload
type InstanceRanker interface {
	Rank(ctx context.Context, totalVRAM int) ([]models.GPUInstance, error)
}

// EstimateHandler handles estimation HTTP requests
type EstimateHandler struct {
	estimator *estimator.Estimator
	metrics   *monitoring.MetricsExporter
	instances InstanceRanker
	language  models.Language
	now       func() time.Time
}

// NewEstimateHandler creates a new estimate handler. instances may be nil when cloud
// lookups are disabled.
func NewEstimateHandler(
	est *estimator.Estimator,
	metrics *monitoring.MetricsExporter,
	instances InstanceRanker,
	language models.Language,
) *EstimateHandler {
	return &EstimateHandler{
		estimator: est,
		metrics:   metrics,
		instances: instances,
		language:  language,
		now:       time.Now,
	}
}

// EstimateResponse is the result of one estimate
type EstimateResponse struct {
	Configuration models.Configuration    `json:"configuration"`
	Results       models.EstimationResult `json:"results"`
	Components    []report.Component      `json:"components"`
	Formulas      []report.Formula        `json:"formulas"`
	Summary       string                  `json:"summary"`
}

// ComparePrecisionsResponse compares one configuration across every precision
type ComparePrecisionsResponse struct {
	Configuration models.Configuration         `json:"configuration"`
	Results       []models.PrecisionResult     `json:"results"`
	Savings       map[models.Precision]float64 `json:"savings"`
}

// InstancesResponse lists cloud instances able to hold an estimate
type InstancesResponse struct {
	TotalVRAM int                  `json:"totalVRAM"`
	Instances []models.GPUInstance `json:"instances"`
}

// Estimate handles POST /v1/estimate
func (h *EstimateHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.respondEstimate(w, r, req)
}

// EstimateQuery handles GET /v1/estimate
func (h *EstimateHandler) EstimateQuery(w http.ResponseWriter, r *http.Request) {
	h.respondEstimate(w, r, requestFromQuery(r))
}

func (h *EstimateHandler) respondEstimate(w http.ResponseWriter, r *http.Request, req EstimateRequest) {
	lang := languageFor(r, h.language)

	cfg, res, err := h.estimate(req)
	if err != nil {
		writeIntakeError(w, err, lang)
		return
	}

	writeJSON(w, http.StatusOK, EstimateResponse{
		Configuration: cfg,
		Results:       res,
		Components:    report.Components(res, lang),
		Formulas:      report.Formulas(cfg.Task, lang),
		Summary:       report.Summary(cfg, lang),
	})
}

// ComparePrecisions handles POST /v1/compare/precisions
func (h *EstimateHandler) ComparePrecisions(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	lang := languageFor(r, h.language)

	cfg, err := req.Configuration()
	if err != nil {
		h.metrics.ObserveIntakeError(err)
		writeIntakeError(w, err, lang)
		return
	}

	results := h.estimator.CompareAcrossPrecisions(cfg)
	for _, result := range results {
		h.metrics.ObserveEstimate(cfg.WithPrecision(result.Precision), result.EstimationResult,
			!estimator.FitsSingleGPU(result.TotalVRAM, h.estimator.GPUs()))
	}

	writeJSON(w, http.StatusOK, ComparePrecisionsResponse{
		Configuration: cfg,
		Results:       results,
		Savings:       estimator.Savings(results),
	})
}

// CompareModels handles GET /v1/compare/models
func (h *EstimateHandler) CompareModels(w http.ResponseWriter, r *http.Request) {
	lang := languageFor(r, h.language)

	precision := models.PrecisionFP16
	task := models.TaskInference
	var err error
	if v := r.URL.Query().Get("precision"); v != "" {
		if precision, err = models.ParsePrecision(v); err != nil {
			h.metrics.ObserveIntakeError(err)
			writeIntakeError(w, err, lang)
			return
		}
	}
	if v := r.URL.Query().Get("task"); v != "" {
		if task, err = models.ParseTask(v); err != nil {
			h.metrics.ObserveIntakeError(err)
			writeIntakeError(w, err, lang)
			return
		}
	}

	writeJSON(w, http.StatusOK, presets.CompareModels(precision, task))
}

// Export handles POST /v1/export
func (h *EstimateHandler) Export(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	lang := languageFor(r, h.language)

	cfg, res, err := h.estimate(req)
	if err != nil {
		writeIntakeError(w, err, lang)
		return
	}

	record := storage.NewRecord(cfg, res, lang, h.now())
	w.Header().Set("Content-Type", storage.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", storage.FileName(cfg)))
	if err := record.Encode(w); err != nil {
		log.Error().Err(err).Msg("failed to write export")
		return
	}
	h.metrics.ObserveExport()
}

// Instances handles POST /v1/estimate/instances
func (h *EstimateHandler) Instances(w http.ResponseWriter, r *http.Request) {
	if h.instances == nil {
		http.Error(w, "Cloud instance lookup is disabled", http.StatusServiceUnavailable)
		return
	}

	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	lang := languageFor(r, h.language)

	_, res, err := h.estimate(req)
	if err != nil {
		writeIntakeError(w, err, lang)
		return
	}

	ranked, err := h.instances.Rank(r.Context(), res.TotalVRAM)
	h.metrics.ObserveInstanceLookup(err)
	if err != nil {
		log.Error().Err(err).Int("total_vram", res.TotalVRAM).Msg("instance lookup failed")
		http.Error(w, "Failed to look up cloud instances", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, InstancesResponse{TotalVRAM: res.TotalVRAM, Instances: ranked})
}

func (h *EstimateHandler) decode(w http.ResponseWriter, r *http.Request) (EstimateRequest, bool) {
	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// estimate validates the request and runs the estimator, recording metrics either way
func (h *EstimateHandler) estimate(req EstimateRequest) (models.Configuration, models.EstimationResult, error) {
	cfg, err := req.Configuration()
	if err != nil {
		h.metrics.ObserveIntakeError(err)
		return cfg, models.EstimationResult{}, err
	}

	res, err := h.estimator.SafeEstimate(cfg)
	if err != nil {
		h.metrics.ObserveIntakeError(err)
		return cfg, res, err
	}

	h.metrics.ObserveEstimate(cfg, res, !estimator.FitsSingleGPU(res.TotalVRAM, h.estimator.GPUs()))
	log.Debug().
		Float64("parameters", cfg.Parameters).
		Str("precision", string(cfg.Precision)).
		Str("task", string(cfg.Task)).
		Int("total_vram", res.TotalVRAM).
		Msg("estimated VRAM")
	return cfg, res, nil
}
