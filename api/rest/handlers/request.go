package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"vram-calculator/core/intake"
	"vram-calculator/core/models"
)

// flexValue accepts a JSON string or number and keeps its text form, so form-style
// clients and typed clients share one request shape.
type flexValue string

func (f *flexValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexValue(s)
		return nil
	}
	*f = flexValue(b)
	return nil
}

// EstimateRequest is the body of the estimate, compare and export endpoints
type EstimateRequest struct {
	Preset         string    `json:"preset,omitempty"`
	Parameters     flexValue `json:"parameters"`
	SequenceLength flexValue `json:"sequenceLength"`
	BatchSize      flexValue `json:"batchSize"`
	Precision      flexValue `json:"precision"`
	Task           flexValue `json:"task"`
}

// Configuration resolves the request into a validated configuration
func (req EstimateRequest) Configuration() (models.Configuration, error) {
	in := intake.RawInput{
		Parameters:     string(req.Parameters),
		SequenceLength: string(req.SequenceLength),
		BatchSize:      string(req.BatchSize),
		Precision:      string(req.Precision),
		Task:           string(req.Task),
	}

	in, err := in.WithPreset(req.Preset)
	if err != nil {
		return models.Configuration{}, err
	}
	return intake.ParseForm(in)
}

// requestFromQuery reads an estimate request from URL query values
func requestFromQuery(r *http.Request) EstimateRequest {
	q := r.URL.Query()
	return EstimateRequest{
		Preset:         q.Get("preset"),
		Parameters:     flexValue(q.Get("parameters")),
		SequenceLength: flexValue(q.Get("sequence_length")),
		BatchSize:      flexValue(q.Get("batch_size")),
		Precision:      flexValue(q.Get("precision")),
		Task:           flexValue(q.Get("task")),
	}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// writeIntakeError reports a configuration error in the caller's language
func writeIntakeError(w http.ResponseWriter, err error, lang models.Language) {
	status := http.StatusBadRequest
	if !intake.IsValidationError(err) {
		status = http.StatusInternalServerError
		log.Error().Err(err).Msg("estimation failed")
	}
	writeJSON(w, status, ErrorResponse{
		Error: intake.Message(err, lang),
		Kind:  models.ErrorKind(err),
	})
}

// languageFor picks the response language from Accept-Language, falling back to def
func languageFor(r *http.Request, def models.Language) models.Language {
	header := r.Header.Get("Accept-Language")
	if strings.TrimSpace(header) == "" {
		return def
	}
	return models.ParseLanguage(header)
}
