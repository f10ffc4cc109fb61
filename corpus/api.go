package corpus

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/dlm/dataset"
	"github.com/hazyhaar/dlm/trainer"
)

// RegisterHTTP registers the service endpoints on a chi router.
func (s *Service) RegisterHTTP(r chi.Router) {
	r.Get("/v1/health", s.handleHealth)
	r.Post("/v1/ingest", s.handleIngest)
	r.Get("/v1/dataset", s.handleDataset)
	r.Post("/v1/train", s.handleTrain)
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.CountByStatus()
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "ok",
		"fallback_available": s.pipe.FallbackAvailable(),
		"files_by_status":    counts,
	})
}

// IngestRequest is the body for POST /v1/ingest.
type IngestRequest struct {
	Pairs []Pair `json:"pairs"`
}

func (s *Service) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Pairs) == 0 {
		http.Error(w, "pairs required", http.StatusBadRequest)
		return
	}

	report, err := s.Ingest(r.Context(), req.Pairs)
	if err != nil {
		s.logger.Error("ingest failed", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Service) handleDataset(w http.ResponseWriter, r *http.Request) {
	includeText := r.URL.Query().Get("include_text") == "true"
	rows, err := s.BuildDataset(dataset.FeatureConfig{IncludeText: includeText})
	if err != nil {
		s.logger.Error("dataset build failed", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rows":  rows,
		"count": len(rows),
	})
}

// TrainRequest is the body for POST /v1/train.
type TrainRequest struct {
	Seed         int64   `json:"seed"`
	TestFraction float64 `json:"test_fraction"`
	UseText      bool    `json:"use_text"`
}

func (s *Service) handleTrain(w http.ResponseWriter, r *http.Request) {
	var req TrainRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	res, err := s.Train(trainer.Config{
		Seed:         req.Seed,
		TestFraction: req.TestFraction,
		UseText:      req.UseText,
	})
	if err != nil {
		if errors.Is(err, trainer.ErrInsufficientData) || errors.Is(err, trainer.ErrSingleClass) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		s.logger.Error("training failed", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"model_id": res.ModelID,
		"classes":  res.Model.Classes,
		"features": len(res.Model.Vocab),
		"metrics":  res.Metrics,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
