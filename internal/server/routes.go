package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ming-qiu/theia/internal/diff"
	"github.com/ming-qiu/theia/internal/errors"
	"github.com/ming-qiu/theia/internal/model"
	"github.com/ming-qiu/theia/internal/store"
)

// HealthResponse is the /health reply.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

// ModelsResponse lists saved model headers.
type ModelsResponse struct {
	Models []store.Entry `json:"models"`
}

// NewRouter builds the route table.
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Route("/api/models", func(r chi.Router) {
		r.Get("/", listModelsHandler(cfg))
		r.Post("/", saveModelHandler(cfg))
		r.Get("/{timeline}", getModelHandler(cfg))
		r.Delete("/{timeline}", deleteModelHandler(cfg))
		r.Get("/{timeline}/changes", changesHandler(cfg))
	})

	return r
}

func healthHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

func listModelsHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := cfg.Store.List(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list models", "INTERNAL_ERROR")
			return
		}
		if entries == nil {
			entries = []store.Entry{}
		}
		WriteJSON(w, http.StatusOK, ModelsResponse{Models: entries})
	}
}

func saveModelHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m model.ShotModel
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if m.Timeline == "" {
			WriteError(w, http.StatusBadRequest, "timeline is required", "BAD_REQUEST")
			return
		}

		if err := cfg.Store.Save(r.Context(), &m); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

func getModelHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timeline := chi.URLParam(r, "timeline")

		m, err := cfg.Store.Load(r.Context(), timeline)
		if errors.IsModelNotFound(err) {
			WriteError(w, http.StatusNotFound, "model not found", "NOT_FOUND")
			return
		}
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, m)
	}
}

func deleteModelHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timeline := chi.URLParam(r, "timeline")

		err := cfg.Store.Delete(r.Context(), timeline)
		if errors.IsModelNotFound(err) {
			WriteError(w, http.StatusNotFound, "model not found", "NOT_FOUND")
			return
		}
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func changesHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timeline := chi.URLParam(r, "timeline")
		old := r.URL.Query().Get("old")
		if old == "" {
			WriteError(w, http.StatusBadRequest, "old query parameter is required", "BAD_REQUEST")
			return
		}

		cur, err := cfg.Store.Load(r.Context(), timeline)
		if errors.IsModelNotFound(err) {
			WriteError(w, http.StatusNotFound, "model not found", "NOT_FOUND")
			return
		}
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		prev, err := cfg.Store.Load(r.Context(), old)
		if errors.IsModelNotFound(err) {
			WriteError(w, http.StatusNotFound, "old model not found", "NOT_FOUND")
			return
		}
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, diff.Compare(cur, prev))
	}
}
