package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ming-qiu/theia/internal/model"
	"github.com/ming-qiu/theia/internal/store"
)

func testRouter(t *testing.T) (*store.Store, http.Handler) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "theia.db"), nil)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	router := NewRouter(Config{
		Store:     s,
		Logger:    logger,
		Version:   "test",
		StartTime: time.Now(),
	})
	return s, router
}

func testModel(timeline string, cutOut int64) *model.ShotModel {
	return &model.ShotModel{
		Sequence: "SEQ010",
		Timeline: timeline,
		FPS:      24,
		Shots: []model.Shot{
			{
				Span: model.ShotSpan{ShotCode: "SH010", TimelineIn: 100, TimelineOut: 124, CutOrder: 1},
				Cut:  model.CutPoints{CutIn: 1009, CutOut: cutOut},
			},
		},
	}
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	_, router := testRouter(t)

	rec := get(t, router, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Status != "ok" || resp.Version != "test" {
		t.Errorf("health = %+v", resp)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestListModelsEmpty(t *testing.T) {
	_, router := testRouter(t)

	rec := get(t, router, "/api/models")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp ModelsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(resp.Models) != 0 {
		t.Errorf("models = %+v, want empty", resp.Models)
	}
}

func TestGetModel(t *testing.T) {
	s, router := testRouter(t)
	if err := s.Save(context.Background(), testModel("SEQ010_v002", 1032)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rec := get(t, router, "/api/models/SEQ010_v002")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var m model.ShotModel
	if err := json.NewDecoder(rec.Body).Decode(&m); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if m.Timeline != "SEQ010_v002" || len(m.Shots) != 1 {
		t.Errorf("model = %+v", m)
	}
}

func TestGetModelNotFound(t *testing.T) {
	_, router := testRouter(t)

	rec := get(t, router, "/api/models/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSaveModelEndpoint(t *testing.T) {
	s, router := testRouter(t)

	body, _ := json.Marshal(testModel("SEQ010_v003", 1040))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/models", bytes.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	m, err := s.Load(context.Background(), "SEQ010_v003")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.Shots[0].Cut.CutOut != 1040 {
		t.Errorf("CutOut = %d", m.Shots[0].Cut.CutOut)
	}
}

func TestSaveModelRejectsEmptyTimeline(t *testing.T) {
	_, router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/models", bytes.NewReader([]byte(`{}`))))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDeleteModelEndpoint(t *testing.T) {
	s, router := testRouter(t)
	if err := s.Save(context.Background(), testModel("SEQ010_v002", 1032)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/models/SEQ010_v002", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	rec = get(t, router, "/api/models/SEQ010_v002")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status after delete = %d, want 404", rec.Code)
	}
}

func TestChangesEndpoint(t *testing.T) {
	s, router := testRouter(t)
	ctx := context.Background()
	if err := s.Save(ctx, testModel("SEQ010_v002", 1032)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save(ctx, testModel("SEQ010_v003", 1040)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rec := get(t, router, "/api/models/SEQ010_v003/changes?old=SEQ010_v002")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var rep model.ChangeReport
	if err := json.NewDecoder(rec.Body).Decode(&rep); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(rep.Matched) != 1 || rep.Matched[0].DeltaCutOut != 8 {
		t.Errorf("report = %+v", rep)
	}

	rec = get(t, router, "/api/models/SEQ010_v003/changes")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status without old = %d, want 400", rec.Code)
	}
}
