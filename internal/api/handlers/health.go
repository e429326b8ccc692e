package handlers

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// DocumentCounter is the part of the store the health check needs.
type DocumentCounter interface {
	Count() int
}

// GenerationStatus reports whether the generation provider is usable.
type GenerationStatus interface {
	Ready() error
	Name() string
}

type HealthHandler struct {
	version string
	docs    DocumentCounter
	gen     GenerationStatus
	redis   *redis.Client
}

func NewHealthHandler(version string, docs DocumentCounter, gen GenerationStatus, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{version: version, docs: docs, gen: gen, redis: rdb}
}

type HealthResponse struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	DocumentsStored int    `json:"documents_stored"`
	Timestamp       string `json:"timestamp"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:          "healthy",
		Version:         h.version,
		DocumentsStored: h.docs.Count(),
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}

	if h.gen != nil {
		if err := h.gen.Ready(); err != nil {
			checks["generation"] = "unhealthy: " + err.Error()
		} else {
			checks["generation"] = "ok"
		}
	}

	if h.redis != nil {
		if err := h.redis.Ping(r.Context()).Err(); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	for _, v := range checks {
		if v != "ok" {
			status = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, status, map[string]interface{}{"status": statusStr(status), "checks": checks})
}

func statusStr(code int) string {
	if code == http.StatusOK {
		return "ok"
	}
	return "unhealthy"
}
