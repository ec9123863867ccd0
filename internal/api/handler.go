// Package api provides HTTP handlers for the proxybot sidecar API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/proxybot/internal/store"
)

// Handler exposes account data over HTTP and accepts usage reports from
// the proxy service.
type Handler struct {
	directory store.Directory
}

// NewHandler creates a new Handler.
func NewHandler(directory store.Directory) *Handler {
	return &Handler{directory: directory}
}

// RegisterRoutes attaches the API routes to the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/users", h.handleListUsers)
	r.Get("/api/users/stats", h.handleUsersStats)
	r.Post("/api/usage", h.handleRecordUsage)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.directory.GetUsers(r.Context())
	if err != nil {
		slog.Error("list users failed", "error", err)
		Error(w, http.StatusInternalServerError, "list_users_failed")
		return
	}
	if users == nil {
		users = []string{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{"users": users, "total": len(users)})
}

func (h *Handler) handleUsersStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.directory.GetUsersStats(r.Context())
	if err != nil {
		slog.Error("get usage stats failed", "error", err)
		Error(w, http.StatusInternalServerError, "stats_failed")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"stats": stats})
}

type usageReport struct {
	Username string `json:"username"`
	Bytes    int64  `json:"bytes"`
	SeenAt   int64  `json:"seen_at"` // unix seconds, optional
}

func (h *Handler) handleRecordUsage(w http.ResponseWriter, r *http.Request) {
	var report usageReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		Error(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if report.Username == "" || report.Bytes < 0 {
		Error(w, http.StatusBadRequest, "invalid_report")
		return
	}

	seenAt := time.Now()
	if report.SeenAt > 0 {
		seenAt = time.Unix(report.SeenAt, 0)
	}

	if err := h.directory.RecordUsage(r.Context(), report.Username, report.Bytes, seenAt); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			Error(w, http.StatusNotFound, "unknown_user")
			return
		}
		slog.Error("record usage failed", "error", err, "username", report.Username)
		Error(w, http.StatusInternalServerError, "record_usage_failed")
		return
	}

	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
