package handler

import (
	"net/http"
	"time"

	"go-pharmacy-reservation/internal/store"
	"go-pharmacy-reservation/pkg/response"
)

// ConnectionCounter reports the open protocol connections.
type ConnectionCounter interface {
	ActiveConnections() int
}

type HealthHandler struct {
	store     *store.Store
	conns     ConnectionCounter
	startedAt time.Time
}

func NewHealthHandler(st *store.Store, conns ConnectionCounter) *HealthHandler {
	return &HealthHandler{
		store:     st,
		conns:     conns,
		startedAt: time.Now(),
	}
}

type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

type StatsResponse struct {
	store.Stats
	Connections int `json:"connections"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "ok", HealthResponse{
		Status: "ok",
		Uptime: time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}

func (h *HealthHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := StatsResponse{Stats: h.store.Stats()}
	if h.conns != nil {
		stats.Connections = h.conns.ActiveConnections()
	}
	response.Success(w, http.StatusOK, "Stats retrieved successfully", stats)
}
