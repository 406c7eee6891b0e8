package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"insights-be/pkg/database"
	"insights-be/pkg/logger"
	"insights-be/pkg/redis"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db          *database.PostgresDB
	redisClient *redis.Client
	logger      *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.PostgresDB, redisClient *redis.Client, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, redisClient: redisClient, logger: logger}
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	checks := map[string]string{}

	if err := h.db.Health(ctx); err != nil {
		h.logger.WithError(err).Warn("Database health check failed")
		checks["database"] = "unhealthy"
		status = "degraded"
	} else {
		checks["database"] = "healthy"
	}

	if err := h.redisClient.Health(ctx); err != nil {
		h.logger.WithError(err).Warn("Redis health check failed")
		checks["redis"] = "unhealthy"
		status = "degraded"
	} else {
		checks["redis"] = "healthy"
	}

	response := map[string]interface{}{
		"success":   true,
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Error("Failed to encode health check response")
	}
}
