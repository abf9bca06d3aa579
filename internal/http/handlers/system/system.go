// Package system serves the endpoints that are not about students: the
// root information document and the database health check.
package system

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/utils/response"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// Info is the body of GET /.
type Info struct {
	Message       string    `json:"message"`
	Version       string    `json:"version"`
	Documentation string    `json:"documentation"`
	HealthCheck   string    `json:"health_check"`
	Timestamp     time.Time `json:"timestamp"`
}

// Health is the body of GET /health. Error is set only when unhealthy.
type Health struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Table     string    `json:"table"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
	Message   string    `json:"message"`
}

// Root handles GET /
func Root() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		response.WriteJSON(w, http.StatusOK, Info{
			Message:       "Welcome to School Management System API",
			Version:       Version,
			Documentation: "/docs",
			HealthCheck:   "/health",
			Timestamp:     time.Now(),
		})
	}
}

// HealthCheck handles GET /health by reading one record from the students
// table. Any store error is reported as 503 with the error text.
func HealthCheck(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))

			response.WriteJSON(w, http.StatusServiceUnavailable, Health{
				Status:    "unhealthy",
				Database:  "disconnected",
				Table:     store.Table(),
				Timestamp: time.Now(),
				Error:     err.Error(),
				Message:   "Database connection failed",
			})
			return
		}

		response.WriteJSON(w, http.StatusOK, Health{
			Status:    "healthy",
			Database:  "connected",
			Table:     store.Table(),
			Timestamp: time.Now(),
			Message:   "System is operational",
		})
	}
}
