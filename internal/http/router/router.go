// Package router maps every METHOD+PATTERN of the API to its handler.
//
// Route table:
//
//	GET    /                    → service information
//	GET    /health              → database health check
//	POST   /students/           → create a student
//	GET    /students/           → list students
//	GET    /students/{reg_no}   → get one student by registration number
//	PUT    /students/{reg_no}   → replace a student
//	DELETE /students/{reg_no}   → delete a student
package router

import (
	"net/http"

	"github.com/aanand-mishra/school-api/internal/http/handlers/student"
	"github.com/aanand-mishra/school-api/internal/http/handlers/system"
	"github.com/aanand-mishra/school-api/internal/http/middleware"
	"github.com/aanand-mishra/school-api/internal/storage"
)

// New returns the application handler with middleware applied.
func New(store storage.Storage) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", system.Root())
	mux.HandleFunc("GET /health", system.HealthCheck(store))

	// The collection is served with and without the trailing slash.
	for _, collection := range []string{"/students", "/students/{$}"} {
		mux.HandleFunc("POST "+collection, student.New(store))
		mux.HandleFunc("GET "+collection, student.GetList(store))
	}
	mux.HandleFunc("GET /students/{reg_no}", student.GetByRegistrationNo(store))
	mux.HandleFunc("PUT /students/{reg_no}", student.Update(store))
	mux.HandleFunc("DELETE /students/{reg_no}", student.Delete(store))

	return middleware.Chain(mux)
}
