// Package student contains all HTTP handlers related to the Student resource.
//
// Every exported function is a factory: it receives the store once at
// start-up and returns the http.HandlerFunc the router calls per request.
//
//	router.HandleFunc("POST /students/", student.New(store))
//
// Get, Update and Delete address a student by registration number. The
// number is first resolved to the store's record id with a filter query,
// and the operation then acts on that id: two store round-trips.
package student

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/school-api/internal/http/middleware"
	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/types"
	"github.com/aanand-mishra/school-api/internal/utils/response"
)

// maxBodyBytes caps request bodies; a student record is a few hundred bytes.
const maxBodyBytes = 1 << 20

// lookupLimit is the page size of registration-number lookups. Two is
// enough to tell "exactly one" from "duplicates".
const lookupLimit = 2

// New handles POST /students/
// Creates a new student from the JSON request body.
//
// Request body (JSON):
//
//	{ "std_name": "Asha", "std_class": 5, "std_registration_no": "REG-001", "std_phone": "555-0100" }
//
// Success response (201 Created): the stored record, including its id.
//
// Error responses:
//
//	422 Unprocessable — empty body, malformed JSON, or failed validation
//	409 Conflict      — registration number already in use
//	400 Bad Request   — store error
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		var payload types.StudentCreate
		if !decodeAndValidate(w, r, &payload) {
			return
		}

		existing, err := store.FindStudentsByRegistrationNo(r.Context(), payload.RegistrationNo, 1)
		if err != nil {
			storeFailure(w, r, err, "Failed to create student in %s", store.Table())
			return
		}
		if len(existing) > 0 {
			conflict(w, store, payload.RegistrationNo)
			return
		}

		created, err := store.CreateStudent(r.Context(), payload.StudentInput)
		if errors.Is(err, storage.ErrDuplicateRegistrationNo) {
			conflict(w, store, payload.RegistrationNo)
			return
		}
		if err != nil {
			storeFailure(w, r, err, "Failed to create student in %s", store.Table())
			return
		}

		slog.Info("student created",
			slog.String("id", created.ID),
			slog.String("registration_no", created.RegistrationNo))

		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// GetList handles GET /students/
// Returns a JSON array of students (the store's default page).
// Returns an empty array [] (not null) when there are no students.
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := store.GetStudents(r.Context())
		if err != nil {
			storeFailure(w, r, err, "Failed to fetch students from %s", store.Table())
			return
		}
		if students == nil {
			students = make([]types.Student, 0)
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// GetByRegistrationNo handles GET /students/{reg_no}
//
// Error responses:
//
//	404 Not Found — no student has this registration number
//	409 Conflict  — more than one student has it
//	400 Bad Request — store error
func GetByRegistrationNo(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		regNo := r.PathValue("reg_no")
		slog.Info("getting a student", slog.String("registration_no", regNo))

		student, err := lookup(r.Context(), store, regNo)
		if err != nil {
			lookupFailure(w, r, store, regNo, err, "Failed to fetch student from %s")
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// Update handles PUT /students/{reg_no}
// Replaces ALL fields of an existing student; nothing is merged.
//
// Error responses:
//
//	422 Unprocessable — empty body, malformed JSON, or failed validation
//	404 Not Found     — no student has this registration number
//	409 Conflict      — duplicates exist, or the new number belongs to another student
//	400 Bad Request   — store error
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		regNo := r.PathValue("reg_no")
		slog.Info("updating a student", slog.String("registration_no", regNo))

		var payload types.StudentUpdate
		if !decodeAndValidate(w, r, &payload) {
			return
		}

		current, err := lookup(r.Context(), store, regNo)
		if err != nil {
			lookupFailure(w, r, store, regNo, err, "Failed to update student in %s")
			return
		}

		if payload.RegistrationNo != current.RegistrationNo {
			taken, err := store.FindStudentsByRegistrationNo(r.Context(), payload.RegistrationNo, 1)
			if err != nil {
				storeFailure(w, r, err, "Failed to update student in %s", store.Table())
				return
			}
			if len(taken) > 0 && taken[0].ID != current.ID {
				conflict(w, store, payload.RegistrationNo)
				return
			}
		}

		updated, err := store.UpdateStudentByID(r.Context(), current.ID, payload.StudentInput)
		if err != nil {
			lookupFailure(w, r, store, payload.RegistrationNo, err, "Failed to update student in %s")
			return
		}

		slog.Info("student updated",
			slog.String("id", updated.ID),
			slog.String("registration_no", updated.RegistrationNo))

		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// DeleteResponse is the body of a successful delete.
type DeleteResponse struct {
	Message        string `json:"message"`
	RegistrationNo string `json:"registration_no"`
}

// Delete handles DELETE /students/{reg_no}
// Permanently removes a student record.
//
// Success response (200 OK):
//
//	{ "message": "Student deleted successfully from tbl_students", "registration_no": "REG-001" }
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		regNo := r.PathValue("reg_no")
		slog.Info("deleting a student", slog.String("registration_no", regNo))

		current, err := lookup(r.Context(), store, regNo)
		if err != nil {
			lookupFailure(w, r, store, regNo, err, "Failed to delete student from %s")
			return
		}

		if err := store.DeleteStudentByID(r.Context(), current.ID); err != nil {
			lookupFailure(w, r, store, regNo, err, "Failed to delete student from %s")
			return
		}

		slog.Info("student deleted",
			slog.String("id", current.ID),
			slog.String("registration_no", regNo))

		response.WriteJSON(w, http.StatusOK, DeleteResponse{
			Message:        fmt.Sprintf("Student deleted successfully from %s", store.Table()),
			RegistrationNo: regNo,
		})
	}
}

// lookup resolves a registration number to exactly one record.
// It returns storage.ErrNotFound for zero matches and
// storage.ErrDuplicateRegistrationNo for more than one.
func lookup(ctx context.Context, store storage.Storage, regNo string) (types.Student, error) {
	students, err := store.FindStudentsByRegistrationNo(ctx, regNo, lookupLimit)
	if err != nil {
		return types.Student{}, err
	}
	switch len(students) {
	case 0:
		return types.Student{}, storage.ErrNotFound
	case 1:
		return students[0], nil
	default:
		return types.Student{}, storage.ErrDuplicateRegistrationNo
	}
}

// decodeAndValidate reads the JSON body into dst and checks its struct
// tags. On failure it writes a 422 response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusUnprocessableEntity,
			response.GeneralError(errors.New("request body is empty")))
		return false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusUnprocessableEntity, response.DecodeError(err))
		return false
	}

	if err := types.Validate(dst); err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			response.WriteJSON(w, http.StatusUnprocessableEntity,
				response.ValidationError(validateErrs))
			return false
		}
		response.WriteJSON(w, http.StatusUnprocessableEntity, response.GeneralError(err))
		return false
	}
	return true
}

func conflict(w http.ResponseWriter, store storage.Storage, regNo string) {
	response.WriteJSON(w, http.StatusConflict,
		response.Message("Registration number %s is already in use in %s", regNo, store.Table()))
}

// lookupFailure maps errors from lookup or an id-addressed store call.
// failure is the client-facing message for anything that is neither
// not-found nor a duplicate; it takes the table name.
func lookupFailure(w http.ResponseWriter, r *http.Request, store storage.Storage, regNo string, err error, failure string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		response.WriteJSON(w, http.StatusNotFound,
			response.Message("Student not found in %s", store.Table()))
	case errors.Is(err, storage.ErrDuplicateRegistrationNo):
		response.WriteJSON(w, http.StatusConflict,
			response.Message("Multiple students share registration number %s in %s", regNo, store.Table()))
	default:
		storeFailure(w, r, err, failure, store.Table())
	}
}

// storeFailure logs the upstream error and answers 400 with a message that
// does not include it.
func storeFailure(w http.ResponseWriter, r *http.Request, err error, format string, args ...any) {
	slog.Error("store call failed",
		slog.String("requestID", middleware.RequestID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))

	response.WriteJSON(w, http.StatusBadRequest, response.Message(format, args...))
}
