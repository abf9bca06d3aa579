// Package storage defines the Storage interface: the contract any student
// store (the hosted Xata database, or the local SQLite file) must satisfy.
//
// Handlers depend only on this interface, so tests can pass an in-memory
// fake and the backend is picked by configuration in main.go.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/school-api/internal/types"
)

// DefaultTable is the name of the students table in the remote database.
const DefaultTable = "tbl_students"

var (
	// ErrNotFound is returned when a record addressed by id does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateRegistrationNo is returned when a write would leave two
	// records sharing a registration number.
	ErrDuplicateRegistrationNo = errors.New("registration number already in use")

	// ErrNotConfigured is returned at call time by a store whose connection
	// settings are missing.
	ErrNotConfigured = errors.New("store is not configured")
)

// Storage is the database contract.
//
// Every method takes a context; implementations apply their own per-call
// timeout on top of it.
type Storage interface {
	// Table returns the name of the table the store operates on.
	Table() string

	// Ping issues the cheapest possible query (one record) to prove the
	// store is reachable and the credentials are accepted.
	Ping(ctx context.Context) error

	// CreateStudent inserts a new record and returns it with its
	// store-assigned ID.
	CreateStudent(ctx context.Context, in types.StudentInput) (types.Student, error)

	// GetStudents returns the students visible under the store's default
	// page size. Returns an empty slice (not nil) if there are none.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// FindStudentsByRegistrationNo returns the records whose registration
	// number equals regNo. At most limit records are returned.
	FindStudentsByRegistrationNo(ctx context.Context, regNo string, limit int) ([]types.Student, error)

	// UpdateStudentByID replaces all client-settable fields of the record
	// and returns the stored result. ErrNotFound if id does not exist.
	UpdateStudentByID(ctx context.Context, id string, in types.StudentInput) (types.Student, error)

	// DeleteStudentByID removes a record permanently. ErrNotFound if id
	// does not exist.
	DeleteStudentByID(ctx context.Context, id string) error
}
