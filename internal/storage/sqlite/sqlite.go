// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// It is the local stand-in for the hosted database: same table name, same
// columns, same "rec_..." string ids, so the HTTP surface behaves
// identically when STORAGE_DRIVER=sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/school-api/internal/config"
	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/types"
)

// defaultPageSize mirrors the hosted store's default query page.
const defaultPageSize = 20

// SQLite is the local implementation of storage.Storage.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db      *sql.DB
	table   string
	timeout time.Duration
}

// New opens the SQLite database at cfg.Storage.Path, creates the students
// table if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	if dir := filepath.Dir(cfg.Storage.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	s := &SQLite{Db: db, table: cfg.Storage.Table, timeout: cfg.Storage.Timeout}

	// The table name comes from configuration, never from a request, so it
	// is safe to format into DDL. It is still quoted as an identifier.
	_, err = db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id                  TEXT    PRIMARY KEY,
			std_name            TEXT    NOT NULL,
			std_class           INTEGER NOT NULL,
			std_registration_no TEXT    NOT NULL UNIQUE,
			std_phone           TEXT    NOT NULL,
			created_at          INTEGER NOT NULL
		)
	`, s.ident()))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return s, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// Table implements storage.Storage.
func (s *SQLite) Table() string { return s.table }

func (s *SQLite) ident() string {
	return `"` + strings.ReplaceAll(s.table, `"`, `""`) + `"`
}

func newID() string {
	return "rec_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// Ping implements storage.Storage.
func (s *SQLite) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var n int
	err := s.Db.QueryRowContext(ctx, "SELECT COUNT(*) FROM (SELECT id FROM "+s.ident()+" LIMIT 1)").Scan(&n)
	if err != nil {
		return fmt.Errorf("sqlite.Ping: %w", err)
	}
	return nil
}

// CreateStudent implements storage.Storage.
func (s *SQLite) CreateStudent(ctx context.Context, in types.StudentInput) (types.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	student := types.Student{
		ID:             newID(),
		Name:           in.Name,
		Class:          in.ClassValue(),
		RegistrationNo: in.RegistrationNo,
		Phone:          in.Phone,
	}

	_, err := s.Db.ExecContext(ctx,
		"INSERT INTO "+s.ident()+" (id, std_name, std_class, std_registration_no, std_phone, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		student.ID, student.Name, student.Class, student.RegistrationNo, student.Phone, time.Now().UnixNano(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return types.Student{}, fmt.Errorf("sqlite.CreateStudent: %w", storage.ErrDuplicateRegistrationNo)
		}
		return types.Student{}, fmt.Errorf("sqlite.CreateStudent: exec: %w", err)
	}

	return student, nil
}

// GetStudents implements storage.Storage. Like the hosted store, only the
// first page is returned.
func (s *SQLite) GetStudents(ctx context.Context) ([]types.Student, error) {
	students, err := s.list(ctx,
		"SELECT id, std_name, std_class, std_registration_no, std_phone FROM "+s.ident()+
			" ORDER BY created_at LIMIT ?", defaultPageSize)
	if err != nil {
		return nil, fmt.Errorf("sqlite.GetStudents: %w", err)
	}
	return students, nil
}

// FindStudentsByRegistrationNo implements storage.Storage.
func (s *SQLite) FindStudentsByRegistrationNo(ctx context.Context, regNo string, limit int) ([]types.Student, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	students, err := s.list(ctx,
		"SELECT id, std_name, std_class, std_registration_no, std_phone FROM "+s.ident()+
			" WHERE std_registration_no = ? ORDER BY created_at LIMIT ?", regNo, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite.FindStudentsByRegistrationNo: %w", err)
	}
	return students, nil
}

func (s *SQLite) list(ctx context.Context, query string, args ...any) ([]types.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.Db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	// Returning [] instead of null in JSON.
	students := make([]types.Student, 0)
	for rows.Next() {
		var student types.Student
		if err := rows.Scan(
			&student.ID,
			&student.Name,
			&student.Class,
			&student.RegistrationNo,
			&student.Phone,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return students, nil
}

// UpdateStudentByID implements storage.Storage.
func (s *SQLite) UpdateStudentByID(ctx context.Context, id string, in types.StudentInput) (types.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.Db.ExecContext(ctx,
		"UPDATE "+s.ident()+" SET std_name = ?, std_class = ?, std_registration_no = ?, std_phone = ? WHERE id = ?",
		in.Name, in.ClassValue(), in.RegistrationNo, in.Phone, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return types.Student{}, fmt.Errorf("sqlite.UpdateStudentByID: %w", storage.ErrDuplicateRegistrationNo)
		}
		return types.Student{}, fmt.Errorf("sqlite.UpdateStudentByID: exec: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return types.Student{}, fmt.Errorf("sqlite.UpdateStudentByID: %w", err)
	}

	return types.Student{
		ID:             id,
		Name:           in.Name,
		Class:          in.ClassValue(),
		RegistrationNo: in.RegistrationNo,
		Phone:          in.Phone,
	}, nil
}

// DeleteStudentByID implements storage.Storage.
func (s *SQLite) DeleteStudentByID(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.Db.ExecContext(ctx, "DELETE FROM "+s.ident()+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("sqlite.DeleteStudentByID: exec: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return fmt.Errorf("sqlite.DeleteStudentByID: %w", err)
	}
	return nil
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
