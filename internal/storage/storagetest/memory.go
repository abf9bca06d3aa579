// Package storagetest provides an in-memory storage.Storage for handler
// tests. Unlike the real stores it does not enforce unique registration
// numbers, so tests can seed duplicates.
package storagetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/types"
)

// Memory is a storage.Storage backed by a slice. Set Err to make every
// call fail with it. Calls counts invocations per method name.
type Memory struct {
	mu       sync.Mutex
	records  []types.Student
	nextID   int
	Err      error
	Calls    map[string]int
	TableVal string
}

// NewMemory returns an empty store for storage.DefaultTable.
func NewMemory() *Memory {
	return &Memory{Calls: make(map[string]int), TableVal: storage.DefaultTable}
}

// Seed inserts records as-is, assigning ids where empty.
func (m *Memory) Seed(students ...types.Student) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range students {
		if s.ID == "" {
			m.nextID++
			s.ID = fmt.Sprintf("rec_%d", m.nextID)
		}
		m.records = append(m.records, s)
	}
}

// Records returns a copy of the stored records.
func (m *Memory) Records() []types.Student {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.Student(nil), m.records...)
}

func (m *Memory) call(name string) error {
	m.Calls[name]++
	return m.Err
}

// Table implements storage.Storage.
func (m *Memory) Table() string { return m.TableVal }

// Ping implements storage.Storage.
func (m *Memory) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.call("Ping")
}

// CreateStudent implements storage.Storage.
func (m *Memory) CreateStudent(_ context.Context, in types.StudentInput) (types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("CreateStudent"); err != nil {
		return types.Student{}, err
	}
	m.nextID++
	s := types.Student{
		ID:             fmt.Sprintf("rec_%d", m.nextID),
		Name:           in.Name,
		Class:          in.ClassValue(),
		RegistrationNo: in.RegistrationNo,
		Phone:          in.Phone,
	}
	m.records = append(m.records, s)
	return s, nil
}

// GetStudents implements storage.Storage.
func (m *Memory) GetStudents(_ context.Context) ([]types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("GetStudents"); err != nil {
		return nil, err
	}
	return append(make([]types.Student, 0, len(m.records)), m.records...), nil
}

// FindStudentsByRegistrationNo implements storage.Storage.
func (m *Memory) FindStudentsByRegistrationNo(_ context.Context, regNo string, limit int) ([]types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("FindStudentsByRegistrationNo"); err != nil {
		return nil, err
	}
	found := make([]types.Student, 0)
	for _, s := range m.records {
		if s.RegistrationNo == regNo {
			found = append(found, s)
			if limit > 0 && len(found) == limit {
				break
			}
		}
	}
	return found, nil
}

// UpdateStudentByID implements storage.Storage.
func (m *Memory) UpdateStudentByID(_ context.Context, id string, in types.StudentInput) (types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("UpdateStudentByID"); err != nil {
		return types.Student{}, err
	}
	for i, s := range m.records {
		if s.ID == id {
			m.records[i] = types.Student{
				ID:             id,
				Name:           in.Name,
				Class:          in.ClassValue(),
				RegistrationNo: in.RegistrationNo,
				Phone:          in.Phone,
			}
			return m.records[i], nil
		}
	}
	return types.Student{}, storage.ErrNotFound
}

// DeleteStudentByID implements storage.Storage.
func (m *Memory) DeleteStudentByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("DeleteStudentByID"); err != nil {
		return err
	}
	for i, s := range m.records {
		if s.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}
