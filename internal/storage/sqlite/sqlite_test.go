package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/school-api/internal/config"
	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/types"
)

var _ storage.Storage = (*SQLite)(nil)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()
	cfg := &config.Config{Storage: config.Storage{
		Driver:  config.DriverSQLite,
		Table:   storage.DefaultTable,
		Timeout: 5 * time.Second,
		Path:    filepath.Join(t.TempDir(), "data", "students.db"),
	}}
	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func input(name string, class int, regNo, phone string) types.StudentInput {
	return types.StudentInput{Name: name, Class: &class, RegistrationNo: regNo, Phone: phone}
}

func TestCreateAndFind(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.CreateStudent(ctx, input("Asha", 5, "REG-001", "555-0100"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.ID, "rec_"))
	assert.Equal(t, "Asha", created.Name)
	assert.Equal(t, 5, created.Class)

	found, err := s.FindStudentsByRegistrationNo(ctx, "REG-001", 2)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, created, found[0])

	none, err := s.FindStudentsByRegistrationNo(ctx, "REG-404", 2)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestCreateDuplicateRegistrationNo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreateStudent(ctx, input("Asha", 5, "REG-001", "555-0100"))
	require.NoError(t, err)

	_, err = s.CreateStudent(ctx, input("Ravi", 6, "REG-001", "555-0101"))
	assert.True(t, errors.Is(err, storage.ErrDuplicateRegistrationNo))
}

func TestGetStudentsOrdered(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	empty, err := s.GetStudents(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)

	for _, reg := range []string{"REG-001", "REG-002", "REG-003"} {
		_, err := s.CreateStudent(ctx, input("Student "+reg, 1, reg, "555"))
		require.NoError(t, err)
	}

	all, err := s.GetStudents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "REG-001", all[0].RegistrationNo)
	assert.Equal(t, "REG-003", all[2].RegistrationNo)
}

func TestUpdateReplacesAllFields(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.CreateStudent(ctx, input("Asha", 5, "REG-001", "555-0100"))
	require.NoError(t, err)

	updated, err := s.UpdateStudentByID(ctx, created.ID, input("Asha K", 0, "REG-002", "555-0199"))
	require.NoError(t, err)
	assert.Equal(t, types.Student{
		ID: created.ID, Name: "Asha K", Class: 0, RegistrationNo: "REG-002", Phone: "555-0199",
	}, updated)

	found, err := s.FindStudentsByRegistrationNo(ctx, "REG-002", 2)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, updated, found[0])

	_, err = s.UpdateStudentByID(ctx, "rec_missing", input("X", 1, "REG-009", "1"))
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.CreateStudent(ctx, input("Asha", 5, "REG-001", "555-0100"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteStudentByID(ctx, created.ID))

	found, err := s.FindStudentsByRegistrationNo(ctx, "REG-001", 2)
	require.NoError(t, err)
	assert.Empty(t, found)

	err = s.DeleteStudentByID(ctx, created.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Ping(context.Background()))

	require.NoError(t, s.Close())
	assert.Error(t, s.Ping(context.Background()))
}
