// internal/store/sqlite_test.go
package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/session"
)

func newTestStore(t *testing.T) *SQLiteStore {
	s, err := Open(filepath.Join(t.TempDir(), "projects.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testDescriptor(id string) session.Descriptor {
	return session.Descriptor{
		ID:           id,
		Name:         "Springfield Permits",
		CustomerName: "City of Springfield",
		ProductType:  "permitting",
		CommunityURL: "https://springfield.gov",
	}
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := testDescriptor("proj-1")
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Get(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestSQLiteStore_GetMissingReturnsErrNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_SaveIsUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	desc := testDescriptor("proj-1")
	require.NoError(t, s.Save(ctx, desc))

	desc.Name = "Springfield Permits v2"
	desc.CommunityURL = ""
	require.NoError(t, s.Save(ctx, desc))

	got, err := s.Get(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "Springfield Permits v2", got.Name)
	assert.Empty(t, got.CommunityURL)

	descs, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, descs, 1)
}

func TestSQLiteStore_List(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testDescriptor("proj-1")))
	require.NoError(t, s.Save(ctx, testDescriptor("proj-2")))

	descs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, descs, 2)

	ids := []string{descs[0].ID, descs[1].ID}
	assert.ElementsMatch(t, []string{"proj-1", "proj-2"}, ids)
}

func TestSQLiteStore_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testDescriptor("proj-1")))
	require.NoError(t, s.Delete(ctx, "proj-1"))

	_, err := s.Get(ctx, "proj-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting again is a no-op
	assert.NoError(t, s.Delete(ctx, "proj-1"))
}

func TestSQLiteStore_NullCommunityURL(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	desc := testDescriptor("proj-1")
	desc.CommunityURL = ""
	require.NoError(t, s.Save(ctx, desc))

	got, err := s.Get(ctx, "proj-1")
	require.NoError(t, err)
	assert.Empty(t, got.CommunityURL)
}

// ==========================
// Failure Path Tests
// ==========================

func TestSQLiteStore_SaveErrorIsWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS project_descriptors").
		WillReturnResult(sqlmock.NewResult(0, 0))

	s, err := OpenDB(db)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO project_descriptors").
		WillReturnError(assert.AnError)

	err = s.Save(context.Background(), testDescriptor("proj-1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save descriptor")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_GetErrorIsWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS project_descriptors").
		WillReturnResult(sqlmock.NewResult(0, 0))

	s, err := OpenDB(db)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, name, customer_name").
		WillReturnError(assert.AnError)

	_, err = s.Get(context.Background(), "proj-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get descriptor")
	assert.NoError(t, mock.ExpectationsWereMet())
}
