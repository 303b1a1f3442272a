package repository

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishichetan/kchetan/internal/client/storage"
	"github.com/krishichetan/kchetan/internal/db"
	"github.com/krishichetan/kchetan/internal/models"
)

const selectSession = `SELECT token, role, name, phone, created_at FROM sessions WHERE id = $1`

func setupSessionMock(t *testing.T) (*SQLSessionRepository, sqlmock.Sqlmock, func()) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewSQLSessionRepository(conn)
	cleanup := func() { conn.Close() }
	return repo, mock, cleanup
}

func TestLoad_Found(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectSession)).
		WithArgs(DefaultSlot).
		WillReturnRows(sqlmock.NewRows([]string{"token", "role", "name", "phone", "created_at"}).
			AddRow("tok", "officer", "Asha", "9876543211", int64(1767225600)))

	s, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, models.RoleOfficer, s.Role)
	assert.Equal(t, int64(1767225600), s.CreatedAt.Unix())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_NoRows(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectSession)).
		WithArgs(DefaultSlot).
		WillReturnRows(sqlmock.NewRows([]string{"token", "role", "name", "phone", "created_at"}))

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, storage.ErrNoSession)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_QueryError(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectSession)).
		WithArgs(DefaultSlot).
		WillReturnError(errors.New("query failed"))

	_, err := repo.Load(context.Background())
	assert.ErrorContains(t, err, "load session")
	assert.NotErrorIs(t, err, storage.ErrNoSession)
}

func TestSave_Upsert(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	created := time.Unix(1767225600, 0)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sessions`)).
		WithArgs(DefaultSlot, "tok", "farmer", "Ramesh", "9876543210", created.Unix()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Save(context.Background(), models.Session{
		Token: "tok", Role: models.RoleFarmer, Name: "Ramesh", Phone: "9876543210", CreatedAt: created,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClear_Error(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE id = $1`)).
		WithArgs(DefaultSlot).
		WillReturnError(errors.New("locked"))

	assert.ErrorContains(t, repo.Clear(context.Background()), "clear session")
}

func TestSQLite_RoundTrip(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, filepath.Join(t.TempDir(), "kc.db"))
	require.NoError(t, err)
	defer conn.Close()

	repo := NewSQLSessionRepository(conn)
	_, err = repo.Load(ctx)
	require.ErrorIs(t, err, storage.ErrNoSession)

	require.NoError(t, repo.Save(ctx, models.Session{Token: "a", Role: models.RoleFarmer, Name: "R", Phone: "1"}))
	require.NoError(t, repo.Save(ctx, models.Session{Token: "b", Role: models.RoleOfficer, Name: "O", Phone: "2"}))

	s, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", s.Token)
	assert.Equal(t, models.RoleOfficer, s.Role)

	require.NoError(t, repo.Clear(ctx))
	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, storage.ErrNoSession)
}
