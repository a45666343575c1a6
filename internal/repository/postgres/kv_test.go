package postgres

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masumislambadsha/zavisoft/pkg/database"
	apperrors "github.com/masumislambadsha/zavisoft/pkg/errors"
	"github.com/masumislambadsha/zavisoft/internal/repository"
)

var _ repository.KV = (*KV)(nil)

func setupMock(t *testing.T) (*KV, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return NewKV(mock), mock
}

// ---------------------------------------------------------------------------
// Get
// ---------------------------------------------------------------------------

func TestKV_Get_Success(t *testing.T) {
	kv, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(getQuery)).WithArgs("session:abc12345:cart").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow([]byte(`[]`)))

	got, err := kv.Get(context.Background(), "session:abc12345:cart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func TestKV_Get_NotFound(t *testing.T) {
	kv, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(getQuery)).WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := kv.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestKV_Get_DatabaseError(t *testing.T) {
	kv, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(getQuery)).WithArgs("k").
		WillReturnError(errors.New("connection reset"))

	_, err := kv.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "select kv entry k")
}

// ---------------------------------------------------------------------------
// CompareAndSet / Delete / Ping
// ---------------------------------------------------------------------------

func TestKV_CompareAndSet_InsertsWhenAbsent(t *testing.T) {
	kv, mock := setupMock(t)

	mock.ExpectExec(regexp.QuoteMeta(insertQuery)).WithArgs("k", []byte(`[1]`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ok, err := kv.CompareAndSet(context.Background(), "k", nil, []byte(`[1]`))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestKV_CompareAndSet_InsertConflict(t *testing.T) {
	kv, mock := setupMock(t)

	mock.ExpectExec(regexp.QuoteMeta(insertQuery)).WithArgs("k", []byte(`[1]`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	ok, err := kv.CompareAndSet(context.Background(), "k", nil, []byte(`[1]`))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKV_CompareAndSet_UpdatesMatchingRow(t *testing.T) {
	kv, mock := setupMock(t)

	mock.ExpectExec(regexp.QuoteMeta(updateQuery)).WithArgs("k", []byte(`[1,2]`), []byte(`[1]`)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := kv.CompareAndSet(context.Background(), "k", []byte(`[1]`), []byte(`[1,2]`))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestKV_CompareAndSet_StaleValue(t *testing.T) {
	kv, mock := setupMock(t)

	mock.ExpectExec(regexp.QuoteMeta(updateQuery)).WithArgs("k", []byte(`[1,2]`), []byte(`[1]`)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := kv.CompareAndSet(context.Background(), "k", []byte(`[1]`), []byte(`[1,2]`))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKV_CompareAndSet_Error(t *testing.T) {
	kv, mock := setupMock(t)

	mock.ExpectExec(regexp.QuoteMeta(insertQuery)).WithArgs("k", []byte(`x`)).
		WillReturnError(errors.New("disk full"))

	_, err := kv.CompareAndSet(context.Background(), "k", nil, []byte(`x`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write kv entry k")
}

func TestKV_Delete(t *testing.T) {
	kv, mock := setupMock(t)

	mock.ExpectExec("DELETE FROM kv_entries").WithArgs("k").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, kv.Delete(context.Background(), "k"))
}

func TestKV_Ping(t *testing.T) {
	kv, mock := setupMock(t)

	mock.ExpectExec("SELECT 1").WillReturnResult(pgxmock.NewResult("SELECT", 1))
	require.NoError(t, kv.Ping(context.Background()))
}

// ---------------------------------------------------------------------------
// Migrations
// ---------------------------------------------------------------------------

func TestMigrations_Embedded(t *testing.T) {
	names, err := database.Migrations(Migrations())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"001_create_kv_entries.up.sql",
		"002_kv_entries_session_index.up.sql",
	}, names)

	sql, err := fs.ReadFile(Migrations(), names[0])
	require.NoError(t, err)
	assert.Contains(t, string(sql), "CREATE TABLE IF NOT EXISTS kv_entries")
}

func TestMigrate_AllApplied(t *testing.T) {
	_, mock := setupMock(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	for _, v := range []string{"001_create_kv_entries.up.sql", "002_kv_entries_session_index.up.sql"} {
		mock.ExpectQuery("SELECT EXISTS").WithArgs(v).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, Migrate(context.Background(), mock, logger))
}
