package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weifish0/file-upload-sys/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

var submissionColumns = []string{
	"id", "child_name", "parent_info", "original_filename",
	"storage_key", "file_url", "file_size", "upload_time", "ip_address",
}

func TestPostgresCreateSubmission(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSubmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO submissions")).
		WithArgs("小明", "媽媽", "report.pdf", "uploads/k.pdf", "", int64(3), sqlmock.AnyArg(), "1.2.3.4").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := repo.Create(context.Background(), &models.Submission{
		ChildName:        "小明",
		ParentInfo:       "媽媽",
		OriginalFilename: "report.pdf",
		StorageKey:       "uploads/k.pdf",
		FileSize:         3,
		UploadTime:       time.Now(),
		IPAddress:        "1.2.3.4",
	})
	require.NoError(t, err)
	assert.Equal(t, "7", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSubmissionRepository(db)

	uploaded := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM submissions WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(submissionColumns).
			AddRow(int64(7), "小明", "媽媽", "report.pdf", "uploads/k.pdf", "", int64(3), uploaded, "1.2.3.4"))

	sub, err := repo.FindByID(context.Background(), "7")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "7", sub.ID)
	assert.Equal(t, "report.pdf", sub.OriginalFilename)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindByIDMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSubmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM submissions WHERE id = $1")).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(submissionColumns))

	sub, err := repo.FindByID(context.Background(), "404")
	require.NoError(t, err)
	assert.Nil(t, sub)

	// Non-numeric ids cannot exist in this backend.
	sub, err = repo.FindByID(context.Background(), "not-a-number")
	require.NoError(t, err)
	assert.Nil(t, sub)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSubmissionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM submissions WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "7"))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM submissions WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.Delete(context.Background(), "7"), ErrNotFound)

	require.ErrorIs(t, repo.Delete(context.Background(), "abc"), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListAppliesSearchAndPaging(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSubmissionRepository(db)

	uploaded := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY upload_time DESC, id DESC LIMIT $2 OFFSET $3")).
		WithArgs("%小明%", 20, 40).
		WillReturnRows(sqlmock.NewRows(submissionColumns).
			AddRow(int64(2), "小明", "", "b.pdf", "uploads/b.pdf", "", int64(1), uploaded, "").
			AddRow(int64(1), "小明", "", "a.pdf", "uploads/a.pdf", "", int64(1), uploaded, ""))

	subs, err := repo.List(context.Background(), ListFilter{Search: "小明", Offset: 40, Limit: 20})
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "2", subs[0].ID)
	assert.Equal(t, "b.pdf", subs[0].OriginalFilename)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCountAndSum(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSubmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM submissions")).
		WithArgs("%%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))
	count, err := repo.Count(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(file_size), 0) FROM submissions")).
		WithArgs("%王%").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(1024)))
	sum, err := repo.SumFileSize(context.Background(), "王")
	require.NoError(t, err)
	assert.Equal(t, int64(1024), sum)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAdminFindByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresAdminRepository(db)

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE username = $1")).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow(int64(1), "admin", "$2a$10$hash", created))

	admin, err := repo.FindByUsername(context.Background(), "admin")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, "1", admin.ID)
	assert.Equal(t, "$2a$10$hash", admin.PasswordHash)

	mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE username = $1")).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}))

	admin, err = repo.FindByUsername(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, admin)
	require.NoError(t, mock.ExpectationsWereMet())
}
