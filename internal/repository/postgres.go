package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/weifish0/file-upload-sys/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
    id                BIGSERIAL PRIMARY KEY,
    child_name        VARCHAR(100) NOT NULL,
    parent_info       VARCHAR(200) NOT NULL DEFAULT '',
    original_filename VARCHAR(200) NOT NULL,
    storage_key       VARCHAR(300) NOT NULL,
    file_url          VARCHAR(500) NOT NULL DEFAULT '',
    file_size         BIGINT NOT NULL DEFAULT 0,
    upload_time       TIMESTAMPTZ NOT NULL DEFAULT now(),
    ip_address        VARCHAR(50) NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS admins (
    id            BIGSERIAL PRIMARY KEY,
    username      VARCHAR(80) NOT NULL UNIQUE,
    password_hash VARCHAR(200) NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// NewPostgresDB connects, pings and ensures the schema.
func NewPostgresDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return db, nil
}

// searchPattern builds the ILIKE argument shared by List/Count/SumFileSize.
// An empty search matches everything.
func searchPattern(search string) string {
	return "%" + search + "%"
}

const searchClause = `(child_name ILIKE $1 OR parent_info ILIKE $1 OR original_filename ILIKE $1)`

type PostgresSubmissionRepository struct {
	db *sqlx.DB
}

func NewPostgresSubmissionRepository(db *sqlx.DB) *PostgresSubmissionRepository {
	return &PostgresSubmissionRepository{db: db}
}

// pgSubmission carries the numeric primary key alongside the shared model.
type pgSubmission struct {
	ID int64 `db:"id"`
	models.Submission
}

func (r *PostgresSubmissionRepository) Create(ctx context.Context, sub *models.Submission) (string, error) {
	query := `INSERT INTO submissions
		(child_name, parent_info, original_filename, storage_key, file_url, file_size, upload_time, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	var id int64
	err := r.db.QueryRowxContext(ctx, query,
		sub.ChildName, sub.ParentInfo, sub.OriginalFilename, sub.StorageKey,
		sub.FileURL, sub.FileSize, sub.UploadTime, sub.IPAddress,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("postgres: create submission: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (r *PostgresSubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, nil
	}
	var row pgSubmission
	query := `SELECT id, child_name, parent_info, original_filename, storage_key, file_url, file_size, upload_time, ip_address
		FROM submissions WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: find submission %s: %w", id, err)
	}
	sub := row.Submission
	sub.ID = strconv.FormatInt(row.ID, 10)
	return &sub, nil
}

func (r *PostgresSubmissionRepository) Delete(ctx context.Context, id string) error {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = $1`, n)
	if err != nil {
		return fmt.Errorf("postgres: delete submission %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: delete submission %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresSubmissionRepository) List(ctx context.Context, filter ListFilter) ([]models.Submission, error) {
	query := `SELECT id, child_name, parent_info, original_filename, storage_key, file_url, file_size, upload_time, ip_address
		FROM submissions WHERE ` + searchClause + `
		ORDER BY upload_time DESC, id DESC LIMIT $2 OFFSET $3`
	var rows []pgSubmission
	if err := r.db.SelectContext(ctx, &rows, query, searchPattern(filter.Search), filter.Limit, filter.Offset); err != nil {
		return nil, fmt.Errorf("postgres: list submissions: %w", err)
	}
	subs := make([]models.Submission, 0, len(rows))
	for _, row := range rows {
		sub := row.Submission
		sub.ID = strconv.FormatInt(row.ID, 10)
		subs = append(subs, sub)
	}
	return subs, nil
}

func (r *PostgresSubmissionRepository) Count(ctx context.Context, search string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM submissions WHERE ` + searchClause
	if err := r.db.GetContext(ctx, &count, query, searchPattern(search)); err != nil {
		return 0, fmt.Errorf("postgres: count submissions: %w", err)
	}
	return count, nil
}

func (r *PostgresSubmissionRepository) SumFileSize(ctx context.Context, search string) (int64, error) {
	var sum int64
	query := `SELECT COALESCE(SUM(file_size), 0) FROM submissions WHERE ` + searchClause
	if err := r.db.GetContext(ctx, &sum, query, searchPattern(search)); err != nil {
		return 0, fmt.Errorf("postgres: sum file sizes: %w", err)
	}
	return sum, nil
}

func (r *PostgresSubmissionRepository) ListAll(ctx context.Context) ([]models.Submission, error) {
	query := `SELECT id, child_name, parent_info, original_filename, storage_key, file_url, file_size, upload_time, ip_address
		FROM submissions ORDER BY upload_time DESC, id DESC`
	var rows []pgSubmission
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("postgres: list all submissions: %w", err)
	}
	subs := make([]models.Submission, 0, len(rows))
	for _, row := range rows {
		sub := row.Submission
		sub.ID = strconv.FormatInt(row.ID, 10)
		subs = append(subs, sub)
	}
	return subs, nil
}

type PostgresAdminRepository struct {
	db *sqlx.DB
}

func NewPostgresAdminRepository(db *sqlx.DB) *PostgresAdminRepository {
	return &PostgresAdminRepository{db: db}
}

type pgAdmin struct {
	ID int64 `db:"id"`
	models.Admin
}

func (r *PostgresAdminRepository) Create(ctx context.Context, admin *models.Admin) (string, error) {
	query := `INSERT INTO admins (username, password_hash, created_at) VALUES ($1, $2, $3) RETURNING id`
	var id int64
	err := r.db.QueryRowxContext(ctx, query, admin.Username, admin.PasswordHash, admin.CreatedAt).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("postgres: create admin: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (r *PostgresAdminRepository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var row pgAdmin
	query := `SELECT id, username, password_hash, created_at FROM admins WHERE username = $1`
	if err := r.db.GetContext(ctx, &row, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: find admin %q: %w", username, err)
	}
	admin := row.Admin
	admin.ID = strconv.FormatInt(row.ID, 10)
	return &admin, nil
}

func (r *PostgresAdminRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM admins`); err != nil {
		return 0, fmt.Errorf("postgres: count admins: %w", err)
	}
	return count, nil
}
