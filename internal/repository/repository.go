// Package repository defines the persistence capability interfaces and their
// two interchangeable implementations: Postgres (server-side pagination and
// aggregation) and MongoDB (client-side, full-collection fallback).
package repository

import (
	"context"
	"errors"

	"github.com/weifish0/file-upload-sys/internal/models"
)

// ErrNotFound is returned by Delete when no record matched the id.
var ErrNotFound = errors.New("record not found")

// ListFilter narrows and pages a submission listing. Search is a
// case-insensitive substring matched against child name, parent info and
// original filename. Ordering is always newest upload first.
type ListFilter struct {
	Search string
	Offset int
	Limit  int
}

type SubmissionRepository interface {
	Create(ctx context.Context, sub *models.Submission) (string, error)
	// FindByID returns (nil, nil) when the id does not exist.
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]models.Submission, error)
	Count(ctx context.Context, search string) (int64, error)
	SumFileSize(ctx context.Context, search string) (int64, error)
	// ListAll returns every submission newest-first (export paths).
	ListAll(ctx context.Context) ([]models.Submission, error)
}

type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) (string, error)
	// FindByUsername is a case-sensitive exact match; (nil, nil) when absent.
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	Count(ctx context.Context) (int64, error)
}
