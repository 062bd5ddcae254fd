package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/weifish0/file-upload-sys/internal/blob"
	"github.com/weifish0/file-upload-sys/internal/models"
	"github.com/weifish0/file-upload-sys/internal/repository"
)

// ErrNotFound is returned for unknown submission ids. A second delete of an
// already-deleted id reports this too, never a harder failure.
var ErrNotFound = errors.New("submission not found")

// Page is one dashboard page over the filtered submission set. Total and
// TotalBytes aggregate the filtered set, not the whole table.
type Page struct {
	Items      []models.Submission
	Page       int
	PageSize   int
	TotalPages int
	Total      int64
	TotalBytes int64
	Search     string
}

func (p *Page) HasPrev() bool { return p.Page > 1 }
func (p *Page) HasNext() bool { return p.Page < p.TotalPages }
func (p *Page) PrevPage() int { return p.Page - 1 }
func (p *Page) NextPage() int { return p.Page + 1 }

// PageNumbers lists every page for the pagination bar; page counts stay
// small at this collection size.
func (p *Page) PageNumbers() []int {
	nums := make([]int, 0, p.TotalPages)
	for i := 1; i <= p.TotalPages; i++ {
		nums = append(nums, i)
	}
	return nums
}

type DashboardService struct {
	subs     repository.SubmissionRepository
	blobs    blob.Store
	pageSize int
}

func NewDashboardService(subs repository.SubmissionRepository, blobs blob.Store, pageSize int) *DashboardService {
	return &DashboardService{subs: subs, blobs: blobs, pageSize: pageSize}
}

// List returns one page, newest upload first. Pages are 1-indexed; a page
// beyond the last yields an empty item list, not an error.
func (s *DashboardService) List(ctx context.Context, page int, search string) (*Page, error) {
	if page < 1 {
		page = 1
	}
	search = strings.TrimSpace(search)

	total, err := s.subs.Count(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	totalBytes, err := s.subs.SumFileSize(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	items, err := s.subs.List(ctx, repository.ListFilter{
		Search: search,
		Offset: (page - 1) * s.pageSize,
		Limit:  s.pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	return &Page{
		Items:      items,
		Page:       page,
		PageSize:   s.pageSize,
		TotalPages: int((total + int64(s.pageSize) - 1) / int64(s.pageSize)),
		Total:      total,
		TotalBytes: totalBytes,
		Search:     search,
	}, nil
}

// Delete removes the record and its blob. The blob delete is best-effort:
// a storage failure is logged and does not block the record deletion.
func (s *DashboardService) Delete(ctx context.Context, id string) error {
	sub, err := s.subs.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if sub == nil {
		return ErrNotFound
	}
	if err := s.blobs.Delete(ctx, sub.StorageKey); err != nil && !errors.Is(err, blob.ErrNotFound) {
		log.Printf("Warning: delete %s: blob %q not removed: %v", id, sub.StorageKey, err)
	}
	if err := s.subs.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// Download resolves a submission to its blob bytes for single-file download.
func (s *DashboardService) Download(ctx context.Context, id string) ([]byte, *models.Submission, error) {
	sub, err := s.subs.FindByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("download %s: %w", id, err)
	}
	if sub == nil {
		return nil, nil, ErrNotFound
	}
	data, err := s.blobs.Get(ctx, sub.StorageKey)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("download %s: %w", id, err)
	}
	return data, sub, nil
}
