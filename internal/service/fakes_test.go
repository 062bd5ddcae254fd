package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/weifish0/file-upload-sys/internal/blob"
	"github.com/weifish0/file-upload-sys/internal/models"
	"github.com/weifish0/file-upload-sys/internal/repository"
)

// fakeSubRepo is an in-memory SubmissionRepository for service tests.
type fakeSubRepo struct {
	nextID    int
	subs      []models.Submission
	createErr error
}

func (f *fakeSubRepo) Create(_ context.Context, sub *models.Submission) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	s := *sub
	s.ID = strconv.Itoa(f.nextID)
	f.subs = append(f.subs, s)
	return s.ID, nil
}

func (f *fakeSubRepo) FindByID(_ context.Context, id string) (*models.Submission, error) {
	for i := range f.subs {
		if f.subs[i].ID == id {
			s := f.subs[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeSubRepo) Delete(_ context.Context, id string) error {
	for i := range f.subs {
		if f.subs[i].ID == id {
			f.subs = append(f.subs[:i], f.subs[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeSubRepo) filtered(search string) []models.Submission {
	term := strings.ToLower(search)
	out := make([]models.Submission, 0, len(f.subs))
	for _, s := range f.subs {
		if term == "" ||
			strings.Contains(strings.ToLower(s.ChildName), term) ||
			strings.Contains(strings.ToLower(s.ParentInfo), term) ||
			strings.Contains(strings.ToLower(s.OriginalFilename), term) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UploadTime.After(out[j].UploadTime)
	})
	return out
}

func (f *fakeSubRepo) List(_ context.Context, filter repository.ListFilter) ([]models.Submission, error) {
	subs := f.filtered(filter.Search)
	if filter.Offset >= len(subs) {
		return []models.Submission{}, nil
	}
	end := len(subs)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return subs[filter.Offset:end], nil
}

func (f *fakeSubRepo) Count(_ context.Context, search string) (int64, error) {
	return int64(len(f.filtered(search))), nil
}

func (f *fakeSubRepo) SumFileSize(_ context.Context, search string) (int64, error) {
	var sum int64
	for _, s := range f.filtered(search) {
		sum += s.FileSize
	}
	return sum, nil
}

func (f *fakeSubRepo) ListAll(_ context.Context) ([]models.Submission, error) {
	return f.filtered(""), nil
}

// fakeAdminRepo is an in-memory AdminRepository.
type fakeAdminRepo struct {
	nextID int
	admins []models.Admin
}

func (f *fakeAdminRepo) Create(_ context.Context, admin *models.Admin) (string, error) {
	f.nextID++
	a := *admin
	a.ID = strconv.Itoa(f.nextID)
	f.admins = append(f.admins, a)
	return a.ID, nil
}

func (f *fakeAdminRepo) FindByUsername(_ context.Context, username string) (*models.Admin, error) {
	for i := range f.admins {
		if f.admins[i].Username == username {
			a := f.admins[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeAdminRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.admins)), nil
}

// fakeBlob is an in-memory blob.Store. Keys in failGet make Get fail, keys in
// failPut make Put fail.
type fakeBlob struct {
	objects map[string][]byte
	public  string
	failGet map[string]bool
	failPut bool
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{objects: map[string][]byte{}, failGet: map[string]bool{}}
}

func (f *fakeBlob) Put(_ context.Context, key string, data []byte, _, _ string) error {
	if f.failPut {
		return errors.New("storage unavailable")
	}
	f.objects[key] = append([]byte(nil), data...)
	return nil
}

func (f *fakeBlob) Get(_ context.Context, key string) ([]byte, error) {
	if f.failGet[key] {
		return nil, errors.New("storage unavailable")
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return data, nil
}

func (f *fakeBlob) Delete(_ context.Context, key string) error {
	if _, ok := f.objects[key]; !ok {
		return blob.ErrNotFound
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeBlob) PublicURL(key string) string {
	if f.public == "" {
		return ""
	}
	return f.public + "/" + key
}
