package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/weifish0/file-upload-sys/internal/blob"
	"github.com/weifish0/file-upload-sys/internal/models"
	"github.com/weifish0/file-upload-sys/internal/repository"
)

// Validation failures surface to the user as flash messages; nothing is
// persisted when one is returned.
var (
	ErrChildNameRequired = errors.New("child name is required")
	ErrNoFiles           = errors.New("no file attached")
)

// allowedExtensions is the canonical allow-list (the wider of the two
// historical variants; see DESIGN.md).
var allowedExtensions = map[string]bool{
	"pdf": true, "doc": true, "docx": true, "xls": true, "xlsx": true,
	"ppt": true, "pptx": true, "txt": true, "jpg": true, "jpeg": true,
	"png": true, "gif": true, "zip": true, "rar": true,
}

// UploadedFile is one file received from the multipart form, fully read so
// the size recorded is the size stored, not a client header.
type UploadedFile struct {
	Name        string
	Data        []byte
	ContentType string
}

type SubmitInput struct {
	ChildName  string `validate:"required"`
	ParentInfo string
	Files      []UploadedFile `validate:"required,min=1"`
}

// SubmitResult reports per-file outcomes; a file failing validation or
// storage never aborts the rest of the batch.
type SubmitResult struct {
	Succeeded int
	Failed    int
}

func (r *SubmitResult) AllFailed() bool { return r.Succeeded == 0 }

type SubmissionService struct {
	subs     repository.SubmissionRepository
	blobs    blob.Store
	validate *validator.Validate
}

func NewSubmissionService(subs repository.SubmissionRepository, blobs blob.Store) *SubmissionService {
	return &SubmissionService{
		subs:     subs,
		blobs:    blobs,
		validate: validator.New(),
	}
}

// Submit validates the form, stores each allowed file as a blob and writes
// one submission record per stored file. The blob write and the record
// write are not transactional: a crash in between can orphan a blob, but a
// record never points at a missing blob in normal operation.
func (s *SubmissionService) Submit(ctx context.Context, in SubmitInput, ip string) (*SubmitResult, error) {
	in.ChildName = strings.TrimSpace(in.ChildName)
	in.ParentInfo = strings.TrimSpace(in.ParentInfo)

	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			if verrs[0].Field() == "ChildName" {
				return nil, ErrChildNameRequired
			}
			return nil, ErrNoFiles
		}
		return nil, fmt.Errorf("submit: validate: %w", err)
	}

	result := &SubmitResult{}
	for _, f := range in.Files {
		original := baseName(f.Name)
		if original == "" || !ExtensionAllowed(original) {
			result.Failed++
			continue
		}

		key := buildStorageKey(time.Now(), original)
		contentType := f.ContentType
		if contentType == "" {
			contentType = detectContentType(original)
		}

		if err := s.blobs.Put(ctx, key, f.Data, contentType, original); err != nil {
			log.Printf("submit: store blob %q: %v", key, err)
			result.Failed++
			continue
		}

		sub := &models.Submission{
			ChildName:        in.ChildName,
			ParentInfo:       in.ParentInfo,
			OriginalFilename: original,
			StorageKey:       key,
			FileURL:          s.blobs.PublicURL(key),
			FileSize:         int64(len(f.Data)),
			UploadTime:       time.Now().UTC(),
			IPAddress:        ip,
		}
		if _, err := s.subs.Create(ctx, sub); err != nil {
			// The blob is already durable; an orphan is acceptable here.
			log.Printf("Warning: submit: record for blob %q not written: %v", key, err)
			result.Failed++
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

// ExtensionAllowed checks the filename extension against the allow-list.
func ExtensionAllowed(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	return ext != "" && allowedExtensions[ext]
}

// baseName strips any client-supplied directory components.
func baseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeFilename reduces a filename to characters safe for any storage
// backend. Names that sanitize away entirely (e.g. fully CJK) fall back to
// "file" plus the sanitized extension; the unmodified original is kept on
// the record for display and download.
func sanitizeFilename(name string) string {
	ext := strings.ToLower(unsafeChars.ReplaceAllString(path.Ext(name), ""))
	if ext == "." {
		ext = ""
	}
	stem := strings.TrimSuffix(name, path.Ext(name))
	stem = unsafeChars.ReplaceAllString(stem, "")
	stem = strings.Trim(stem, "._-")
	if stem == "" {
		stem = "file"
	}
	return stem + ext
}

// buildStorageKey produces a collision-resistant locator:
// uploads/{timestamp}_{4-char-suffix}_{sanitized-name}. Keys are never
// reused; the random suffix keeps same-second uploads distinct.
func buildStorageKey(t time.Time, original string) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:4]
	return fmt.Sprintf("uploads/%s_%s_%s", t.Format("20060102_150405"), suffix, sanitizeFilename(original))
}

func detectContentType(fileName string) string {
	types := map[string]string{
		".pdf":  "application/pdf",
		".doc":  "application/msword",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".xls":  "application/vnd.ms-excel",
		".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		".ppt":  "application/vnd.ms-powerpoint",
		".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		".txt":  "text/plain",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".zip":  "application/zip",
		".rar":  "application/vnd.rar",
	}
	if ct, ok := types[strings.ToLower(path.Ext(fileName))]; ok {
		return ct
	}
	return "application/octet-stream"
}
