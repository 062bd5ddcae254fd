package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"path"
	"strconv"
	"strings"
	"unicode"

	"github.com/weifish0/file-upload-sys/internal/blob"
	"github.com/weifish0/file-upload-sys/internal/repository"
)

// csvHeader is fixed and always written, even with zero submissions.
var csvHeader = []string{"Child Name", "Parent Info", "Filename", "File Size", "Upload Time", "IP Address"}

type ExportService struct {
	subs  repository.SubmissionRepository
	blobs blob.Store
}

func NewExportService(subs repository.SubmissionRepository, blobs blob.Store) *ExportService {
	return &ExportService{subs: subs, blobs: blobs}
}

// CSV serializes every submission, newest first.
func (s *ExportService) CSV(ctx context.Context) ([]byte, error) {
	subs, err := s.subs.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("export csv: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("export csv: %w", err)
	}
	for i := range subs {
		sub := &subs[i]
		row := []string{
			sub.ChildName,
			sub.ParentInfo,
			sub.OriginalFilename,
			HumanSize(sub.FileSize),
			sub.UploadTime.Format("2006-01-02 15:04:05"),
			sub.IPAddress,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("export csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ZIP bundles every referenced blob into one archive. Entry names are
// "{sanitized child name}_{original filename}"; repeats get _1, _2, ...
// before the extension, deterministic by iteration order. A blob that
// cannot be fetched becomes an ERROR_*.txt placeholder instead of aborting
// the whole archive.
func (s *ExportService) ZIP(ctx context.Context) ([]byte, error) {
	subs, err := s.subs.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("export zip: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	seen := make(map[string]int)

	for i := range subs {
		sub := &subs[i]
		name := sanitizeChildName(sub.ChildName) + "_" + sub.OriginalFilename
		name = dedupeEntryName(seen, name)

		data, err := s.blobs.Get(ctx, sub.StorageKey)
		if err != nil {
			log.Printf("Warning: export zip: fetch %q: %v", sub.StorageKey, err)
			placeholder := fmt.Sprintf("Download failed: %v\n", err)
			f, werr := zw.Create("ERROR_" + name + ".txt")
			if werr != nil {
				return nil, fmt.Errorf("export zip: %w", werr)
			}
			if _, werr := f.Write([]byte(placeholder)); werr != nil {
				return nil, fmt.Errorf("export zip: %w", werr)
			}
			continue
		}

		f, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("export zip: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			return nil, fmt.Errorf("export zip: %w", err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("export zip: %w", err)
	}
	return buf.Bytes(), nil
}

// dedupeEntryName returns name unchanged on first sight; collisions get an
// incrementing numeric suffix before the extension.
func dedupeEntryName(seen map[string]int, name string) string {
	n, dup := seen[name]
	if !dup {
		seen[name] = 0
		return name
	}
	seen[name] = n + 1
	ext := path.Ext(name)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n+1, ext)
}

// sanitizeChildName keeps letters, digits, spaces, dashes and underscores
// (Unicode-aware: CJK names survive).
func sanitizeChildName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// HumanSize renders a byte count with the first unit that brings the value
// under 1024, two decimal places.
func HumanSize(n int64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024.0 {
			return strconv.FormatFloat(size, 'f', 2, 64) + " " + unit
		}
		size /= 1024.0
	}
	return strconv.FormatFloat(size, 'f', 2, 64) + " TB"
}
