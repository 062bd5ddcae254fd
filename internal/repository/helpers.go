package repository

import (
	"strings"

	"github.com/weifish0/file-upload-sys/internal/models"
)

// matchesSearch reports whether term (already lowercased) appears in the
// child name, parent info or original filename. Used by the Mongo backend,
// which filters in memory; the Postgres backend expresses the same predicate
// in SQL.
func matchesSearch(sub *models.Submission, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(sub.ChildName), term) ||
		strings.Contains(strings.ToLower(sub.ParentInfo), term) ||
		strings.Contains(strings.ToLower(sub.OriginalFilename), term)
}

// pageSlice applies offset/limit to an already-filtered, already-ordered
// slice. Out-of-range offsets yield an empty slice, not an error.
func pageSlice(subs []models.Submission, offset, limit int) []models.Submission {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(subs) {
		return []models.Submission{}
	}
	end := len(subs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return subs[offset:end]
}
