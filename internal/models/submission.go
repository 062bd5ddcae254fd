package models

import "time"

// Submission is one uploaded file plus the form metadata it arrived with.
// StorageKey is the backend locator for the blob and is never shown to end
// users; OriginalFilename is preserved exactly (including non-ASCII) for
// display and download. FileURL is set only when the blob backend serves
// objects directly.
type Submission struct {
	ID               string    `json:"id" db:"-" bson:"-"`
	ChildName        string    `json:"child_name" db:"child_name" bson:"child_name"`
	ParentInfo       string    `json:"parent_info" db:"parent_info" bson:"parent_info"`
	OriginalFilename string    `json:"original_filename" db:"original_filename" bson:"original_filename"`
	StorageKey       string    `json:"-" db:"storage_key" bson:"storage_key"`
	FileURL          string    `json:"file_url" db:"file_url" bson:"file_url"`
	FileSize         int64     `json:"file_size" db:"file_size" bson:"file_size"`
	UploadTime       time.Time `json:"upload_time" db:"upload_time" bson:"upload_time"`
	IPAddress        string    `json:"ip_address" db:"ip_address" bson:"ip_address"`
}
