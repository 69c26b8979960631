package models

import "time"

// Download is the persisted counter document for a downloadable file.
type Download struct {
	ID         string    `json:"id"`
	DownloadID string    `json:"downloadId"`
	Path       string    `json:"path"`
	Count      int       `json:"count"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
