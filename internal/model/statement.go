package model

import "time"

// Statement is a financial-statement document. The bytes live in object
// storage under StoragePath; this record holds the metadata.
type Statement struct {
	ID          string    `json:"id"`
	Year        int       `json:"year"`
	Title       string    `json:"title"`
	StoragePath string    `json:"storage_path,omitempty"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// PublicStatement is the listing shape for the public page. It omits the storage path.
type PublicStatement struct {
	ID        string    `json:"id"`
	Year      int       `json:"year"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Public strips storage details.
func (s Statement) Public() PublicStatement {
	return PublicStatement{ID: s.ID, Year: s.Year, Title: s.Title, CreatedAt: s.CreatedAt}
}
