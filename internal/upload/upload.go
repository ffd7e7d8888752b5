// Package upload stores credential documents with an external media service
// and hands back durable URLs for verification responses.
package upload

import (
	"context"
	"time"
)

// Result describes a stored document.
type Result struct {
	URL       string    `json:"url"`
	PublicID  string    `json:"public_id"`
	Bytes     int64     `json:"bytes"`
	Format    string    `json:"format"`
	CreatedAt time.Time `json:"created_at"`
}

// Uploader stores raw document bytes under a folder/filename pair.
type Uploader interface {
	Upload(ctx context.Context, data []byte, folder, filename string) (*Result, error)
}
