package upload

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// InMemoryUploader keeps uploads in memory for tests and demos.
type InMemoryUploader struct {
	mu    sync.Mutex
	files map[string][]byte
	seq   int

	// FailWith, when set, is returned by every Upload call.
	FailWith error
}

var _ Uploader = (*InMemoryUploader)(nil)

func NewInMemoryUploader() *InMemoryUploader {
	return &InMemoryUploader{files: make(map[string][]byte)}
}

func (u *InMemoryUploader) Upload(_ context.Context, data []byte, folder, filename string) (*Result, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.FailWith != nil {
		return nil, u.FailWith
	}

	u.seq++
	publicID := fmt.Sprintf("%s/%s-%d", folder, filename, u.seq)
	u.files[publicID] = data

	return &Result{
		URL:       "memory://" + publicID,
		PublicID:  publicID,
		Bytes:     int64(len(data)),
		CreatedAt: time.Now(),
	}, nil
}

// Stored returns the bytes saved under a public ID, for assertions.
func (u *InMemoryUploader) Stored(publicID string) ([]byte, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	data, ok := u.files[publicID]
	return data, ok
}
