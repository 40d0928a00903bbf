// Package storage provides the object store client used for file bytes.
// It speaks the Supabase storage REST surface with a service key.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"note-agent-be/pkg/agent/tool"
)

type SupabaseStorage struct {
	BaseURL    string
	ServiceKey string
	Client     *http.Client
}

// Ensure SupabaseStorage implements ObjectStorage
var _ tool.ObjectStorage = &SupabaseStorage{}

func NewSupabaseStorage(baseURL, serviceKey string) *SupabaseStorage {
	return &SupabaseStorage{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		ServiceKey: serviceKey,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (s *SupabaseStorage) objectURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.BaseURL, bucket, strings.TrimLeft(path, "/"))
}

func (s *SupabaseStorage) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.objectURL(bucket, path), nil)
	if err != nil {
		return nil, &tool.StorageError{Op: "download", Path: path, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+s.ServiceKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, &tool.StorageError{Op: "download", Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &tool.StorageError{Op: "download", Path: path, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &tool.StorageError{
			Op:   "download",
			Path: path,
			Err:  fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body)),
		}
	}
	return body, nil
}

// Upload writes the object, replacing any existing content at the path.
func (s *SupabaseStorage) Upload(ctx context.Context, bucket, path string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(bucket, path), bytes.NewReader(data))
	if err != nil {
		return &tool.StorageError{Op: "upload", Path: path, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+s.ServiceKey)
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("x-upsert", "true")

	resp, err := s.Client.Do(req)
	if err != nil {
		return &tool.StorageError{Op: "upload", Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &tool.StorageError{
			Op:   "upload",
			Path: path,
			Err:  fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body)),
		}
	}
	return nil
}
