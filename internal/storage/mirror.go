package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	storage_go "github.com/supabase-community/storage-go"
)

// Mirror uploads a copy of each photo to cloud object storage. It is
// always an optional secondary: a mirror failure must never abort an
// otherwise-successful upload, which is the caller's contract to keep.
type Mirror struct {
	client  *storage_go.Client
	bucket  string
	baseURL string
	folder  string
}

func NewMirror(supabaseURL, serviceKey, bucket string) (*Mirror, error) {
	if supabaseURL == "" || serviceKey == "" {
		return nil, fmt.Errorf("mirror requires url and key")
	}

	baseURL := supabaseURL
	if len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	client := storage_go.NewClient(baseURL+"/storage/v1", serviceKey, nil)

	return &Mirror{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
		folder:  "entradas",
	}, nil
}

// Store uploads the bytes and returns the public URL plus the storage path
// needed for a later removal. Transient failures are retried with backoff.
func (m *Mirror) Store(ctx context.Context, name string, data []byte) (string, string, error) {
	storagePath := fmt.Sprintf("%s/%s.jpg", m.folder, name)

	contentType := "image/jpeg"
	upsert := true
	err := retryWithBackoff(ctx, func() error {
		_, err := m.client.UploadFile(m.bucket, storagePath, bytes.NewReader(data), storage_go.FileOptions{
			ContentType: &contentType,
			Upsert:      &upsert,
		})
		return err
	}, 3)
	if err != nil {
		return "", "", fmt.Errorf("failed to upload to mirror: %w", err)
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", m.baseURL, m.bucket, storagePath)
	return publicURL, storagePath, nil
}

// Remove deletes a mirrored object by its storage path.
func (m *Mirror) Remove(ctx context.Context, storagePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := m.client.RemoveFile(m.bucket, []string{storagePath})
	if err != nil {
		return fmt.Errorf("failed to remove mirrored file %s: %w", storagePath, err)
	}
	return nil
}

// PublicURL rebuilds the browser-accessible URL for a storage path.
func (m *Mirror) PublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", m.baseURL, m.bucket, storagePath)
}

func retryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error {
	backoffs := []time.Duration{500 * time.Millisecond, 1 * time.Second, 2 * time.Second}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if i < len(backoffs) && i < maxRetries-1 {
			select {
			case <-time.After(backoffs[i]):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}
