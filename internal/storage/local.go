package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// LocalBackend writes photo bytes to a directory on the server's disk.
// The locator is the absolute file path.
type LocalBackend struct {
	dir string
}

// NewLocalBackend prepares the storage directory. If the configured
// directory cannot be created, it falls back once to fallbackDir; the
// decision is made here, at startup, not per request.
func NewLocalBackend(dir, fallbackDir string) (*LocalBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("Warning: cannot create storage directory %s: %v, falling back to %s", dir, err, fallbackDir)
		dir = fallbackDir
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create fallback storage directory: %w", err)
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}

	return &LocalBackend{dir: abs}, nil
}

func (b *LocalBackend) Store(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(b.dir, name+".jpg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}

func (b *LocalBackend) Retrieve(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(locator)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", locator, err)
	}

	return data, nil
}

func (b *LocalBackend) Remove(ctx context.Context, locator string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(locator); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", locator, err)
	}
	return nil
}

func (b *LocalBackend) Name() string { return "local" }

// Dir returns the resolved storage directory.
func (b *LocalBackend) Dir() string { return b.dir }
