package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"entradas-backend/internal/events"
	"entradas-backend/internal/imageproc"
	"entradas-backend/internal/models"
	"entradas-backend/internal/storage"
)

var (
	ErrInvalidTier  = errors.New("invalid entry tier")
	ErrNotFound     = errors.New("photo not found")
	ErrUnauthorized = errors.New("wrong delete password")
	ErrInvalidPrice = errors.New("price must be zero or positive")
)

// Store is the metadata store the coordinator writes photo records and
// reads prices from. Implemented by database.Client; faked in tests.
type Store interface {
	InsertPhoto(ctx context.Context, p *models.Photo) (*models.Photo, error)
	PhotoByID(ctx context.Context, id int64) (*models.Photo, error)
	PhotoByFilename(ctx context.Context, filename string) (*models.Photo, error)
	ListPhotos(ctx context.Context, offset, limit int) ([]models.Photo, error)
	ListPhotosByTier(ctx context.Context, tier models.Tier) ([]models.Photo, error)
	CountPhotos(ctx context.Context) (int64, error)
	DeletePhoto(ctx context.Context, id int64) (bool, error)
	DeleteAllPhotos(ctx context.Context) (int64, error)
	Price(ctx context.Context, tier models.Tier) (float64, error)
	ListPrices(ctx context.Context) ([]models.PriceEntry, error)
	UpdatePrice(ctx context.Context, tier models.Tier, amount float64) error
	Stats(ctx context.Context) (*models.Stats, error)
}

// MirrorBackend is the optional secondary store. Satisfied by
// storage.Mirror.
type MirrorBackend interface {
	Store(ctx context.Context, name string, data []byte) (url, path string, err error)
	Remove(ctx context.Context, path string) error
}

// Image is the result of a retrieval. Either Data is set and the bytes are
// served directly, or RedirectURL points at the mirrored copy.
type Image struct {
	Data        []byte
	ContentType string
	RedirectURL string
}

// Page is the pagination metadata returned alongside a gallery slice.
type Page struct {
	CurrentPage int
	TotalPages  int
	Total       int64
	PerPage     int
	HasNext     bool
	HasPrev     bool
}

// Coordinator runs the photo ingestion pipeline: validate and compress the
// upload, snapshot the tier price, write bytes to the primary backend,
// best-effort mirror them, then persist the metadata row. Retrieval walks
// the same locators in reverse with fallback.
type Coordinator struct {
	store          Store
	primary        storage.Backend
	mirror         MirrorBackend
	processor      *imageproc.Processor
	publisher      *events.Publisher
	deleteSecret   string
	storageTimeout time.Duration
}

func NewCoordinator(
	store Store,
	primary storage.Backend,
	mirror MirrorBackend,
	processor *imageproc.Processor,
	publisher *events.Publisher,
	deleteSecret string,
	storageTimeout time.Duration,
) *Coordinator {
	if storageTimeout <= 0 {
		storageTimeout = 30 * time.Second
	}
	return &Coordinator{
		store:          store,
		primary:        primary,
		mirror:         mirror,
		processor:      processor,
		publisher:      publisher,
		deleteSecret:   deleteSecret,
		storageTimeout: storageTimeout,
	}
}

// PrimaryName identifies the configured primary backend.
func (c *Coordinator) PrimaryName() string { return c.primary.Name() }

// MirrorConfigured reports whether a mirror backend is wired in.
func (c *Coordinator) MirrorConfigured() bool { return c.mirror != nil }

// Ingest validates the upload, stores it and persists the metadata row.
// The returned record carries the price snapshotted at this moment; later
// price changes never alter it. A mirror failure is logged and swallowed;
// a primary failure aborts with no record created.
func (c *Coordinator) Ingest(ctx context.Context, data []byte, tierStr string) (*models.Photo, error) {
	tier, err := models.ParseTier(tierStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTier, tierStr)
	}

	processed, err := c.processor.Process(data)
	if err != nil {
		return nil, err
	}

	price, err := c.store.Price(ctx, tier)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up price: %w", err)
	}

	filename := fmt.Sprintf("%s_%d", tier, time.Now().UnixNano())

	storeCtx, cancel := context.WithTimeout(ctx, c.storageTimeout)
	locator, err := c.primary.Store(storeCtx, filename, processed)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("primary storage failed: %w", err)
	}

	photo := &models.Photo{
		Tier:           tier,
		Filename:       filename,
		PrimaryLocator: locator,
		Price:          price,
	}

	if c.mirror != nil {
		mirrorCtx, cancel := context.WithTimeout(ctx, c.storageTimeout)
		mirrorURL, mirrorPath, err := c.mirror.Store(mirrorCtx, filename, processed)
		cancel()
		if err != nil {
			log.Printf("Warning: mirror upload failed for %s: %v", filename, err)
		} else {
			photo.MirrorURL = sql.NullString{String: mirrorURL, Valid: true}
			photo.MirrorPath = sql.NullString{String: mirrorPath, Valid: true}
		}
	}

	record, err := c.store.InsertPhoto(ctx, photo)
	if err != nil {
		// The stored bytes are orphaned here. No automatic rollback of
		// storage; the gap is accepted and logged.
		log.Printf("Error: metadata insert failed after storing %s at %s: %v", filename, locator, err)
		return nil, fmt.Errorf("failed to persist photo record: %w", err)
	}

	if c.publisher != nil {
		if err := c.publisher.PublishPhotoEvent("photo_uploaded",
			events.PhotoUploadedPayload(record.ID, string(record.Tier), record.Price)); err != nil {
			log.Printf("Warning: failed to publish upload event: %v", err)
		}
	}

	return record, nil
}

// Retrieve resolves a photo by filename and fetches its bytes from the
// primary backend, falling back to a redirect to the mirrored copy when
// the primary is unavailable.
func (c *Coordinator) Retrieve(ctx context.Context, filename string) (*Image, error) {
	photo, err := c.store.PhotoByFilename(ctx, filename)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up photo: %w", err)
	}

	storeCtx, cancel := context.WithTimeout(ctx, c.storageTimeout)
	data, err := c.primary.Retrieve(storeCtx, photo.PrimaryLocator)
	cancel()
	if err == nil {
		return &Image{Data: data, ContentType: "image/jpeg"}, nil
	}

	log.Printf("Warning: primary retrieval failed for %s: %v", filename, err)
	if photo.MirrorURL.Valid {
		return &Image{RedirectURL: photo.MirrorURL.String}, nil
	}

	return nil, ErrNotFound
}

// ListPaginated returns one gallery page, newest first. Pages are 1-based;
// a page past the end yields an empty slice with correct metadata.
func (c *Coordinator) ListPaginated(ctx context.Context, page, pageSize int) ([]models.Photo, *Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 12
	}

	total, err := c.store.CountPhotos(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count photos: %w", err)
	}

	photos, err := c.store.ListPhotos(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list photos: %w", err)
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))
	info := &Page{
		CurrentPage: page,
		TotalPages:  totalPages,
		Total:       total,
		PerPage:     pageSize,
		HasNext:     page < totalPages,
		HasPrev:     page > 1 && total > 0,
	}

	return photos, info, nil
}

// ListByTier returns every photo of one tier, unpaginated, newest first.
func (c *Coordinator) ListByTier(ctx context.Context, tierStr string) ([]models.Photo, error) {
	tier, err := models.ParseTier(tierStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTier, tierStr)
	}
	return c.store.ListPhotosByTier(ctx, tier)
}

// DeleteOne removes the metadata row, then best-effort removes the bytes
// from every backend holding a locator. Byte removal failures are logged
// and do not undo the metadata deletion.
func (c *Coordinator) DeleteOne(ctx context.Context, id int64) error {
	photo, err := c.store.PhotoByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to look up photo: %w", err)
	}

	deleted, err := c.store.DeletePhoto(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}

	storeCtx, cancel := context.WithTimeout(ctx, c.storageTimeout)
	defer cancel()

	if err := c.primary.Remove(storeCtx, photo.PrimaryLocator); err != nil {
		log.Printf("Warning: failed to remove %s from primary storage: %v", photo.Filename, err)
	}
	if c.mirror != nil && photo.MirrorPath.Valid {
		if err := c.mirror.Remove(storeCtx, photo.MirrorPath.String); err != nil {
			log.Printf("Warning: failed to remove %s from mirror: %v", photo.Filename, err)
		}
	}

	if c.publisher != nil {
		if err := c.publisher.PublishPhotoEvent("photo_deleted", events.PhotoDeletedPayload(id)); err != nil {
			log.Printf("Warning: failed to publish delete event: %v", err)
		}
	}

	return nil
}

// DeleteAll purges every metadata row after an exact secret match. Stored
// bytes are left behind on all backends; only metadata is removed, which
// mirrors the system this replaces.
func (c *Coordinator) DeleteAll(ctx context.Context, suppliedSecret string) (int64, error) {
	if suppliedSecret != c.deleteSecret {
		return 0, ErrUnauthorized
	}

	count, err := c.store.DeleteAllPhotos(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete all photos: %w", err)
	}

	if c.publisher != nil {
		if err := c.publisher.PublishPhotoEvent("photos_purged", events.PhotosPurgedPayload(count)); err != nil {
			log.Printf("Warning: failed to publish purge event: %v", err)
		}
	}

	return count, nil
}

// ListPrices returns the current price per tier.
func (c *Coordinator) ListPrices(ctx context.Context) ([]models.PriceEntry, error) {
	return c.store.ListPrices(ctx)
}

// SetPrice updates the current price for a tier. Existing photo records
// keep the price they were uploaded with.
func (c *Coordinator) SetPrice(ctx context.Context, tierStr string, amount float64) error {
	tier, err := models.ParseTier(tierStr)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTier, tierStr)
	}
	if amount < 0 {
		return ErrInvalidPrice
	}

	if err := c.store.UpdatePrice(ctx, tier, amount); err != nil {
		return err
	}

	if c.publisher != nil {
		if err := c.publisher.PublishPhotoEvent("price_updated", events.PriceUpdatedPayload(string(tier), amount)); err != nil {
			log.Printf("Warning: failed to publish price event: %v", err)
		}
	}

	return nil
}

// Stats returns the read-side aggregates for the admin dashboard.
func (c *Coordinator) Stats(ctx context.Context) (*models.Stats, error) {
	return c.store.Stats(ctx)
}
