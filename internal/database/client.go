package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"entradas-backend/internal/models"
)

// Client wraps the Postgres connection holding photo metadata and prices.
type Client struct {
	db *sql.DB
}

func NewClient(connectionString string) (*Client, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{db: db}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) Close() error {
	return c.db.Close()
}

const photoColumns = "id, tier, filename, primary_locator, mirror_url, mirror_path, price, captured_at"

func scanPhoto(row interface{ Scan(...any) error }) (*models.Photo, error) {
	var p models.Photo
	err := row.Scan(
		&p.ID, &p.Tier, &p.Filename, &p.PrimaryLocator,
		&p.MirrorURL, &p.MirrorPath, &p.Price, &p.CapturedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// InsertPhoto creates the metadata row for a stored photo and returns it
// with the assigned id and capture timestamp.
func (c *Client) InsertPhoto(ctx context.Context, p *models.Photo) (*models.Photo, error) {
	row := c.db.QueryRowContext(ctx, `
		INSERT INTO photos (tier, filename, primary_locator, mirror_url, mirror_path, price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+photoColumns,
		p.Tier, p.Filename, p.PrimaryLocator, p.MirrorURL, p.MirrorPath, p.Price)

	photo, err := scanPhoto(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert photo: %w", err)
	}
	return photo, nil
}

func (c *Client) PhotoByID(ctx context.Context, id int64) (*models.Photo, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT `+photoColumns+` FROM photos WHERE id = $1`, id)

	photo, err := scanPhoto(row)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return photo, nil
}

func (c *Client) PhotoByFilename(ctx context.Context, filename string) (*models.Photo, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT `+photoColumns+` FROM photos WHERE filename = $1`, filename)

	photo, err := scanPhoto(row)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return photo, nil
}

// ListPhotos returns one gallery page ordered newest first. The timestamp
// carries millisecond precision; id breaks the rare tie.
func (c *Client) ListPhotos(ctx context.Context, offset, limit int) ([]models.Photo, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT `+photoColumns+` FROM photos
		ORDER BY captured_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	return collectPhotos(rows)
}

func (c *Client) ListPhotosByTier(ctx context.Context, tier models.Tier) ([]models.Photo, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT `+photoColumns+` FROM photos
		WHERE tier = $1
		ORDER BY captured_at DESC, id DESC`, tier)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos by tier: %w", err)
	}
	defer rows.Close()

	return collectPhotos(rows)
}

func collectPhotos(rows *sql.Rows) ([]models.Photo, error) {
	photos := make([]models.Photo, 0)
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, *photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read photos: %w", err)
	}
	return photos, nil
}

func (c *Client) CountPhotos(ctx context.Context) (int64, error) {
	var count int64
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM photos`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}
	return count, nil
}

// DeletePhoto removes one metadata row. It reports whether a row existed.
func (c *Client) DeletePhoto(ctx context.Context, id int64) (bool, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete photo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected > 0, nil
}

// DeleteAllPhotos purges every metadata row and returns how many were
// removed. Stored bytes are intentionally left in place.
func (c *Client) DeleteAllPhotos(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM photos`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete photos: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected, nil
}

func (c *Client) Price(ctx context.Context, tier models.Tier) (float64, error) {
	var amount float64
	err := c.db.QueryRowContext(ctx, `SELECT amount FROM prices WHERE tier = $1`, tier).Scan(&amount)
	if err == sql.ErrNoRows {
		return 0, err
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get price: %w", err)
	}
	return amount, nil
}

func (c *Client) ListPrices(ctx context.Context) ([]models.PriceEntry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT tier, amount, updated_at FROM prices ORDER BY tier`)
	if err != nil {
		return nil, fmt.Errorf("failed to list prices: %w", err)
	}
	defer rows.Close()

	entries := make([]models.PriceEntry, 0)
	for rows.Next() {
		var e models.PriceEntry
		if err := rows.Scan(&e.Tier, &e.Amount, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read prices: %w", err)
	}
	return entries, nil
}

func (c *Client) UpdatePrice(ctx context.Context, tier models.Tier, amount float64) error {
	_, err := c.db.ExecContext(ctx, `
		UPDATE prices SET amount = $1, updated_at = NOW() WHERE tier = $2`, amount, tier)
	if err != nil {
		return fmt.Errorf("failed to update price: %w", err)
	}
	return nil
}

// Stats aggregates count and revenue per tier, overall and for the
// server's current calendar date.
func (c *Client) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats

	queries := []struct {
		dest  *models.TierStats
		query string
		args  []any
	}{
		{&stats.General, `SELECT COUNT(*), COALESCE(SUM(price), 0) FROM photos WHERE tier = $1`, []any{models.TierGeneral}},
		{&stats.VIP, `SELECT COUNT(*), COALESCE(SUM(price), 0) FROM photos WHERE tier = $1`, []any{models.TierVIP}},
		{&stats.Total, `SELECT COUNT(*), COALESCE(SUM(price), 0) FROM photos`, nil},
		{&stats.Today, `SELECT COUNT(*), COALESCE(SUM(price), 0) FROM photos WHERE captured_at::date = CURRENT_DATE`, nil},
	}

	for _, q := range queries {
		if err := c.db.QueryRowContext(ctx, q.query, q.args...).Scan(&q.dest.Count, &q.dest.Total); err != nil {
			return nil, fmt.Errorf("failed to aggregate stats: %w", err)
		}
	}

	return &stats, nil
}
