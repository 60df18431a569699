package handlers_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"image"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entradas-backend/internal/handlers"
	"entradas-backend/internal/imageproc"
	"entradas-backend/internal/models"
	"entradas-backend/internal/services"
)

// memStore is a minimal in-memory services.Store for handler tests.
type memStore struct {
	nextID int64
	photos []models.Photo
	prices map[models.Tier]float64
}

func newMemStore() *memStore {
	return &memStore{prices: map[models.Tier]float64{
		models.TierGeneral: 50.00,
		models.TierVIP:     100.00,
	}}
}

func (s *memStore) InsertPhoto(ctx context.Context, p *models.Photo) (*models.Photo, error) {
	s.nextID++
	record := *p
	record.ID = s.nextID
	record.CapturedAt = time.Now()
	s.photos = append(s.photos, record)
	return &record, nil
}

func (s *memStore) PhotoByID(ctx context.Context, id int64) (*models.Photo, error) {
	for _, p := range s.photos {
		if p.ID == id {
			record := p
			return &record, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memStore) PhotoByFilename(ctx context.Context, filename string) (*models.Photo, error) {
	for _, p := range s.photos {
		if p.Filename == filename {
			record := p
			return &record, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memStore) ListPhotos(ctx context.Context, offset, limit int) ([]models.Photo, error) {
	sorted := make([]models.Photo, len(s.photos))
	copy(sorted, s.photos)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID > sorted[j].ID })
	if offset >= len(sorted) {
		return []models.Photo{}, nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[offset:end], nil
}

func (s *memStore) ListPhotosByTier(ctx context.Context, tier models.Tier) ([]models.Photo, error) {
	out := make([]models.Photo, 0)
	for _, p := range s.photos {
		if p.Tier == tier {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memStore) CountPhotos(ctx context.Context) (int64, error) {
	return int64(len(s.photos)), nil
}

func (s *memStore) DeletePhoto(ctx context.Context, id int64) (bool, error) {
	for i, p := range s.photos {
		if p.ID == id {
			s.photos = append(s.photos[:i], s.photos[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) DeleteAllPhotos(ctx context.Context) (int64, error) {
	count := int64(len(s.photos))
	s.photos = nil
	return count, nil
}

func (s *memStore) Price(ctx context.Context, tier models.Tier) (float64, error) {
	amount, ok := s.prices[tier]
	if !ok {
		return 0, sql.ErrNoRows
	}
	return amount, nil
}

func (s *memStore) ListPrices(ctx context.Context) ([]models.PriceEntry, error) {
	entries := make([]models.PriceEntry, 0, len(s.prices))
	for tier, amount := range s.prices {
		entries = append(entries, models.PriceEntry{Tier: tier, Amount: amount, UpdatedAt: time.Now()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Tier < entries[j].Tier })
	return entries, nil
}

func (s *memStore) UpdatePrice(ctx context.Context, tier models.Tier, amount float64) error {
	s.prices[tier] = amount
	return nil
}

func (s *memStore) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	for _, p := range s.photos {
		bucket := &stats.General
		if p.Tier == models.TierVIP {
			bucket = &stats.VIP
		}
		bucket.Count++
		bucket.Total += p.Price
		stats.Total.Count++
		stats.Total.Total += p.Price
	}
	stats.Today = stats.Total
	return &stats, nil
}

// memBackend keeps stored bytes in a map.
type memBackend struct {
	objects map[string][]byte
}

func newMemBackend() *memBackend {
	return &memBackend{objects: make(map[string][]byte)}
}

func (b *memBackend) Store(ctx context.Context, name string, data []byte) (string, error) {
	locator := "mem://" + name
	b.objects[locator] = data
	return locator, nil
}

func (b *memBackend) Retrieve(ctx context.Context, locator string) ([]byte, error) {
	data, ok := b.objects[locator]
	if !ok {
		return nil, services.ErrNotFound
	}
	return data, nil
}

func (b *memBackend) Remove(ctx context.Context, locator string) error {
	delete(b.objects, locator)
	return nil
}

func (b *memBackend) Name() string { return "mem" }

func newTestRouter(t *testing.T) (*gin.Engine, *memStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemStore()
	processor := imageproc.NewProcessor(10<<20, 800, 600, 60)
	coordinator := services.NewCoordinator(store, newMemBackend(), nil, processor, nil, "test-secret", 5*time.Second)

	uploadHandler := handlers.NewUploadHandler(coordinator)
	photosHandler := handlers.NewPhotosHandler(coordinator)
	imageHandler := handlers.NewImageHandler(coordinator)
	pricesHandler := handlers.NewPricesHandler(coordinator)
	statsHandler := handlers.NewStatsHandler(coordinator)
	healthHandler := handlers.NewHealthHandler(coordinator, nil)

	router := gin.New()
	api := router.Group("/api")
	api.GET("/health", healthHandler.Get)
	api.POST("/upload", uploadHandler.Upload)
	api.GET("/photos", photosHandler.List)
	api.GET("/photos/:tier", photosHandler.ListByTier)
	api.GET("/image/:filename", imageHandler.Get)
	api.GET("/precios", pricesHandler.List)
	api.PUT("/precios/:tier", pricesHandler.Update)
	api.GET("/estadisticas", statsHandler.Get)
	api.DELETE("/photos/:id", photosHandler.DeleteOne)
	api.DELETE("/delete-all", photosHandler.DeleteAll)

	return router, store
}

func multipartUpload(t *testing.T, tier string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("photo", "capture.jpg")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("tier", tier))
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)))
	return buf.Bytes()
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	req, _ := http.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "OK")
}

func TestUpload_Success(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartUpload(t, "vip", testJPEG(t))
	req, _ := http.NewRequest("POST", "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "vip", resp.Tipo)
	assert.Equal(t, 100.00, resp.Precio)
	assert.Contains(t, resp.Filename, "vip_")
}

func TestUpload_InvalidTier(t *testing.T) {
	router, store := newTestRouter(t)

	body, contentType := multipartUpload(t, "student", testJPEG(t))
	req, _ := http.NewRequest("POST", "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	count, _ := store.CountPhotos(context.Background())
	assert.Zero(t, count)
}

func TestUpload_NonImage(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartUpload(t, "general", []byte("plain text"))
	req, _ := http.NewRequest("POST", "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpload_MissingFile(t *testing.T) {
	router, _ := newTestRouter(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("tier", "general"))
	require.NoError(t, writer.Close())

	req, _ := http.NewRequest("POST", "/api/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPhotoList_Pagination(t *testing.T) {
	router, store := newTestRouter(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.InsertPhoto(ctx, &models.Photo{
			Tier: models.TierGeneral, Filename: "general_" + time.Now().Format("150405.000000000"),
			PrimaryLocator: "mem://x", Price: 50,
		})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	req, _ := http.NewRequest("GET", "/api/photos?page=2&limit=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.PhotoListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Photos, 2)
	assert.Equal(t, 2, resp.Pagination.CurrentPage)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.Equal(t, int64(5), resp.Pagination.TotalPhotos)
	assert.True(t, resp.Pagination.HasNext)
	assert.True(t, resp.Pagination.HasPrev)
}

func TestImage_RoundTrip(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartUpload(t, "general", testJPEG(t))
	req, _ := http.NewRequest("POST", "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var uploaded models.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploaded))

	req, _ = http.NewRequest("GET", "/api/image/"+uploaded.Filename, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))

	// Compression may change the bytes but they must stay decodable.
	_, err := imaging.Decode(bytes.NewReader(w.Body.Bytes()))
	assert.NoError(t, err)
}

func TestImage_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req, _ := http.NewRequest("GET", "/api/image/general_0", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPrices_UpdateAndList(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := bytes.NewBufferString(`{"precio": 150.00}`)
	req, _ := http.NewRequest("PUT", "/api/precios/vip", payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("GET", "/api/precios", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var prices []models.PriceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prices))
	require.Len(t, prices, 2)
	assert.Equal(t, "vip", prices[1].Tipo)
	assert.Equal(t, 150.00, prices[1].Precio)
}

func TestPrices_RejectsNegative(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := bytes.NewBufferString(`{"precio": -5}`)
	req, _ := http.NewRequest("PUT", "/api/precios/general", payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPrices_RejectsUnknownTier(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := bytes.NewBufferString(`{"precio": 10}`)
	req, _ := http.NewRequest("PUT", "/api/precios/premium", payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAll_WrongPassword(t *testing.T) {
	router, store := newTestRouter(t)
	ctx := context.Background()

	_, err := store.InsertPhoto(ctx, &models.Photo{
		Tier: models.TierGeneral, Filename: "general_1", PrimaryLocator: "mem://x", Price: 50,
	})
	require.NoError(t, err)

	payload := bytes.NewBufferString(`{"password": "nope"}`)
	req, _ := http.NewRequest("DELETE", "/api/delete-all", payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	count, _ := store.CountPhotos(ctx)
	assert.Equal(t, int64(1), count)
}

func TestDeleteAll_CorrectPassword(t *testing.T) {
	router, store := newTestRouter(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := store.InsertPhoto(ctx, &models.Photo{
			Tier: models.TierVIP, Filename: "vip_" + time.Now().Format("150405.000000000"),
			PrimaryLocator: "mem://x", Price: 100,
		})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	payload := bytes.NewBufferString(`{"password": "test-secret"}`)
	req, _ := http.NewRequest("DELETE", "/api/delete-all", payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.DeleteAllResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(2), resp.DeletedCount)

	count, _ := store.CountPhotos(ctx)
	assert.Zero(t, count)
}

func TestDeleteOne_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req, _ := http.NewRequest("DELETE", "/api/photos/999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStats(t *testing.T) {
	router, store := newTestRouter(t)
	ctx := context.Background()

	_, err := store.InsertPhoto(ctx, &models.Photo{
		Tier: models.TierGeneral, Filename: "general_1", PrimaryLocator: "mem://x", Price: 50,
	})
	require.NoError(t, err)
	_, err = store.InsertPhoto(ctx, &models.Photo{
		Tier: models.TierVIP, Filename: "vip_1", PrimaryLocator: "mem://y", Price: 100,
	})
	require.NoError(t, err)

	req, _ := http.NewRequest("GET", "/api/estadisticas", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var stats models.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.General.Count)
	assert.Equal(t, 50.00, stats.General.Total)
	assert.Equal(t, int64(2), stats.Total.Count)
	assert.Equal(t, 150.00, stats.Total.Total)
}

func TestPhotosByTier(t *testing.T) {
	router, store := newTestRouter(t)
	ctx := context.Background()

	_, err := store.InsertPhoto(ctx, &models.Photo{
		Tier: models.TierVIP, Filename: "vip_1", PrimaryLocator: "mem://y", Price: 100,
	})
	require.NoError(t, err)

	req, _ := http.NewRequest("GET", "/api/photos/vip", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var photos []models.PhotoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &photos))
	require.Len(t, photos, 1)
	assert.Equal(t, "vip", photos[0].Tipo)

	req, _ = http.NewRequest("GET", "/api/photos/student", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
