package models

import "time"

type UploadResponse struct {
	Success   bool    `json:"success"`
	ID        int64   `json:"id"`
	Filename  string  `json:"filename"`
	Tipo      string  `json:"tipo"`
	Precio    float64 `json:"precio"`
	MirrorURL string  `json:"mirror_url,omitempty"`
	Message   string  `json:"message"`
}

type PhotoResponse struct {
	ID        int64     `json:"id"`
	Tipo      string    `json:"tipo"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	MirrorURL string    `json:"mirror_url,omitempty"`
	Precio    float64   `json:"precio"`
	Timestamp time.Time `json:"timestamp"`
}

type Pagination struct {
	CurrentPage   int   `json:"current_page"`
	TotalPages    int   `json:"total_pages"`
	TotalPhotos   int64 `json:"total_photos"`
	PhotosPerPage int   `json:"photos_per_page"`
	HasNext       bool  `json:"has_next"`
	HasPrev       bool  `json:"has_prev"`
}

type PhotoListResponse struct {
	Photos     []PhotoResponse `json:"photos"`
	Pagination Pagination      `json:"pagination"`
}

type PriceResponse struct {
	Tipo      string    `json:"tipo"`
	Precio    float64   `json:"precio"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UpdatePriceResponse struct {
	Success bool    `json:"success"`
	Tipo    string  `json:"tipo"`
	Precio  float64 `json:"precio"`
	Message string  `json:"message"`
}

type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type DeleteAllResponse struct {
	Success      bool  `json:"success"`
	DeletedCount int64 `json:"deleted_count"`
}

type HealthResponse struct {
	Status           string  `json:"status"`
	Timestamp        string  `json:"timestamp"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	StorageBackend   string  `json:"storage_backend"`
	MirrorConfigured bool    `json:"mirror_configured"`
	Database         string  `json:"database"`
}
