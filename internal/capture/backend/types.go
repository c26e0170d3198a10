package backend

import (
	"context"
	"time"
)

// Store mirrors the server's store payload.
type Store struct {
	ID           string   `json:"id"`
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Status       string   `json:"status"`
	FailedReason string   `json:"failedReason,omitempty"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

// Audit mirrors the server's audit payload, images embedded.
type Audit struct {
	ID                 string  `json:"id"`
	UserID             string  `json:"userId"`
	StoreID            string  `json:"storeId"`
	Result             string  `json:"result,omitempty"`
	Notes              string  `json:"notes,omitempty"`
	AuditDate          string  `json:"auditDate"`
	ExpectedImageCount int     `json:"expectedImageCount"`
	Images             []Image `json:"images"`
	CreatedAt          string  `json:"createdAt"`
}

// Image mirrors one uploaded photo reference.
type Image struct {
	ID                string   `json:"id"`
	ImageURL          string   `json:"imageUrl"`
	ReferenceImageURL string   `json:"referenceImageUrl,omitempty"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	CapturedAt        string   `json:"capturedAt"`
	UploadedAt        string   `json:"uploadedAt"`
}

// StoreDetail is the store plus its full audit history.
type StoreDetail struct {
	Store  Store   `json:"store"`
	Audits []Audit `json:"audits"`
}

// FetchReason states why a store detail fetch runs. Passed explicitly
// so the UI can decide whether to show the blocking loader without a
// shared mutable flag.
type FetchReason int

const (
	// FetchFirstLoad is the initial fetch when the screen opens.
	FetchFirstLoad FetchReason = iota
	// FetchRefetching is a refresh of data already on screen.
	FetchRefetching
)

func (r FetchReason) String() string {
	if r == FetchRefetching {
		return "refetching"
	}
	return "first-load"
}

// CreateAuditRequest is the POST /audits body.
type CreateAuditRequest struct {
	UserID             string `json:"userId,omitempty"`
	StoreID            string `json:"storeId"`
	Result             string `json:"result,omitempty"`
	Notes              string `json:"notes,omitempty"`
	AuditDate          string `json:"auditDate,omitempty"`
	ExpectedImageCount int    `json:"expectedImageCount,omitempty"`
	SkipStatusUpdate   bool   `json:"skipStatusUpdate,omitempty"`
}

// UploadImageRequest carries one captured frame for POST /images/upload.
type UploadImageRequest struct {
	AuditID               string
	Data                  []byte
	MimeType              string
	Latitude              *float64
	Longitude             *float64
	CapturedAt            time.Time
	TimezoneOffsetMinutes int
}

// FinalizeResult mirrors the POST /audits/{id}/finalize response.
type FinalizeResult struct {
	Status        string `json:"status"`
	StoreStatus   string `json:"storeStatus"`
	Pending       bool   `json:"pending"`
	MissingImages int    `json:"missingImages"`
	ImageCount    int    `json:"imageCount"`
}

// API is the server surface the capture session depends on.
type API interface {
	CreateAudit(ctx context.Context, req CreateAuditRequest) (*Audit, error)
	UploadImage(ctx context.Context, req UploadImageRequest) (*Image, error)
	FinalizeAudit(ctx context.Context, auditID string) (*FinalizeResult, error)
	UpdateStoreLocation(ctx context.Context, storeID string, latitude, longitude *float64) error
	StoreDetail(ctx context.Context, storeID string, reason FetchReason) (*StoreDetail, error)
}
