package public

import (
	"time"

	"github.com/sngm3741/field-audit-services/api/internal/audit/domain"
)

type storeResponse struct {
	ID           string   `json:"id"`
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Status       string   `json:"status"`
	FailedReason string   `json:"failedReason,omitempty"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	CreatedAt    string   `json:"createdAt,omitempty"`
	UpdatedAt    string   `json:"updatedAt,omitempty"`
}

type storeListResponse struct {
	Items []storeResponse `json:"items"`
	Total int             `json:"total"`
}

type storeDetailResponse struct {
	Store  storeResponse   `json:"store"`
	Audits []auditResponse `json:"audits"`
}

type auditResponse struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"userId"`
	StoreID            string          `json:"storeId"`
	Result             string          `json:"result,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	AuditDate          string          `json:"auditDate"`
	ExpectedImageCount int             `json:"expectedImageCount"`
	Images             []imageResponse `json:"images"`
	CreatedAt          string          `json:"createdAt"`
}

type imageResponse struct {
	ID                string   `json:"id"`
	ImageURL          string   `json:"imageUrl"`
	ReferenceImageURL string   `json:"referenceImageUrl,omitempty"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	CapturedAt        string   `json:"capturedAt"`
	UploadedAt        string   `json:"uploadedAt"`
}

type finalizeResponse struct {
	Status        string `json:"status"`
	StoreStatus   string `json:"storeStatus"`
	Pending       bool   `json:"pending"`
	MissingImages int    `json:"missingImages"`
	ImageCount    int    `json:"imageCount"`
}

func buildStoreResponse(store domain.Store) storeResponse {
	return storeResponse{
		ID:           store.ID,
		Code:         store.Code,
		Name:         store.Name,
		Status:       store.Status.String(),
		FailedReason: store.FailedReason,
		Latitude:     store.Latitude,
		Longitude:    store.Longitude,
		CreatedAt:    formatTime(store.CreatedAt),
		UpdatedAt:    formatTime(store.UpdatedAt),
	}
}

func buildAuditResponse(audit domain.Audit) auditResponse {
	images := make([]imageResponse, 0, len(audit.Images))
	for _, image := range audit.Images {
		images = append(images, imageResponse{
			ID:                image.ID,
			ImageURL:          image.ImageURL,
			ReferenceImageURL: image.ReferenceImageURL,
			Latitude:          image.Latitude,
			Longitude:         image.Longitude,
			CapturedAt:        formatTime(image.CapturedAt),
			UploadedAt:        formatTime(image.UploadedAt),
		})
	}
	result := ""
	if judged, ok := audit.EffectiveResult(); ok {
		result = judged.String()
	}
	return auditResponse{
		ID:                 audit.ID,
		UserID:             audit.UserID,
		StoreID:            audit.StoreID,
		Result:             result,
		Notes:              audit.Notes,
		AuditDate:          audit.AuditDate.String(),
		ExpectedImageCount: audit.ExpectedImageCount,
		Images:             images,
		CreatedAt:          formatTime(audit.CreatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
