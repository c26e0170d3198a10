package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StoreDocument は MongoDB 上での店舗スキーマを Go 構造体として表現したもの。
type StoreDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Code         string             `bson:"code"`
	Name         string             `bson:"name"`
	Status       string             `bson:"status"`
	FailedReason string             `bson:"failedReason,omitempty"`
	Latitude     *float64           `bson:"latitude,omitempty"`
	Longitude    *float64           `bson:"longitude,omitempty"`
	CreatedAt    *time.Time         `bson:"createdAt,omitempty"`
	UpdatedAt    *time.Time         `bson:"updatedAt,omitempty"`
}

// AuditDocument は1回の店舗監査を表すスキーマ。画像は埋め込みで保持し、
// 監査削除と同時に消えるようにしている。
type AuditDocument struct {
	ID                 primitive.ObjectID   `bson:"_id"`
	UserID             string               `bson:"userId"`
	StoreID            primitive.ObjectID   `bson:"storeId"`
	Result             string               `bson:"result"`
	Placeholder        bool                 `bson:"placeholder,omitempty"`
	Notes              string               `bson:"notes,omitempty"`
	AuditDate          string               `bson:"auditDate"`
	ExpectedImageCount int                  `bson:"expectedImageCount,omitempty"`
	Images             []AuditImageDocument `bson:"images,omitempty"`
	CreatedAt          time.Time            `bson:"createdAt"`
}

// AuditImageDocument は監査写真 1 枚分のメタデータを格納する埋め込みドキュメント。
type AuditImageDocument struct {
	ID                string    `bson:"id"`
	ImageURL          string    `bson:"imageUrl"`
	ReferenceImageURL string    `bson:"referenceImageUrl,omitempty"`
	Latitude          *float64  `bson:"latitude,omitempty"`
	Longitude         *float64  `bson:"longitude,omitempty"`
	CapturedAt        time.Time `bson:"capturedAt"`
	UploadedAt        time.Time `bson:"uploadedAt"`
}
