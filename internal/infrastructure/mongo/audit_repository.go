package mongo

import (
	"context"
	"errors"
	"strings"

	"github.com/sngm3741/field-audit-services/api/internal/audit/application"
	"github.com/sngm3741/field-audit-services/api/internal/audit/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditRepository は application.AuditRepository の Mongo 実装。
type AuditRepository struct {
	collection *mongo.Collection
}

// NewAuditRepository は MongoDB コレクションを束縛した AuditRepository を生成する。
func NewAuditRepository(db *mongo.Database, collectionName string) *AuditRepository {
	return &AuditRepository{collection: db.Collection(collectionName)}
}

// FindByStore は店舗の監査履歴を新しい順に返す。画像は埋め込みのまま復元する。
func (r *AuditRepository) FindByStore(ctx context.Context, storeID string) ([]domain.Audit, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(storeID))
	if err != nil {
		return nil, application.ErrStoreNotFound
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"storeId": objectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	audits := make([]domain.Audit, 0)
	for cursor.Next(ctx) {
		var doc AuditDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		audits = append(audits, mapAuditDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return audits, nil
}

// FindByID は単一の監査を返す。
func (r *AuditRepository) FindByID(ctx context.Context, id string) (*domain.Audit, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, application.ErrAuditNotFound
	}
	var doc AuditDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, application.ErrAuditNotFound
		}
		return nil, err
	}
	audit := mapAuditDocument(doc)
	return &audit, nil
}

// Create は監査を新規保存し、採番した ID をドメイン側へ書き戻す。
func (r *AuditRepository) Create(ctx context.Context, audit *domain.Audit) error {
	storeID, err := primitive.ObjectIDFromHex(strings.TrimSpace(audit.StoreID))
	if err != nil {
		return application.ErrStoreNotFound
	}

	objectID := primitive.NewObjectID()
	doc := AuditDocument{
		ID:                 objectID,
		UserID:             audit.UserID,
		StoreID:            storeID,
		Result:             audit.Result.String(),
		Placeholder:        audit.Placeholder,
		Notes:              audit.Notes,
		AuditDate:          audit.AuditDate.String(),
		ExpectedImageCount: audit.ExpectedImageCount,
		Images:             buildImageDocuments(audit.Images),
		CreatedAt:          audit.CreatedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return err
	}
	audit.ID = objectID.Hex()
	return nil
}

// AppendImage は監査の images 配列へ1枚分のメタデータを追記する。
func (r *AuditRepository) AppendImage(ctx context.Context, auditID string, image domain.AuditImage) error {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(auditID))
	if err != nil {
		return application.ErrAuditNotFound
	}
	result, err := r.collection.UpdateByID(ctx, objectID, bson.M{
		"$push": bson.M{"images": buildImageDocument(image)},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return application.ErrAuditNotFound
	}
	return nil
}

// ExistsForDay は同一ユーザー・同一店舗・同一監査日の監査が既に存在するか判定する。
func (r *AuditRepository) ExistsForDay(ctx context.Context, userID, storeID string, date domain.AuditDate) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(storeID))
	if err != nil {
		return false, application.ErrStoreNotFound
	}
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"userId":    strings.TrimSpace(userID),
		"storeId":   objectID,
		"auditDate": date.String(),
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func mapAuditDocument(doc AuditDocument) domain.Audit {
	images := make([]domain.AuditImage, 0, len(doc.Images))
	for _, image := range doc.Images {
		images = append(images, domain.AuditImage{
			ID:                image.ID,
			ImageURL:          image.ImageURL,
			ReferenceImageURL: image.ReferenceImageURL,
			Latitude:          image.Latitude,
			Longitude:         image.Longitude,
			CapturedAt:        image.CapturedAt,
			UploadedAt:        image.UploadedAt,
		})
	}
	return domain.Audit{
		ID:                 doc.ID.Hex(),
		UserID:             doc.UserID,
		StoreID:            doc.StoreID.Hex(),
		Result:             domain.Result(doc.Result),
		Placeholder:        doc.Placeholder,
		Notes:              doc.Notes,
		AuditDate:          domain.AuditDate(doc.AuditDate),
		ExpectedImageCount: doc.ExpectedImageCount,
		Images:             images,
		CreatedAt:          doc.CreatedAt,
	}
}

func buildImageDocuments(images []domain.AuditImage) []AuditImageDocument {
	if len(images) == 0 {
		return nil
	}
	docs := make([]AuditImageDocument, 0, len(images))
	for _, image := range images {
		docs = append(docs, buildImageDocument(image))
	}
	return docs
}

func buildImageDocument(image domain.AuditImage) AuditImageDocument {
	return AuditImageDocument{
		ID:                image.ID,
		ImageURL:          image.ImageURL,
		ReferenceImageURL: image.ReferenceImageURL,
		Latitude:          image.Latitude,
		Longitude:         image.Longitude,
		CapturedAt:        image.CapturedAt,
		UploadedAt:        image.UploadedAt,
	}
}
