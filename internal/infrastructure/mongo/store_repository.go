package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sngm3741/field-audit-services/api/internal/audit/application"
	"github.com/sngm3741/field-audit-services/api/internal/audit/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StoreRepository は application.StoreRepository の Mongo 実装。
type StoreRepository struct {
	collection *mongo.Collection
}

// NewStoreRepository は MongoDB コレクションを束縛した StoreRepository を生成する。
func NewStoreRepository(db *mongo.Database, collectionName string) *StoreRepository {
	return &StoreRepository{collection: db.Collection(collectionName)}
}

// Find はステータス・キーワードで絞り込んだ店舗一覧を返す。
func (r *StoreRepository) Find(ctx context.Context, filter application.StoreFilter) ([]domain.Store, error) {
	mongoFilter := bson.M{}
	if filter.Status != "" {
		mongoFilter["status"] = strings.TrimSpace(filter.Status)
	}
	if filter.Keyword != "" {
		pattern := regexp.QuoteMeta(strings.TrimSpace(filter.Keyword))
		regex := primitive.Regex{Pattern: pattern, Options: "i"}
		mongoFilter["$or"] = bson.A{
			bson.M{"name": regex},
			bson.M{"code": regex},
		}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "code", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, mongoFilter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stores := make([]domain.Store, 0)
	for cursor.Next(ctx) {
		var doc StoreDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		stores = append(stores, mapStoreDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return stores, nil
}

// FindByID は 16 進 ObjectID を受け取り単一店舗を返す。
func (r *StoreRepository) FindByID(ctx context.Context, id string) (*domain.Store, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, application.ErrStoreNotFound
	}
	var doc StoreDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, application.ErrStoreNotFound
		}
		return nil, err
	}
	store := mapStoreDocument(doc)
	return &store, nil
}

// Create は店舗コードの重複チェックを行った上で Store を新規作成する。
func (r *StoreRepository) Create(ctx context.Context, store *domain.Store) error {
	filter := bson.M{"code": store.Code}
	if err := r.collection.FindOne(ctx, filter).Err(); err == nil {
		return fmt.Errorf("store code %s already exists", store.Code)
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	now := time.Now().UTC()
	objectID := primitive.NewObjectID()
	doc := StoreDocument{
		ID:           objectID,
		Code:         store.Code,
		Name:         store.Name,
		Status:       store.Status.String(),
		FailedReason: store.FailedReason,
		Latitude:     store.Latitude,
		Longitude:    store.Longitude,
		CreatedAt:    &now,
		UpdatedAt:    &now,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return err
	}
	store.ID = objectID.Hex()
	store.CreatedAt = now
	store.UpdatedAt = now
	return nil
}

// UpdateStatus は Store.status への唯一の書き込み経路。failed 以外では
// failedReason を必ずクリアする。
func (r *StoreRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, failedReason string) error {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return application.ErrStoreNotFound
	}
	update := bson.M{
		"$set": bson.M{
			"status":    status.String(),
			"updatedAt": time.Now().UTC(),
		},
	}
	if status == domain.StatusFailed {
		update["$set"].(bson.M)["failedReason"] = failedReason
	} else {
		update["$unset"] = bson.M{"failedReason": ""}
	}
	result, err := r.collection.UpdateByID(ctx, objectID, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return application.ErrStoreNotFound
	}
	return nil
}

// UpdateLocation は直近監査の1枚目の写真に由来する座標を保存する。
func (r *StoreRepository) UpdateLocation(ctx context.Context, id string, latitude, longitude *float64) error {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return application.ErrStoreNotFound
	}
	result, err := r.collection.UpdateByID(ctx, objectID, bson.M{
		"$set": bson.M{
			"latitude":  latitude,
			"longitude": longitude,
			"updatedAt": time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return application.ErrStoreNotFound
	}
	return nil
}

// ListIDs は一括再計算向けに全店舗の ID を返す。
func (r *StoreRepository) ListIDs(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ids := make([]string, 0)
	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID.Hex())
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// mapStoreDocument は Mongo ドキュメントをドメインの Store に変換する。
func mapStoreDocument(doc StoreDocument) domain.Store {
	store := domain.Store{
		ID:           doc.ID.Hex(),
		Code:         doc.Code,
		Name:         doc.Name,
		Status:       domain.Status(doc.Status),
		FailedReason: doc.FailedReason,
		Latitude:     doc.Latitude,
		Longitude:    doc.Longitude,
	}
	if store.Status == "" {
		store.Status = domain.StatusNotAudited
	}
	if doc.CreatedAt != nil {
		store.CreatedAt = *doc.CreatedAt
	}
	if doc.UpdatedAt != nil {
		store.UpdatedAt = *doc.UpdatedAt
	}
	return store
}
