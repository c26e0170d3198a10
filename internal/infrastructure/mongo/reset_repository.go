package mongo

import (
	"context"
	"strings"
	"time"

	"github.com/sngm3741/field-audit-services/api/internal/audit/application"
	"github.com/sngm3741/field-audit-services/api/internal/audit/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ResetRepository は店舗の監査データ全削除とステータス初期化を
// 単一トランザクションで実行する。途中失敗で監査だけ消える・
// ステータスだけ戻るといった不整合を残さないための実装。
type ResetRepository struct {
	client *mongo.Client
	stores *mongo.Collection
	audits *mongo.Collection
}

// NewResetRepository は対象コレクションを束縛した ResetRepository を生成する。
func NewResetRepository(client *mongo.Client, db *mongo.Database, storeCollection, auditCollection string) *ResetRepository {
	return &ResetRepository{
		client: client,
		stores: db.Collection(storeCollection),
		audits: db.Collection(auditCollection),
	}
}

// Reset は監査（埋め込み画像ごと）を全削除し、店舗を not_audited へ戻す。
// 2回連続で呼んでも結果は変わらない。
func (r *ResetRepository) Reset(ctx context.Context, storeID string) error {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(storeID))
	if err != nil {
		return application.ErrStoreNotFound
	}

	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if _, err := r.audits.DeleteMany(sessCtx, bson.M{"storeId": objectID}); err != nil {
			return nil, err
		}
		update := bson.M{
			"$set": bson.M{
				"status":    domain.StatusNotAudited.String(),
				"updatedAt": time.Now().UTC(),
			},
			"$unset": bson.M{
				"failedReason": "",
				"latitude":     "",
				"longitude":    "",
			},
		}
		result, err := r.stores.UpdateByID(sessCtx, objectID, update)
		if err != nil {
			return nil, err
		}
		if result.MatchedCount == 0 {
			return nil, application.ErrStoreNotFound
		}
		return nil, nil
	})
	return err
}
