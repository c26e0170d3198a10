package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StoreIndexModels は店舗コレクションのインデックス定義。店舗コードは
// 一意、ステータスは一覧の絞り込みに使う。
func StoreIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
}

// AuditIndexModels は監査コレクションのインデックス定義。
// 同一ユーザー・同一店舗・同一監査日の重複はアプリ層の事前チェックに
// 加えてユニーク制約でも塞ぐ。チェックと挿入の間の競合はここで落ちる。
func AuditIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "storeId", Value: 1},
				{Key: "auditDate", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
}

// EnsureIndexes は店舗・監査コレクションのインデックスを作成する。
// 既存の同一定義に対しては no-op なので起動のたびに呼んでよい。
func EnsureIndexes(ctx context.Context, db *mongo.Database, storeCollection, auditCollection string) error {
	if _, err := db.Collection(storeCollection).Indexes().CreateMany(ctx, StoreIndexModels()); err != nil {
		return err
	}
	_, err := db.Collection(auditCollection).Indexes().CreateMany(ctx, AuditIndexModels())
	return err
}
