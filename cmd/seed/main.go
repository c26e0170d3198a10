// seed はローカル開発用のサンプルデータ（店舗・監査・画像）を MongoDB へ
// 投入するツール。店舗ステータスは投入した監査履歴から本番と同じ導出
// ロジックで計算して書き込む。
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/field-audit-services/api/internal/audit/domain"
	infra "github.com/sngm3741/field-audit-services/api/internal/infrastructure/mongo"
)

type seedOptions struct {
	storeCount      int
	auditsPerStore  int
	dropCollections bool
	randomSeed      int64
}

var storeNames = []string{
	"青葉台店", "駅前本店", "中央通り店", "港北店", "桜木町店",
	"南口店", "参道店", "丘の上店", "川沿い店", "北口店",
}

var sampleNotes = []string{
	"棚の陳列は基準どおり。",
	"入口の掲示物が古いまま残っていた。",
	"照明が一部切れていたため報告済み。",
	"",
	"特記事項なし。",
}

var sampleUserIDs = []string{"user-aoki", "user-tanaka", "user-sato", "user-yamada"}

func main() {
	opts := parseFlags()

	// .env は任意。無ければ環境変数だけで動かす。
	_ = godotenv.Load()

	mongoURI := envOrDefault("MONGO_URI", "mongodb://localhost:27017")
	dbName := envOrDefault("MONGO_DB", "field-audit")
	storeColl := envOrDefault("STORE_COLLECTION", "stores")
	auditColl := envOrDefault("AUDIT_COLLECTION", "audits")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("MongoDB 接続に失敗しました: %v", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(dbName)

	if opts.dropCollections {
		for _, name := range []string{storeColl, auditColl} {
			if err := db.Collection(name).Drop(ctx); err != nil {
				// Drop は存在しない場合も err を返すので warning ログにとどめる
				log.Printf("WARN: コレクション %s の削除に失敗: %v", name, err)
			}
		}
		log.Printf("既存コレクションを削除しました")
	}

	if err := infra.EnsureIndexes(ctx, db, storeColl, auditColl); err != nil {
		log.Fatalf("インデックス作成に失敗しました: %v", err)
	}

	rng := rand.New(rand.NewSource(opts.randomSeed))

	storeDocs, auditDocs := generate(rng, opts.storeCount, opts.auditsPerStore)
	if err := insertMany(ctx, db.Collection(storeColl), toAnySlice(storeDocs)); err != nil {
		log.Fatalf("店舗データの挿入に失敗しました: %v", err)
	}
	if len(auditDocs) > 0 {
		if err := insertMany(ctx, db.Collection(auditColl), toAnySlice(auditDocs)); err != nil {
			log.Fatalf("監査データの挿入に失敗しました: %v", err)
		}
	}

	log.Printf("Seed 完了: stores=%d audits=%d", len(storeDocs), len(auditDocs))
	log.Printf("Mongo: %s / %s", mongoURI, dbName)
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.IntVar(&opts.storeCount, "stores", 10, "生成する店舗数")
	flag.IntVar(&opts.auditsPerStore, "audits", 3, "店舗あたりの最大監査数")
	flag.BoolVar(&opts.dropCollections, "drop", true, "既存コレクションを削除してから投入する")
	defaultSeed := time.Now().UnixNano()
	flag.Int64Var(&opts.randomSeed, "seed", defaultSeed, "乱数シード（再現用）")
	flag.Parse()

	if opts.storeCount <= 0 {
		log.Fatal("stores は 1 以上を指定してください")
	}
	if opts.auditsPerStore < 0 {
		opts.auditsPerStore = 0
	}
	return opts
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// generate は店舗と監査履歴を作り、履歴から店舗ステータスを導出する。
func generate(rng *rand.Rand, storeCount, auditsPerStore int) ([]infra.StoreDocument, []infra.AuditDocument) {
	now := time.Now().UTC()
	stores := make([]infra.StoreDocument, 0, storeCount)
	var audits []infra.AuditDocument

	for i := 0; i < storeCount; i++ {
		storeID := primitive.NewObjectID()
		storeAudits := generateAudits(rng, storeID, auditsPerStore, now)

		status, lat, lon := summarize(storeAudits)
		created := now.AddDate(0, 0, -30)
		doc := infra.StoreDocument{
			ID:        storeID,
			Code:      fmt.Sprintf("ST-%04d", i+1),
			Name:      storeNames[i%len(storeNames)],
			Status:    status.String(),
			Latitude:  lat,
			Longitude: lon,
			CreatedAt: &created,
			UpdatedAt: &now,
		}
		if status == domain.StatusFailed {
			doc.FailedReason = "現地監査で不合格と判定されました"
		}
		stores = append(stores, doc)
		audits = append(audits, storeAudits...)
	}
	return stores, audits
}

func generateAudits(rng *rand.Rand, storeID primitive.ObjectID, max int, now time.Time) []infra.AuditDocument {
	count := rng.Intn(max + 1)
	docs := make([]infra.AuditDocument, 0, count)

	for j := 0; j < count; j++ {
		// 過去から1日1件ずつ。直近日が最後になる。
		day := now.AddDate(0, 0, j-count)
		doc := infra.AuditDocument{
			ID:                 primitive.NewObjectID(),
			UserID:             sampleUserIDs[rng.Intn(len(sampleUserIDs))],
			StoreID:            storeID,
			Notes:              sampleNotes[rng.Intn(len(sampleNotes))],
			AuditDate:          day.Format("2006-01-02"),
			ExpectedImageCount: 3,
			CreatedAt:          day,
		}

		switch rng.Intn(4) {
		case 0:
			doc.Result = domain.ResultPass.String()
		case 1:
			doc.Result = domain.ResultFail.String()
		default:
			// 写真のみのプレースホルダー監査。
			doc.Result = domain.ResultPass.String()
			doc.Placeholder = true
		}

		if rng.Intn(5) > 0 {
			doc.Images = generateImages(rng, day)
		}
		docs = append(docs, doc)
	}
	return docs
}

func generateImages(rng *rand.Rand, capturedAt time.Time) []infra.AuditImageDocument {
	count := 1 + rng.Intn(3)
	images := make([]infra.AuditImageDocument, 0, count)
	for k := 0; k < count; k++ {
		lat := 35.6 + rng.Float64()*0.2
		lon := 139.6 + rng.Float64()*0.2
		images = append(images, infra.AuditImageDocument{
			ID:         uuid.NewString(),
			ImageURL:   fmt.Sprintf("https://images.example.com/audits/%s.jpg", uuid.NewString()),
			Latitude:   &lat,
			Longitude:  &lon,
			CapturedAt: capturedAt,
			UploadedAt: capturedAt.Add(time.Minute),
		})
	}
	return images
}

// summarize は本番と同じ導出関数で店舗ステータスを決め、最新監査の
// 1枚目の座標を店舗の最終既知位置として返す。
func summarize(docs []infra.AuditDocument) (domain.Status, *float64, *float64) {
	audits := make([]domain.Audit, 0, len(docs))
	var lat, lon *float64
	for _, doc := range docs {
		result, _ := domain.NewResult(doc.Result)
		audits = append(audits, domain.Audit{
			Result:      result,
			Placeholder: doc.Placeholder,
			Images:      make([]domain.AuditImage, len(doc.Images)),
		})
		if len(doc.Images) > 0 {
			lat = doc.Images[0].Latitude
			lon = doc.Images[0].Longitude
		}
	}
	return domain.DeriveStatus(audits), lat, lon
}

func insertMany(ctx context.Context, col *mongo.Collection, docs []any) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := col.InsertMany(ctx, docs)
	return err
}

func toAnySlice[T any](items []T) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}
