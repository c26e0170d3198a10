package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/field-audit-services/api/internal/audit/application"
	"github.com/sngm3741/field-audit-services/api/internal/audit/domain"
)

func TestUpdateStatusFailedRequiresReason(t *testing.T) {
	stores := newFakeStoreRepo(testStore("store-1"))
	audits := newFakeAuditRepo()
	_, storeSvc := newServices(stores, audits)

	err := storeSvc.UpdateStatus(context.Background(), "store-1", domain.StatusFailed, "")
	var validationErr *application.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Zero(t, stores.statusCalls)

	err = storeSvc.UpdateStatus(context.Background(), "store-1", domain.StatusFailed, "棚が基準を満たしていない")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, stores.stores["store-1"].Status)
	assert.Equal(t, "棚が基準を満たしていない", stores.stores["store-1"].FailedReason)
}

func TestUpdateStatusClearsReasonForNonFailed(t *testing.T) {
	store := testStore("store-1")
	store.Status = domain.StatusFailed
	store.FailedReason = "過去の不合格理由"
	stores := newFakeStoreRepo(store)
	audits := newFakeAuditRepo()
	_, storeSvc := newServices(stores, audits)

	err := storeSvc.UpdateStatus(context.Background(), "store-1", domain.StatusPassed, "無関係な理由")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPassed, stores.stores["store-1"].Status)
	assert.Empty(t, stores.stores["store-1"].FailedReason)
}

func TestRecomputeFailedReasonFallbackChain(t *testing.T) {
	stores := newFakeStoreRepo(testStore("store-1"))
	audits := newFakeAuditRepo(&domain.Audit{
		ID:        "audit-1",
		UserID:    "user-1",
		StoreID:   "store-1",
		Result:    domain.ResultFail,
		Notes:     "照明が切れたまま放置されていた",
		AuditDate: "2026-08-29",
		CreatedAt: time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
	})
	_, storeSvc := newServices(stores, audits)

	// 呼び出し側が理由を渡さなければ、失敗監査のメモが採用される。
	status, err := storeSvc.Recompute(context.Background(), "store-1", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, status)
	assert.Equal(t, "照明が切れたまま放置されていた", stores.stores["store-1"].FailedReason)

	// 明示的な理由は常に優先される。
	_, err = storeSvc.Recompute(context.Background(), "store-1", "管理者判断による不合格")
	require.NoError(t, err)
	assert.Equal(t, "管理者判断による不合格", stores.stores["store-1"].FailedReason)
}

func TestRecomputeAllAppliesSamePrecedence(t *testing.T) {
	storeA := testStore("store-a")
	storeB := testStore("store-b")
	storeB.Code = "ST-0002"
	stores := newFakeStoreRepo(storeA, storeB)
	audits := newFakeAuditRepo(
		&domain.Audit{ID: "audit-1", StoreID: "store-a", Result: domain.ResultFail, CreatedAt: time.Now()},
		&domain.Audit{ID: "audit-2", StoreID: "store-a", Result: domain.ResultPass, CreatedAt: time.Now()},
		&domain.Audit{ID: "audit-3", StoreID: "store-b", Result: domain.ResultPass, Placeholder: true,
			Images: []domain.AuditImage{{ID: "img-1"}}, CreatedAt: time.Now()},
	)
	_, storeSvc := newServices(stores, audits)

	updated, err := storeSvc.RecomputeAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	// pass と fail が混在する店舗は一括再計算でも passed になる。
	assert.Equal(t, domain.StatusPassed, stores.stores["store-a"].Status)
	assert.Equal(t, domain.StatusAudited, stores.stores["store-b"].Status)
}

func TestResetIsIdempotent(t *testing.T) {
	store := testStore("store-1")
	store.Status = domain.StatusFailed
	store.FailedReason = "不合格"
	stores := newFakeStoreRepo(store)
	audits := newFakeAuditRepo(&domain.Audit{
		ID: "audit-1", StoreID: "store-1", Result: domain.ResultFail, CreatedAt: time.Now(),
	})
	resets := &fakeResetRepo{stores: stores, audits: audits}
	storeSvc := application.NewStoreService(stores, audits, resets)

	require.NoError(t, storeSvc.Reset(context.Background(), "store-1"))
	require.NoError(t, storeSvc.Reset(context.Background(), "store-1"))

	assert.Equal(t, 2, resets.calls)
	assert.Equal(t, domain.StatusNotAudited, stores.stores["store-1"].Status)
	assert.Empty(t, stores.stores["store-1"].FailedReason)

	remaining, err := audits.FindByStore(context.Background(), "store-1")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestResetUnknownStore(t *testing.T) {
	stores := newFakeStoreRepo()
	audits := newFakeAuditRepo()
	_, storeSvc := newServices(stores, audits)

	err := storeSvc.Reset(context.Background(), "missing")
	assert.ErrorIs(t, err, application.ErrStoreNotFound)
}

func TestCreateStoreValidation(t *testing.T) {
	stores := newFakeStoreRepo()
	audits := newFakeAuditRepo()
	_, storeSvc := newServices(stores, audits)

	var validationErr *application.ValidationError
	_, err := storeSvc.Create(context.Background(), application.CreateStoreCommand{Name: "駅前本店"})
	assert.ErrorAs(t, err, &validationErr)

	store, err := storeSvc.Create(context.Background(), application.CreateStoreCommand{Code: " ST-0001 ", Name: " 駅前本店 "})
	require.NoError(t, err)
	assert.Equal(t, "ST-0001", store.Code)
	assert.Equal(t, domain.StatusNotAudited, store.Status)
}
