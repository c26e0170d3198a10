package application

import (
	"context"
	"strings"
	"time"

	"github.com/sngm3741/field-audit-services/api/internal/audit/domain"
)

// storeService implements StoreService.
type storeService struct {
	stores StoreRepository
	audits AuditRepository
	resets ResetRepository
	now    func() time.Time
}

func NewStoreService(stores StoreRepository, audits AuditRepository, resets ResetRepository) StoreService {
	return &storeService{
		stores: stores,
		audits: audits,
		resets: resets,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *storeService) List(ctx context.Context, filter StoreFilter) ([]domain.Store, error) {
	return s.stores.Find(ctx, filter)
}

func (s *storeService) Detail(ctx context.Context, id string) (*domain.StoreDetail, error) {
	store, err := s.stores.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	audits, err := s.audits.FindByStore(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.StoreDetail{Store: *store, Audits: audits}, nil
}

func (s *storeService) Create(ctx context.Context, cmd CreateStoreCommand) (*domain.Store, error) {
	code := strings.TrimSpace(cmd.Code)
	name := strings.TrimSpace(cmd.Name)
	if code == "" {
		return nil, validationErrorf("店舗コードは必須です")
	}
	if name == "" {
		return nil, validationErrorf("店舗名は必須です")
	}
	now := s.now()
	store := &domain.Store{
		Code:      code,
		Name:      name,
		Status:    domain.StatusNotAudited,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.stores.Create(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

// UpdateStatus is the single write path into Store.Status. A failed
// status requires a non-empty reason; every other status clears it.
func (s *storeService) UpdateStatus(ctx context.Context, id string, status domain.Status, failedReason string) error {
	if _, err := domain.NewStatus(status.String()); err != nil {
		return validationErrorf("ステータスの値が不正です")
	}
	reason := strings.TrimSpace(failedReason)
	if status == domain.StatusFailed {
		if _, err := domain.NewFailedReason(reason); err != nil {
			return validationErrorf("不合格理由を指定してください")
		}
	} else {
		reason = ""
	}
	return s.stores.UpdateStatus(ctx, id, status, reason)
}

func (s *storeService) UpdateLocation(ctx context.Context, id string, latitude, longitude *float64) error {
	return s.stores.UpdateLocation(ctx, id, latitude, longitude)
}

// Recompute derives the store status from its full audit history and
// persists it. failedReason is used only when the derivation lands on
// failed; when empty, the existing reason, then the most recent failing
// audit's notes, are used as fallbacks.
func (s *storeService) Recompute(ctx context.Context, id string, failedReason string) (domain.Status, error) {
	store, err := s.stores.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	audits, err := s.audits.FindByStore(ctx, id)
	if err != nil {
		return "", err
	}

	status := domain.DeriveStatus(audits)
	reason := ""
	if status == domain.StatusFailed {
		reason = strings.TrimSpace(failedReason)
		if reason == "" {
			reason = strings.TrimSpace(store.FailedReason)
		}
		if reason == "" {
			reason = latestFailNotes(audits)
		}
		if reason == "" {
			reason = "現地監査で不合格と判定されました"
		}
	}
	if err := s.stores.UpdateStatus(ctx, id, status, reason); err != nil {
		return "", err
	}
	return status, nil
}

// RecomputeAll applies the same derivation to every store. Reusing
// Recompute keeps the pass-over-fail precedence identical between the
// batch and single-store paths.
func (s *storeService) RecomputeAll(ctx context.Context) (int, error) {
	ids, err := s.stores.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, id := range ids {
		if _, err := s.Recompute(ctx, id, ""); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// Reset deletes the store's audits (images go with them) and restores
// status/failedReason to the initial state atomically.
func (s *storeService) Reset(ctx context.Context, id string) error {
	if _, err := s.stores.FindByID(ctx, id); err != nil {
		return err
	}
	return s.resets.Reset(ctx, id)
}

func latestFailNotes(audits []domain.Audit) string {
	var notes string
	var latest time.Time
	for _, audit := range audits {
		result, ok := audit.EffectiveResult()
		if !ok || result != domain.ResultFail {
			continue
		}
		if audit.CreatedAt.After(latest) && strings.TrimSpace(audit.Notes) != "" {
			latest = audit.CreatedAt
			notes = strings.TrimSpace(audit.Notes)
		}
	}
	return notes
}
