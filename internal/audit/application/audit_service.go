package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sngm3741/field-audit-services/api/internal/audit/domain"
)

// DefaultExpectedImageCount is the per-session photo contract the
// capture client promises. The server validates it at finalize rather
// than rejecting uploads outright.
const DefaultExpectedImageCount = 3

// StatusRecomputer triggers the store status state machine. Implemented
// by StoreService; kept as a narrow port so the audit recorder does not
// depend on the full store use-case surface.
type StatusRecomputer interface {
	Recompute(ctx context.Context, storeID string, failedReason string) (domain.Status, error)
}

// auditService implements AuditService.
type auditService struct {
	audits   AuditRepository
	stores   StoreRepository
	statuses StatusRecomputer
	now      func() time.Time
}

func NewAuditService(audits AuditRepository, stores StoreRepository, statuses StatusRecomputer) AuditService {
	return &auditService{
		audits:   audits,
		stores:   stores,
		statuses: statuses,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create records one audit. When Result is omitted the audit is stored
// as a placeholder pending photo upload and the status state machine is
// not triggered regardless of SkipStatusUpdate; the recompute happens at
// finalize once images are attached.
func (s *auditService) Create(ctx context.Context, cmd CreateAuditCommand) (*domain.Audit, error) {
	userID := strings.TrimSpace(cmd.UserID)
	storeID := strings.TrimSpace(cmd.StoreID)
	if userID == "" {
		return nil, validationErrorf("ユーザーIDは必須です")
	}
	if storeID == "" {
		return nil, validationErrorf("店舗IDは必須です")
	}

	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		return nil, err
	}

	placeholder := false
	result := domain.ResultPass
	skipStatus := cmd.SkipStatusUpdate
	if raw := strings.TrimSpace(cmd.Result); raw != "" {
		parsed, err := domain.NewResult(raw)
		if err != nil {
			return nil, validationErrorf("結果は pass または fail を指定してください")
		}
		result = parsed
	} else {
		// 写真待ちのプレースホルダー。保存上は pass を入れるが
		// 判定には使わないため、ステータス更新は必ずスキップする。
		placeholder = true
		skipStatus = true
	}

	notes, err := domain.NewNotes(cmd.Notes)
	if err != nil {
		return nil, validationErrorf("メモは2000文字以内で入力してください")
	}

	now := s.now()
	auditDate := domain.AuditDateOf(now)
	if raw := strings.TrimSpace(cmd.AuditDate); raw != "" {
		parsed, err := domain.NewAuditDate(raw)
		if err != nil {
			return nil, validationErrorf("監査日は YYYY-MM-DD 形式で指定してください")
		}
		auditDate = parsed
	}

	exists, err := s.audits.ExistsForDay(ctx, userID, storeID, auditDate)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateAudit
	}

	expected := cmd.ExpectedImageCount
	if expected <= 0 {
		expected = DefaultExpectedImageCount
	}

	audit := &domain.Audit{
		UserID:             userID,
		StoreID:            storeID,
		Result:             result,
		Placeholder:        placeholder,
		Notes:              notes.String(),
		AuditDate:          auditDate,
		ExpectedImageCount: expected,
		CreatedAt:          now,
	}
	if err := s.audits.Create(ctx, audit); err != nil {
		return nil, err
	}

	if !skipStatus {
		if _, err := s.statuses.Recompute(ctx, storeID, notes.String()); err != nil {
			return nil, err
		}
	}
	return audit, nil
}

// AddImage appends one uploaded photo reference to the audit. It is a
// pure append: the status state machine runs only at finalize.
func (s *auditService) AddImage(ctx context.Context, auditID string, cmd AddImageCommand) (*domain.AuditImage, error) {
	imageURL := strings.TrimSpace(cmd.ImageURL)
	if imageURL == "" {
		return nil, validationErrorf("画像URLは必須です")
	}
	if _, err := s.audits.FindByID(ctx, auditID); err != nil {
		return nil, err
	}

	now := s.now()
	capturedAt := now
	if raw := strings.TrimSpace(cmd.CapturedAt); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, validationErrorf("撮影日時は RFC3339 形式で指定してください")
		}
		capturedAt = parsed
	}

	image := domain.AuditImage{
		ID:                uuid.NewString(),
		ImageURL:          imageURL,
		ReferenceImageURL: strings.TrimSpace(cmd.ReferenceImageURL),
		Latitude:          cmd.Latitude,
		Longitude:         cmd.Longitude,
		CapturedAt:        capturedAt,
		UploadedAt:        now,
	}
	if err := s.audits.AppendImage(ctx, auditID, image); err != nil {
		return nil, err
	}
	return &image, nil
}

// Finalize recomputes the owning store's status after image uploads and
// reports whether the audit is still short of its expected photo count.
func (s *auditService) Finalize(ctx context.Context, auditID string) (*FinalizeResult, error) {
	audit, err := s.audits.FindByID(ctx, auditID)
	if err != nil {
		return nil, err
	}

	status, err := s.statuses.Recompute(ctx, audit.StoreID, "")
	if err != nil {
		return nil, err
	}

	missing := audit.ExpectedImageCount - len(audit.Images)
	if missing < 0 {
		missing = 0
	}
	return &FinalizeResult{
		Audit:   audit,
		Status:  status,
		Pending: missing > 0,
		Missing: missing,
	}, nil
}
