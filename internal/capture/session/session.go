// Package session は1回の店舗訪問キャプチャフローを統括する。
// カメラを開く → 3枚撮影 → メモ入力 → コミット（監査登録と並列
// アップロード）→ 確定・再取得、の状態機械を実装する。コミット前の
// 状態はサーバーに一切影響しない。
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sngm3741/field-audit-services/api/internal/capture/backend"
	"github.com/sngm3741/field-audit-services/api/internal/capture/device"
)

// SlotCount is the number of photos one completed session carries.
const SlotCount = 3

// State identifies where the session is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateSlotCapturing
	StateSlotFilled
	StateAllFilled
	StateNotesEntry
	StateUploading
	StateDone
	StateCancelled
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSlotCapturing:
		return "slot-capturing"
	case StateSlotFilled:
		return "slot-filled"
	case StateAllFilled:
		return "all-filled"
	case StateNotesEntry:
		return "notes-entry"
	case StateUploading:
		return "uploading"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	default:
		return "error"
	}
}

func (s State) terminal() bool {
	return s == StateDone || s == StateCancelled
}

// Capturer is the camera surface the session drives. *device.Capturer
// satisfies it.
type Capturer interface {
	Open(ctx context.Context) error
	SwitchFacing(ctx context.Context) error
	Capture(ctx context.Context) (*device.CapturedImage, error)
	Close() error
}

// Result is the outcome of a fully committed session.
type Result struct {
	Audit    *backend.Audit
	Finalize *backend.FinalizeResult
	Store    *backend.StoreDetail
}

// Config defines the dependencies of one capture session.
type Config struct {
	API      backend.API
	Capturer Capturer
	Logger   *log.Logger
	UserID   string
	StoreID  string
	Location *time.Location
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// Session is a single-store capture flow. All methods are safe for
// concurrent use, though the UI drives them sequentially in practice.
type Session struct {
	api      backend.API
	capturer Capturer
	logger   *log.Logger
	userID   string
	storeID  string
	location *time.Location
	now      func() time.Time

	mu    sync.Mutex
	state State
	slots [SlotCount]*device.CapturedImage
	notes string
}

// New constructs an idle session for one store visit.
func New(cfg Config) *Session {
	location := cfg.Location
	if location == nil {
		location = time.Local
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Session{
		api:      cfg.API,
		capturer: cfg.Capturer,
		logger:   cfg.Logger,
		userID:   cfg.UserID,
		storeID:  cfg.StoreID,
		location: location,
		now:      now,
		state:    StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Slots returns a copy of the captured images, nil for empty slots.
func (s *Session) Slots() [SlotCount]*device.CapturedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots
}

// Start opens the camera and moves the session out of Idle.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.terminal() {
		return ErrSessionClosed
	}
	if s.state != StateIdle {
		return ErrInvalidState
	}
	if err := s.capturer.Open(ctx); err != nil {
		return err
	}
	s.state = StateSlotCapturing
	return nil
}

// SwitchFacing flips the camera while capturing.
func (s *Session) SwitchFacing(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.terminal() {
		return ErrSessionClosed
	}
	return s.capturer.SwitchFacing(ctx)
}

// CaptureSlot takes one photo into the given slot. Filled slots may be
// recaptured; the new image replaces the old one.
func (s *Session) CaptureSlot(ctx context.Context, slot int) (*device.CapturedImage, error) {
	if slot < 0 || slot >= SlotCount {
		return nil, ErrSlotOutOfRange
	}

	s.mu.Lock()
	if s.state.terminal() {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	switch s.state {
	case StateSlotCapturing, StateSlotFilled, StateAllFilled, StateNotesEntry:
	default:
		s.mu.Unlock()
		return nil, ErrInvalidState
	}
	s.state = StateSlotCapturing
	s.mu.Unlock()

	// コミット失敗でメモ入力へ戻った後はカメラを返却済みのことがある。
	// Open は冪等なので撮り直しの前に必ず通す。
	if err := s.capturer.Open(ctx); err != nil {
		s.mu.Lock()
		s.state = s.stateAfterSlotsLocked()
		s.mu.Unlock()
		return nil, err
	}

	// 撮影中はロックを持たない。キャプチャは数秒かかり得る。
	image, err := s.capturer.Capture(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// 失敗してもスロットは空のまま維持し、状態だけ戻す。
		s.state = s.stateAfterSlotsLocked()
		return nil, err
	}
	s.slots[slot] = image
	s.state = s.stateAfterSlotsLocked()
	return image, nil
}

// DiscardSlot empties one slot so it can be recaptured.
func (s *Session) DiscardSlot(slot int) error {
	if slot < 0 || slot >= SlotCount {
		return ErrSlotOutOfRange
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.terminal() || s.state == StateUploading {
		return ErrInvalidState
	}
	s.slots[slot] = nil
	s.state = s.stateAfterSlotsLocked()
	return nil
}

// EnterNotes moves into notes entry once all slots are filled.
func (s *Session) EnterNotes() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAllFilled && s.state != StateNotesEntry {
		return ErrInvalidState
	}
	s.state = StateNotesEntry
	return nil
}

// SetNotes stores the free-text notes for the audit.
func (s *Session) SetNotes(notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = notes
}

func (s *Session) stateAfterSlotsLocked() State {
	filled := 0
	for _, slot := range s.slots {
		if slot != nil {
			filled++
		}
	}
	switch {
	case filled == SlotCount:
		return StateAllFilled
	case filled > 0:
		return StateSlotFilled
	default:
		return StateSlotCapturing
	}
}

// Commit is the single commit point: register the audit, upload the
// three photos in parallel, record the store location from the first
// photo, finalize, and refetch the store detail.
//
// 監査登録に失敗した場合は何も永続化されず NotesEntry に戻る。登録後に
// アップロードが一部失敗した場合、監査はそのまま残り PartialUploadError
// で利用者へ明示する（ロールバックはしない）。
func (s *Session) Commit(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	if s.state.terminal() {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.state != StateNotesEntry && s.state != StateAllFilled {
		s.mu.Unlock()
		return nil, ErrInvalidState
	}
	for _, slot := range s.slots {
		if slot == nil {
			s.mu.Unlock()
			return nil, ErrInvalidState
		}
	}
	slots := s.slots
	notes := s.notes
	s.state = StateUploading
	s.mu.Unlock()

	// 撮影は終わっているのでカメラは先に返す。
	s.closeCamera()

	audit, err := s.api.CreateAudit(ctx, backend.CreateAuditRequest{
		UserID:             s.userID,
		StoreID:            s.storeID,
		Notes:              notes,
		AuditDate:          s.now().In(s.location).Format("2006-01-02"),
		ExpectedImageCount: SlotCount,
		SkipStatusUpdate:   true,
	})
	if err != nil {
		s.mu.Lock()
		s.state = StateNotesEntry
		s.mu.Unlock()
		return nil, &AuditCreateError{Err: err}
	}

	uploadErrs := s.uploadAll(ctx, audit.ID, slots)
	if len(uploadErrs) > 0 {
		s.mu.Lock()
		s.state = StateError
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Printf("画像アップロードが一部失敗: audit=%s failed=%d/%d",
				audit.ID, len(uploadErrs), SlotCount)
		}
		return &Result{Audit: audit}, &PartialUploadError{
			AuditID:  audit.ID,
			Uploaded: SlotCount - len(uploadErrs),
			Expected: SlotCount,
			Errs:     uploadErrs,
		}
	}

	// 1枚目の撮影座標を店舗の最終既知位置として反映する。失敗しても
	// セッション自体は成功扱い。
	if first := slots[0]; first.Latitude != nil && first.Longitude != nil {
		if err := s.api.UpdateStoreLocation(ctx, s.storeID, first.Latitude, first.Longitude); err != nil && s.logger != nil {
			s.logger.Printf("店舗位置の更新に失敗: store=%s err=%v", s.storeID, err)
		}
	}

	result := &Result{Audit: audit}
	if finalize, err := s.api.FinalizeAudit(ctx, audit.ID); err != nil {
		// ステータス再計算が走らなかった。次回閲覧時の再取得で追いつく。
		if s.logger != nil {
			s.logger.Printf("監査の確定に失敗: audit=%s err=%v", audit.ID, err)
		}
	} else {
		result.Finalize = finalize
	}

	if detail, err := s.api.StoreDetail(ctx, s.storeID, backend.FetchRefetching); err != nil {
		if s.logger != nil {
			s.logger.Printf("店舗詳細の再取得に失敗: store=%s err=%v", s.storeID, err)
		}
	} else {
		result.Store = detail
	}

	s.mu.Lock()
	s.state = StateDone
	s.mu.Unlock()
	return result, nil
}

// uploadAll fires the three uploads concurrently and joins on all of
// them. 兄弟のアップロードは互いにキャンセルしない。
func (s *Session) uploadAll(ctx context.Context, auditID string, slots [SlotCount]*device.CapturedImage) []error {
	var g errgroup.Group
	var mu sync.Mutex
	var errs []error

	for i, image := range slots {
		slot, image := i, image
		g.Go(func() error {
			_, err := s.api.UploadImage(ctx, backend.UploadImageRequest{
				AuditID:               auditID,
				Data:                  image.Data,
				MimeType:              image.MimeType,
				Latitude:              image.Latitude,
				Longitude:             image.Longitude,
				CapturedAt:            image.CapturedAt,
				TimezoneOffsetMinutes: image.TimezoneOffsetMinutes,
			})
			if err != nil {
				if s.logger != nil {
					s.logger.Printf("スロット%dのアップロードに失敗: audit=%s err=%v", slot, auditID, err)
				}
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	return errs
}

// Cancel ends the session and releases the camera synchronously.
// Callable from any state; already-terminal sessions are a no-op.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.state.terminal() {
		s.mu.Unlock()
		return
	}
	s.state = StateCancelled
	s.mu.Unlock()
	s.closeCamera()
}

// Close releases the camera without changing a terminal state. The UI
// must call it on every exit path.
func (s *Session) Close() {
	s.closeCamera()
}

func (s *Session) closeCamera() {
	if err := s.capturer.Close(); err != nil && s.logger != nil {
		s.logger.Printf("カメラの解放に失敗: %v", err)
	}
}
