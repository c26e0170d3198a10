package session

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState indicates an operation arrived in a state that does
	// not allow it (e.g. Commit before all slots are filled).
	ErrInvalidState = errors.New("現在の状態ではこの操作を実行できません")
	// ErrSlotOutOfRange indicates a slot index outside 0..2.
	ErrSlotOutOfRange = errors.New("スロット番号が不正です")
	// ErrSessionClosed indicates the session already ended.
	ErrSessionClosed = errors.New("キャプチャセッションは終了しています")
)

// AuditCreateError wraps a failed audit registration. Nothing was
// persisted server-side; the session stays in notes entry for retry.
type AuditCreateError struct {
	Err error
}

func (e *AuditCreateError) Error() string {
	return fmt.Sprintf("監査の登録に失敗しました: %v", e.Err)
}

func (e *AuditCreateError) Unwrap() error {
	return e.Err
}

// PartialUploadError reports that the audit was saved but some of the
// photo uploads failed. There is no rollback: the audit persists with
// fewer images than intended and the user must be told explicitly.
type PartialUploadError struct {
	AuditID  string
	Uploaded int
	Expected int
	Errs     []error
}

func (e *PartialUploadError) Error() string {
	return fmt.Sprintf("監査は保存されましたが、%d枚中%d枚の写真のアップロードに失敗しました",
		e.Expected, e.Expected-e.Uploaded)
}

func (e *PartialUploadError) Unwrap() error {
	if len(e.Errs) == 0 {
		return nil
	}
	return e.Errs[0]
}
