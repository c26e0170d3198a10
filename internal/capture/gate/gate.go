// Package gate は「今日の分のキャプチャを開始できるか」を店舗詳細の
// 監査履歴から判定する。判定はクライアント側の助言的なもので、確定的な
// 重複排除はサーバー側の同日チェックが担う。
package gate

import (
	"strings"
	"sync"
	"time"

	"github.com/sngm3741/field-audit-services/api/internal/capture/backend"
)

// DayFormat is the calendar-day key shared with the server's audit date.
const DayFormat = "2006-01-02"

// Decision is the gate's verdict for one store on one day.
type Decision int

const (
	// DecisionHidden hides the capture UI entirely: the user already
	// captured this store today.
	DecisionHidden Decision = iota
	// DecisionAllowed shows the capture entry point without prompting.
	DecisionAllowed
	// DecisionPrompt shows the capture entry point and asks the user to
	// start today's audit.
	DecisionPrompt
)

func (d Decision) String() string {
	switch d {
	case DecisionHidden:
		return "hidden"
	case DecisionPrompt:
		return "prompt"
	default:
		return "allowed"
	}
}

// Today returns the calendar-day key for now in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return now.In(loc).Format(DayFormat)
}

// latestAuditDate returns the newest audit date among the user's own
// audits. 日付キーはゼロ埋め固定長なので文字列比較で順序が決まる。
func latestAuditDate(userID string, audits []backend.Audit) string {
	latest := ""
	for _, audit := range audits {
		if audit.UserID != userID {
			continue
		}
		if date := strings.TrimSpace(audit.AuditDate); date > latest {
			latest = date
		}
	}
	return latest
}

// CanStartToday reports whether the user may begin a new capture session
// for this store today. First-ever audits are always allowed. A
// future-dated audit (clock skew, bad data) keeps blocking until that
// day arrives; allowing it through would invite a same-day duplicate
// once the clocks agree.
func CanStartToday(userID string, audits []backend.Audit, today string) bool {
	return latestAuditDate(userID, audits) < today
}

// Evaluate combines the start check with the prompt signal. A prompt is
// shown at most once per store per day; a declined prompt downgrades to
// DecisionAllowed so the store stays usable in its last-known state.
func Evaluate(userID, storeID string, audits []backend.Audit, today string, suppressor *PromptSuppressor) Decision {
	latest := latestAuditDate(userID, audits)
	if latest >= today && latest != "" {
		return DecisionHidden
	}
	if latest == "" {
		// 初回監査。入口は出すが押し付けはしない。
		return DecisionAllowed
	}
	if suppressor != nil && suppressor.IsSuppressed(storeID, today) {
		return DecisionAllowed
	}
	return DecisionPrompt
}

// PromptSuppressor remembers declined prompts per (store, day) so the
// user is asked at most once per calendar day.
type PromptSuppressor struct {
	mu       sync.Mutex
	declined map[string]struct{}
}

func NewPromptSuppressor() *PromptSuppressor {
	return &PromptSuppressor{declined: make(map[string]struct{})}
}

// Decline records that the user dismissed today's prompt for the store.
func (s *PromptSuppressor) Decline(storeID, day string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.declined[storeID+"/"+day] = struct{}{}
}

// IsSuppressed reports whether the prompt was already declined today.
func (s *PromptSuppressor) IsSuppressed(storeID, day string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.declined[storeID+"/"+day]
	return ok
}
