package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sngm3741/field-audit-services/api/internal/capture/backend"
)

const today = "2026-08-30"

func audit(userID, date string) backend.Audit {
	return backend.Audit{UserID: userID, AuditDate: date}
}

func TestCanStartToday(t *testing.T) {
	tests := []struct {
		name   string
		audits []backend.Audit
		want   bool
	}{
		{
			name:   "no history allows first audit",
			audits: nil,
			want:   true,
		},
		{
			name:   "only other users' audits today",
			audits: []backend.Audit{audit("user-2", today)},
			want:   true,
		},
		{
			name:   "own audit today blocks",
			audits: []backend.Audit{audit("user-1", today)},
			want:   false,
		},
		{
			name:   "own audit yesterday allows",
			audits: []backend.Audit{audit("user-1", "2026-08-29")},
			want:   true,
		},
		{
			name: "latest own audit decides, not order",
			audits: []backend.Audit{
				audit("user-1", today),
				audit("user-1", "2026-08-01"),
			},
			want: false,
		},
		{
			name:   "future-dated audit keeps blocking",
			audits: []backend.Audit{audit("user-1", "2026-09-02")},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanStartToday("user-1", tt.audits, today))
		})
	}
}

func TestEvaluate(t *testing.T) {
	suppressor := NewPromptSuppressor()

	// 今日撮影済みなら入口ごと隠す。
	decision := Evaluate("user-1", "store-1", []backend.Audit{audit("user-1", today)}, today, suppressor)
	assert.Equal(t, DecisionHidden, decision)

	// 初回監査は促さずに許可のみ。
	decision = Evaluate("user-1", "store-1", nil, today, suppressor)
	assert.Equal(t, DecisionAllowed, decision)

	// 前日までの監査があればその日最初の1回だけ促す。
	history := []backend.Audit{audit("user-1", "2026-08-29")}
	decision = Evaluate("user-1", "store-1", history, today, suppressor)
	assert.Equal(t, DecisionPrompt, decision)

	suppressor.Decline("store-1", today)
	decision = Evaluate("user-1", "store-1", history, today, suppressor)
	assert.Equal(t, DecisionAllowed, decision)

	// 抑制は店舗単位。別店舗では引き続き促す。
	decision = Evaluate("user-1", "store-2", history, today, suppressor)
	assert.Equal(t, DecisionPrompt, decision)

	// 翌日にはまた促す。
	decision = Evaluate("user-1", "store-1", history, "2026-08-31", suppressor)
	assert.Equal(t, DecisionPrompt, decision)

	// 未来日付の監査（時計ズレ等）はその日が来るまで入口を隠し続ける。
	futureHistory := []backend.Audit{audit("user-1", "2026-09-02")}
	decision = Evaluate("user-1", "store-3", futureHistory, today, suppressor)
	assert.Equal(t, DecisionHidden, decision)
	decision = Evaluate("user-1", "store-3", futureHistory, "2026-09-01", suppressor)
	assert.Equal(t, DecisionHidden, decision)
	decision = Evaluate("user-1", "store-3", futureHistory, "2026-09-03", suppressor)
	assert.Equal(t, DecisionPrompt, decision)
}

func TestToday(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	// UTC 2026-08-29 16:00 は JST では 8/30。
	now := time.Date(2026, 8, 29, 16, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-30", Today(now, jst))
	assert.Equal(t, "2026-08-29", Today(now, time.UTC))
}
