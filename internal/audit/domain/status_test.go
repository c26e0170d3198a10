package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func auditWithResult(result Result, images int) Audit {
	return Audit{Result: result, Images: make([]AuditImage, images)}
}

func placeholderAudit(images int) Audit {
	return Audit{Result: ResultPass, Placeholder: true, Images: make([]AuditImage, images)}
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name   string
		audits []Audit
		want   Status
	}{
		{
			name:   "no audits",
			audits: nil,
			want:   StatusNotAudited,
		},
		{
			name:   "single pass",
			audits: []Audit{auditWithResult(ResultPass, 3)},
			want:   StatusPassed,
		},
		{
			name:   "single fail",
			audits: []Audit{auditWithResult(ResultFail, 3)},
			want:   StatusFailed,
		},
		{
			name: "pass wins over fail regardless of order",
			audits: []Audit{
				auditWithResult(ResultFail, 3),
				auditWithResult(ResultPass, 0),
			},
			want: StatusPassed,
		},
		{
			name: "fail after pass still resolves to passed",
			audits: []Audit{
				auditWithResult(ResultPass, 0),
				auditWithResult(ResultFail, 3),
			},
			want: StatusPassed,
		},
		{
			name:   "placeholder with images is audited",
			audits: []Audit{placeholderAudit(1)},
			want:   StatusAudited,
		},
		{
			name:   "placeholder without images is not audited",
			audits: []Audit{placeholderAudit(0)},
			want:   StatusNotAudited,
		},
		{
			name: "placeholder pass marker does not count as judgment",
			audits: []Audit{
				placeholderAudit(3),
				auditWithResult(ResultFail, 0),
			},
			want: StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.audits))
		})
	}
}

func TestDeriveStatusBatchMatchesSingle(t *testing.T) {
	// 一括再計算が単発と同じ優先順位になることの回帰テスト。
	histories := [][]Audit{
		{auditWithResult(ResultPass, 3), auditWithResult(ResultFail, 3)},
		{auditWithResult(ResultFail, 3), auditWithResult(ResultPass, 3)},
		{placeholderAudit(2)},
		{},
	}
	want := []Status{StatusPassed, StatusPassed, StatusAudited, StatusNotAudited}
	for i, audits := range histories {
		assert.Equal(t, want[i], DeriveStatus(audits))
	}
}
