package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResult(t *testing.T) {
	result, err := NewResult(" PASS ")
	require.NoError(t, err)
	assert.Equal(t, ResultPass, result)

	result, err = NewResult("Fail")
	require.NoError(t, err)
	assert.Equal(t, ResultFail, result)

	_, err = NewResult("maybe")
	assert.Error(t, err)
}

func TestNewAuditDate(t *testing.T) {
	date, err := NewAuditDate("2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-30", date.String())

	_, err = NewAuditDate("30/08/2026")
	assert.Error(t, err)

	_, err = NewAuditDate("")
	assert.Error(t, err)
}

func TestAuditDateBefore(t *testing.T) {
	earlier := AuditDateOf(time.Date(2026, 8, 29, 23, 59, 0, 0, time.UTC))
	later := AuditDateOf(time.Date(2026, 8, 30, 0, 1, 0, 0, time.UTC))
	assert.True(t, earlier.Before(later))
	assert.False(t, later.Before(earlier))
	assert.False(t, later.Before(later))
}

func TestNewNotesLimit(t *testing.T) {
	_, err := NewNotes(strings.Repeat("あ", MaxNotesRunes))
	assert.NoError(t, err)

	_, err = NewNotes(strings.Repeat("あ", MaxNotesRunes+1))
	assert.Error(t, err)
}

func TestNewFailedReasonRequired(t *testing.T) {
	_, err := NewFailedReason("   ")
	assert.Error(t, err)

	reason, err := NewFailedReason("棚が基準を満たしていない")
	require.NoError(t, err)
	assert.Equal(t, "棚が基準を満たしていない", reason.String())
}
