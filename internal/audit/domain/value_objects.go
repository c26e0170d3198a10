package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Status is the lifecycle status derived from a store's audit history.
type Status string

const (
	StatusNotAudited Status = "not_audited"
	StatusAudited    Status = "audited"
	StatusPassed     Status = "passed"
	StatusFailed     Status = "failed"
)

func NewStatus(value string) (Status, error) {
	trimmed := strings.TrimSpace(value)
	switch Status(trimmed) {
	case StatusNotAudited, StatusAudited, StatusPassed, StatusFailed:
		return Status(trimmed), nil
	}
	return "", fmt.Errorf("invalid status: %s", value)
}

func (s Status) String() string {
	return string(s)
}

// Result is a pass/fail judgment attached to an audit.
type Result string

const (
	ResultPass Result = "pass"
	ResultFail Result = "fail"
)

// NewResult accepts pass/fail case-insensitively.
func NewResult(value string) (Result, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	switch Result(trimmed) {
	case ResultPass, ResultFail:
		return Result(trimmed), nil
	}
	return "", fmt.Errorf("invalid result: %s", value)
}

func (r Result) String() string {
	return string(r)
}

// AuditDate is the calendar day an audit represents, which may differ
// from the creation timestamp.
type AuditDate string

const auditDateLayout = "2006-01-02"

func NewAuditDate(value string) (AuditDate, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("audit date is required")
	}
	if _, err := time.Parse(auditDateLayout, trimmed); err != nil {
		return "", fmt.Errorf("invalid audit date: %w", err)
	}
	return AuditDate(trimmed), nil
}

// AuditDateOf truncates a point in time to its calendar day.
func AuditDateOf(t time.Time) AuditDate {
	return AuditDate(t.Format(auditDateLayout))
}

func (d AuditDate) String() string {
	return string(d)
}

// Before reports whether d is an earlier calendar day than other.
// Values are zero-padded ISO dates so string order matches day order.
func (d AuditDate) Before(other AuditDate) bool {
	return string(d) < string(other)
}

// Notes is free-text entered by the field user.
type Notes string

func NewNotes(value string) (Notes, error) {
	trimmed := strings.TrimSpace(value)
	if utf8.RuneCountInString(trimmed) > MaxNotesRunes {
		return "", fmt.Errorf("notes must be <= %d runes", MaxNotesRunes)
	}
	return Notes(trimmed), nil
}

func (n Notes) String() string {
	return string(n)
}

// FailedReason explains why a store was marked failed. Required when and
// only when the status is failed.
type FailedReason string

func NewFailedReason(value string) (FailedReason, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("failed reason is required")
	}
	if utf8.RuneCountInString(trimmed) > MaxNotesRunes {
		return "", fmt.Errorf("failed reason must be <= %d runes", MaxNotesRunes)
	}
	return FailedReason(trimmed), nil
}

func (f FailedReason) String() string {
	return string(f)
}

// MaxNotesRunes limits audit notes and failure reasons.
const MaxNotesRunes = 2000
