package domain

import "time"

// Audit is one field visit to a store by one user, with zero-or-more
// photos and an optional pass/fail judgment.
type Audit struct {
	ID      string
	UserID  string
	StoreID string
	// Result holds the stored judgment. When Placeholder is true the
	// value is a neutral pass marker written for storage purposes only
	// and must not influence status derivation.
	Result             Result
	Placeholder        bool
	Notes              string
	AuditDate          AuditDate
	ExpectedImageCount int
	Images             []AuditImage
	CreatedAt          time.Time
}

// HasEvidence reports whether the audit carries at least one photo.
func (a Audit) HasEvidence() bool {
	return len(a.Images) > 0
}

// EffectiveResult returns the judgment to use for status derivation.
// Placeholder audits carry no judgment.
func (a Audit) EffectiveResult() (Result, bool) {
	if a.Placeholder {
		return "", false
	}
	switch a.Result {
	case ResultPass, ResultFail:
		return a.Result, true
	}
	return "", false
}

// AuditImage stores one uploaded photo reference with its capture metadata.
// The hosted URL points at the watermarked, permanently retrievable image.
type AuditImage struct {
	ID                string
	ImageURL          string
	ReferenceImageURL string
	Latitude          *float64
	Longitude         *float64
	CapturedAt        time.Time
	UploadedAt        time.Time
}
