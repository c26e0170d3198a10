package application

import (
	"context"
	"errors"

	"github.com/sngm3741/field-audit-services/api/internal/audit/domain"
)

var (
	// ErrStoreNotFound is returned when the target store does not exist.
	ErrStoreNotFound = errors.New("store not found")
	// ErrAuditNotFound is returned when the target audit does not exist.
	ErrAuditNotFound = errors.New("audit not found")
	// ErrDuplicateAudit is returned when the same user already has an
	// audit for the store on the same calendar day.
	ErrDuplicateAudit = errors.New("audit already exists for this day")
)

// ValidationError marks input errors the caller can correct.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(message string) error {
	return &ValidationError{Message: message}
}

// StoreRepository exposes persistence operations on stores.
type StoreRepository interface {
	Find(ctx context.Context, filter StoreFilter) ([]domain.Store, error)
	FindByID(ctx context.Context, id string) (*domain.Store, error)
	Create(ctx context.Context, store *domain.Store) error
	// UpdateStatus is the only write path into Store.Status.
	UpdateStatus(ctx context.Context, id string, status domain.Status, failedReason string) error
	UpdateLocation(ctx context.Context, id string, latitude, longitude *float64) error
	ListIDs(ctx context.Context) ([]string, error)
}

// AuditRepository exposes persistence operations on audits and their
// embedded images.
type AuditRepository interface {
	FindByStore(ctx context.Context, storeID string) ([]domain.Audit, error)
	FindByID(ctx context.Context, id string) (*domain.Audit, error)
	Create(ctx context.Context, audit *domain.Audit) error
	AppendImage(ctx context.Context, auditID string, image domain.AuditImage) error
	ExistsForDay(ctx context.Context, userID, storeID string, date domain.AuditDate) (bool, error)
}

// ResetRepository deletes a store's audits and resets its status inside
// a single all-or-nothing transaction.
type ResetRepository interface {
	Reset(ctx context.Context, storeID string) error
}

// StoreFilter expresses search criteria for stores.
type StoreFilter struct {
	Status  string
	Keyword string
	Limit   int
}

// CreateAuditCommand carries inputs for audit creation.
type CreateAuditCommand struct {
	UserID             string
	StoreID            string
	Result             string
	Notes              string
	AuditDate          string
	ExpectedImageCount int
	SkipStatusUpdate   bool
}

// AddImageCommand carries one uploaded photo reference.
type AddImageCommand struct {
	ImageURL          string
	ReferenceImageURL string
	Latitude          *float64
	Longitude         *float64
	CapturedAt        string
}

// FinalizeResult reports the post-upload recompute outcome.
type FinalizeResult struct {
	Audit   *domain.Audit
	Status  domain.Status
	Pending bool
	Missing int
}

// CreateStoreCommand carries inputs for admin store registration.
type CreateStoreCommand struct {
	Code string
	Name string
}

// AuditService describes the audit recording use-cases.
type AuditService interface {
	Create(ctx context.Context, cmd CreateAuditCommand) (*domain.Audit, error)
	AddImage(ctx context.Context, auditID string, cmd AddImageCommand) (*domain.AuditImage, error)
	Finalize(ctx context.Context, auditID string) (*FinalizeResult, error)
}

// StoreService describes store lifecycle use-cases, including the status
// state machine.
type StoreService interface {
	List(ctx context.Context, filter StoreFilter) ([]domain.Store, error)
	Detail(ctx context.Context, id string) (*domain.StoreDetail, error)
	Create(ctx context.Context, cmd CreateStoreCommand) (*domain.Store, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status, failedReason string) error
	UpdateLocation(ctx context.Context, id string, latitude, longitude *float64) error
	Recompute(ctx context.Context, id string, failedReason string) (domain.Status, error)
	RecomputeAll(ctx context.Context) (int, error)
	Reset(ctx context.Context, id string) error
}
