package application_test

import (
	"context"
	"fmt"
	"sort"

	"github.com/sngm3741/field-audit-services/api/internal/audit/application"
	"github.com/sngm3741/field-audit-services/api/internal/audit/domain"
)

// fakeStoreRepo is an in-memory StoreRepository recording status writes.
type fakeStoreRepo struct {
	stores      map[string]*domain.Store
	statusCalls int
}

func newFakeStoreRepo(stores ...*domain.Store) *fakeStoreRepo {
	repo := &fakeStoreRepo{stores: make(map[string]*domain.Store)}
	for _, store := range stores {
		repo.stores[store.ID] = store
	}
	return repo
}

func (r *fakeStoreRepo) Find(_ context.Context, _ application.StoreFilter) ([]domain.Store, error) {
	out := make([]domain.Store, 0, len(r.stores))
	for _, store := range r.stores {
		out = append(out, *store)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *fakeStoreRepo) FindByID(_ context.Context, id string) (*domain.Store, error) {
	store, ok := r.stores[id]
	if !ok {
		return nil, application.ErrStoreNotFound
	}
	copied := *store
	return &copied, nil
}

func (r *fakeStoreRepo) Create(_ context.Context, store *domain.Store) error {
	store.ID = fmt.Sprintf("store-%d", len(r.stores)+1)
	copied := *store
	r.stores[store.ID] = &copied
	return nil
}

func (r *fakeStoreRepo) UpdateStatus(_ context.Context, id string, status domain.Status, failedReason string) error {
	store, ok := r.stores[id]
	if !ok {
		return application.ErrStoreNotFound
	}
	store.Status = status
	store.FailedReason = failedReason
	r.statusCalls++
	return nil
}

func (r *fakeStoreRepo) UpdateLocation(_ context.Context, id string, latitude, longitude *float64) error {
	store, ok := r.stores[id]
	if !ok {
		return application.ErrStoreNotFound
	}
	store.Latitude = latitude
	store.Longitude = longitude
	return nil
}

func (r *fakeStoreRepo) ListIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.stores))
	for id := range r.stores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// fakeAuditRepo is an in-memory AuditRepository.
type fakeAuditRepo struct {
	audits map[string]*domain.Audit
	nextID int
}

func newFakeAuditRepo(audits ...*domain.Audit) *fakeAuditRepo {
	repo := &fakeAuditRepo{audits: make(map[string]*domain.Audit)}
	for _, audit := range audits {
		repo.audits[audit.ID] = audit
	}
	return repo
}

func (r *fakeAuditRepo) FindByStore(_ context.Context, storeID string) ([]domain.Audit, error) {
	out := make([]domain.Audit, 0)
	for _, audit := range r.audits {
		if audit.StoreID == storeID {
			out = append(out, *audit)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeAuditRepo) FindByID(_ context.Context, id string) (*domain.Audit, error) {
	audit, ok := r.audits[id]
	if !ok {
		return nil, application.ErrAuditNotFound
	}
	copied := *audit
	return &copied, nil
}

func (r *fakeAuditRepo) Create(_ context.Context, audit *domain.Audit) error {
	r.nextID++
	audit.ID = fmt.Sprintf("audit-%d", r.nextID)
	copied := *audit
	r.audits[audit.ID] = &copied
	return nil
}

func (r *fakeAuditRepo) AppendImage(_ context.Context, auditID string, image domain.AuditImage) error {
	audit, ok := r.audits[auditID]
	if !ok {
		return application.ErrAuditNotFound
	}
	audit.Images = append(audit.Images, image)
	return nil
}

func (r *fakeAuditRepo) ExistsForDay(_ context.Context, userID, storeID string, date domain.AuditDate) (bool, error) {
	for _, audit := range r.audits {
		if audit.UserID == userID && audit.StoreID == storeID && audit.AuditDate == date {
			return true, nil
		}
	}
	return false, nil
}

// fakeResetRepo mimics the transactional reset against the fakes.
type fakeResetRepo struct {
	stores *fakeStoreRepo
	audits *fakeAuditRepo
	calls  int
}

func (r *fakeResetRepo) Reset(_ context.Context, storeID string) error {
	r.calls++
	for id, audit := range r.audits.audits {
		if audit.StoreID == storeID {
			delete(r.audits.audits, id)
		}
	}
	if store, ok := r.stores.stores[storeID]; ok {
		store.Status = domain.StatusNotAudited
		store.FailedReason = ""
		store.Latitude = nil
		store.Longitude = nil
	}
	return nil
}
