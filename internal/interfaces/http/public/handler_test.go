package public_test

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/field-audit-services/api/internal/audit/application"
	"github.com/sngm3741/field-audit-services/api/internal/audit/domain"
	"github.com/sngm3741/field-audit-services/api/internal/interfaces/http/common"
	"github.com/sngm3741/field-audit-services/api/internal/interfaces/http/public"
)

type stubAuditService struct {
	createFn   func(ctx context.Context, cmd application.CreateAuditCommand) (*domain.Audit, error)
	finalizeFn func(ctx context.Context, auditID string) (*application.FinalizeResult, error)
}

func (s *stubAuditService) Create(ctx context.Context, cmd application.CreateAuditCommand) (*domain.Audit, error) {
	return s.createFn(ctx, cmd)
}

func (s *stubAuditService) AddImage(_ context.Context, _ string, _ application.AddImageCommand) (*domain.AuditImage, error) {
	return &domain.AuditImage{}, nil
}

func (s *stubAuditService) Finalize(ctx context.Context, auditID string) (*application.FinalizeResult, error) {
	return s.finalizeFn(ctx, auditID)
}

type stubStoreService struct {
	detailFn func(ctx context.Context, id string) (*domain.StoreDetail, error)
}

func (s *stubStoreService) List(_ context.Context, _ application.StoreFilter) ([]domain.Store, error) {
	return nil, nil
}

func (s *stubStoreService) Detail(ctx context.Context, id string) (*domain.StoreDetail, error) {
	return s.detailFn(ctx, id)
}

func (s *stubStoreService) Create(_ context.Context, _ application.CreateStoreCommand) (*domain.Store, error) {
	return nil, nil
}

func (s *stubStoreService) UpdateStatus(_ context.Context, _ string, _ domain.Status, _ string) error {
	return nil
}

func (s *stubStoreService) UpdateLocation(_ context.Context, _ string, _, _ *float64) error {
	return nil
}

func (s *stubStoreService) Recompute(_ context.Context, _ string, _ string) (domain.Status, error) {
	return domain.StatusNotAudited, nil
}

func (s *stubStoreService) RecomputeAll(_ context.Context) (int, error) { return 0, nil }

func (s *stubStoreService) Reset(_ context.Context, _ string) error { return nil }

func testUserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := common.ContextWithUser(r.Context(), common.AuthenticatedUser{ID: "user-1", Name: "青木"})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newTestRouter(audits application.AuditService, stores application.StoreService) chi.Router {
	handler := public.NewHandler(public.Config{
		Logger: log.New(io.Discard, "", 0),
		Audits: audits,
		Stores: stores,
	})
	router := chi.NewRouter()
	handler.Register(router, testUserMiddleware)
	return router
}

func TestAuditCreateUsesTokenUser(t *testing.T) {
	audits := &stubAuditService{
		createFn: func(_ context.Context, cmd application.CreateAuditCommand) (*domain.Audit, error) {
			assert.Equal(t, "user-1", cmd.UserID)
			return &domain.Audit{ID: "audit-1", UserID: cmd.UserID, StoreID: cmd.StoreID, AuditDate: "2026-08-30"}, nil
		},
	}
	router := newTestRouter(audits, &stubStoreService{})

	body := strings.NewReader(`{"storeId":"store-1","skipStatusUpdate":true}`)
	req := httptest.NewRequest(http.MethodPost, "/audits", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID     string `json:"id"`
		UserID string `json:"userId"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "audit-1", resp.ID)
	assert.Equal(t, "user-1", resp.UserID)
}

func TestAuditCreateRejectsOtherUser(t *testing.T) {
	audits := &stubAuditService{
		createFn: func(_ context.Context, _ application.CreateAuditCommand) (*domain.Audit, error) {
			t.Fatal("サービス層まで到達してはいけない")
			return nil, nil
		},
	}
	router := newTestRouter(audits, &stubStoreService{})

	body := strings.NewReader(`{"userId":"user-2","storeId":"store-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/audits", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuditCreateDuplicateMapsToConflict(t *testing.T) {
	audits := &stubAuditService{
		createFn: func(_ context.Context, _ application.CreateAuditCommand) (*domain.Audit, error) {
			return nil, application.ErrDuplicateAudit
		},
	}
	router := newTestRouter(audits, &stubStoreService{})

	body := strings.NewReader(`{"storeId":"store-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/audits", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "本日分の監査は既に登録されています")
}

func TestStoreDetailNotFound(t *testing.T) {
	stores := &stubStoreService{
		detailFn: func(_ context.Context, _ string) (*domain.StoreDetail, error) {
			return nil, application.ErrStoreNotFound
		},
	}
	router := newTestRouter(&stubAuditService{}, stores)

	req := httptest.NewRequest(http.MethodGet, "/stores/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStoreDetailEmbedsAuditImages(t *testing.T) {
	lat := 35.68
	stores := &stubStoreService{
		detailFn: func(_ context.Context, id string) (*domain.StoreDetail, error) {
			return &domain.StoreDetail{
				Store: domain.Store{ID: id, Code: "ST-0001", Name: "駅前本店", Status: domain.StatusAudited},
				Audits: []domain.Audit{{
					ID:        "audit-1",
					UserID:    "user-1",
					StoreID:   id,
					AuditDate: "2026-08-30",
					Images:    []domain.AuditImage{{ID: "img-1", ImageURL: "https://images.example.com/a.jpg", Latitude: &lat}},
				}},
			}, nil
		},
	}
	router := newTestRouter(&stubAuditService{}, stores)

	req := httptest.NewRequest(http.MethodGet, "/stores/store-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Store struct {
			Status string `json:"status"`
		} `json:"store"`
		Audits []struct {
			Images []struct {
				ImageURL string `json:"imageUrl"`
			} `json:"images"`
		} `json:"audits"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "audited", resp.Store.Status)
	require.Len(t, resp.Audits, 1)
	require.Len(t, resp.Audits[0].Images, 1)
	assert.Equal(t, "https://images.example.com/a.jpg", resp.Audits[0].Images[0].ImageURL)
}

func TestStoreLocationRejectsUnknownFields(t *testing.T) {
	router := newTestRouter(&stubAuditService{}, &stubStoreService{})

	body := strings.NewReader(`{"latitude":35.68,"longitude":139.76,"name":"書き換え"}`)
	req := httptest.NewRequest(http.MethodPut, "/stores/store-1", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
