package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sngm3741/field-audit-services/api/internal/audit/application"
	"github.com/sngm3741/field-audit-services/api/internal/audit/domain"
	"github.com/sngm3741/field-audit-services/api/internal/interfaces/http/common"
)

type adminStoreResponse struct {
	ID           string   `json:"id"`
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Status       string   `json:"status"`
	FailedReason string   `json:"failedReason,omitempty"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	AuditCount   int      `json:"auditCount,omitempty"`
}

func buildAdminStoreResponse(store domain.Store) adminStoreResponse {
	return adminStoreResponse{
		ID:           store.ID,
		Code:         store.Code,
		Name:         store.Name,
		Status:       store.Status.String(),
		FailedReason: store.FailedReason,
		Latitude:     store.Latitude,
		Longitude:    store.Longitude,
	}
}

func (h *Handler) storeListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		query := r.URL.Query()
		limit, _ := common.ParsePositiveInt(query.Get("limit"), common.DefaultStoreListLimit)
		stores, err := h.storeService.List(ctx, application.StoreFilter{
			Status:  strings.TrimSpace(query.Get("status")),
			Keyword: strings.TrimSpace(query.Get("keyword")),
			Limit:   limit,
		})
		if err != nil {
			h.logger.Printf("admin store list failed: %v", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "店舗一覧の取得に失敗しました")
			return
		}

		items := make([]adminStoreResponse, 0, len(stores))
		for _, store := range stores {
			items = append(items, buildAdminStoreResponse(store))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{
			"items": items,
			"total": len(items),
		})
	}
}

func (h *Handler) storeDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		idParam := strings.TrimSpace(chi.URLParam(r, "id"))
		detail, err := h.storeService.Detail(ctx, idParam)
		if err != nil {
			h.writeServiceError(w, err, "店舗情報の取得に失敗しました")
			return
		}

		response := buildAdminStoreResponse(detail.Store)
		response.AuditCount = len(detail.Audits)
		common.WriteJSON(h.logger, w, http.StatusOK, response)
	}
}

type createStoreRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (h *Handler) storeCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req createStoreRequest
		decoder := json.NewDecoder(io.LimitReader(r.Body, common.MaxAuditRequestBody))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, fmt.Sprintf("リクエストの形式が不正です: %v", err))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		store, err := h.storeService.Create(ctx, application.CreateStoreCommand{
			Code: req.Code,
			Name: req.Name,
		})
		if err != nil {
			h.writeServiceError(w, err, "店舗の登録に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusCreated, buildAdminStoreResponse(*store))
	}
}

type updateStatusRequest struct {
	Status       string `json:"status"`
	FailedReason string `json:"failedReason,omitempty"`
}

// storeStatusHandler は明示的な合否判定の書き込み口。failed には理由が必須。
func (h *Handler) storeStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idParam := strings.TrimSpace(chi.URLParam(r, "id"))

		defer r.Body.Close()
		var req updateStatusRequest
		decoder := json.NewDecoder(io.LimitReader(r.Body, common.MaxAuditRequestBody))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, fmt.Sprintf("リクエストの形式が不正です: %v", err))
			return
		}

		status, err := domain.NewStatus(req.Status)
		if err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "ステータスの値が不正です")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := h.storeService.UpdateStatus(ctx, idParam, status, req.FailedReason); err != nil {
			h.writeServiceError(w, err, "ステータスの更新に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// storeResetHandler は監査データの全削除とステータス初期化を行う。
func (h *Handler) storeResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idParam := strings.TrimSpace(chi.URLParam(r, "id"))

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		if err := h.storeService.Reset(ctx, idParam); err != nil {
			h.writeServiceError(w, err, "監査データのリセットに失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// storeRecomputeHandler は全店舗のステータスを一括再導出する。単店舗の
// 再計算と同じ導出関数を通るため、優先順位が食い違うことはない。
func (h *Handler) storeRecomputeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
		defer cancel()

		updated, err := h.storeService.RecomputeAll(ctx)
		if err != nil {
			h.logger.Printf("batch recompute failed after %d stores: %v", updated, err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "ステータスの一括再計算に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{
			"status":  "ok",
			"updated": updated,
		})
	}
}

// writeServiceError はアプリケーション層のエラーを HTTP ステータスへ変換する。
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	var validation *application.ValidationError
	switch {
	case errors.As(err, &validation):
		common.WriteError(h.logger, w, http.StatusBadRequest, validation.Message)
	case errors.Is(err, application.ErrStoreNotFound):
		common.WriteError(h.logger, w, http.StatusNotFound, "店舗が見つかりません")
	default:
		h.logger.Printf("%s: %v", fallback, err)
		common.WriteError(h.logger, w, http.StatusInternalServerError, fallback)
	}
}
