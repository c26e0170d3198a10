package public

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sngm3741/field-audit-services/api/internal/audit/application"
	"github.com/sngm3741/field-audit-services/api/internal/interfaces/http/common"
)

func (h *Handler) storeListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		query := r.URL.Query()
		limit, _ := common.ParsePositiveInt(query.Get("limit"), common.DefaultStoreListLimit)

		stores, err := h.stores.List(ctx, application.StoreFilter{
			Status:  strings.TrimSpace(query.Get("status")),
			Keyword: strings.TrimSpace(query.Get("keyword")),
			Limit:   limit,
		})
		if err != nil {
			h.logger.Printf("store list fetch failed: %v", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "店舗一覧の取得に失敗しました")
			return
		}

		items := make([]storeResponse, 0, len(stores))
		for _, store := range stores {
			items = append(items, buildStoreResponse(store))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, storeListResponse{
			Items: items,
			Total: len(items),
		})
	}
}

// storeDetailHandler は店舗と監査履歴（画像込み）をまとめて返す。
// クライアントの日次キャプチャ判定とキャプチャ後の再取得が利用する。
func (h *Handler) storeDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		idParam := strings.TrimSpace(chi.URLParam(r, "id"))
		if idParam == "" {
			common.WriteError(h.logger, w, http.StatusBadRequest, "店舗IDが指定されていません")
			return
		}

		detail, err := h.stores.Detail(ctx, idParam)
		if err != nil {
			h.writeServiceError(w, err, "店舗情報の取得に失敗しました")
			return
		}

		audits := make([]auditResponse, 0, len(detail.Audits))
		for _, audit := range detail.Audits {
			audits = append(audits, buildAuditResponse(audit))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, storeDetailResponse{
			Store:  buildStoreResponse(detail.Store),
			Audits: audits,
		})
	}
}

type updateStoreRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// storeLocationHandler は部分更新エンドポイント。キャプチャフローでは
// 1枚目の撮影座標を店舗の最終既知位置として反映する用途のみに使う。
func (h *Handler) storeLocationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idParam := strings.TrimSpace(chi.URLParam(r, "id"))
		if idParam == "" {
			common.WriteError(h.logger, w, http.StatusBadRequest, "店舗IDが指定されていません")
			return
		}

		defer r.Body.Close()
		var req updateStoreRequest
		decoder := json.NewDecoder(io.LimitReader(r.Body, common.MaxAuditRequestBody))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, fmt.Sprintf("リクエストの形式が不正です: %v", err))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := h.stores.UpdateLocation(ctx, idParam, req.Latitude, req.Longitude); err != nil {
			h.writeServiceError(w, err, "店舗位置の更新に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
