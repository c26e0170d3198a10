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

type createAuditRequest struct {
	UserID             string `json:"userId,omitempty"`
	StoreID            string `json:"storeId"`
	Result             string `json:"result,omitempty"`
	Notes              string `json:"notes,omitempty"`
	AuditDate          string `json:"auditDate,omitempty"`
	ExpectedImageCount int    `json:"expectedImageCount,omitempty"`
	SkipStatusUpdate   bool   `json:"skipStatusUpdate,omitempty"`
}

func (h *Handler) auditCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteError(h.logger, w, http.StatusInternalServerError, "認証情報を取得できませんでした")
			return
		}

		defer r.Body.Close()
		var req createAuditRequest
		decoder := json.NewDecoder(io.LimitReader(r.Body, common.MaxAuditRequestBody))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, fmt.Sprintf("リクエストの形式が不正です: %v", err))
			return
		}

		// userId はトークン由来を正とし、ボディ指定は本人分のみ許可する。
		userID := strings.TrimSpace(req.UserID)
		if userID == "" {
			userID = user.ID
		} else if userID != user.ID {
			common.WriteError(h.logger, w, http.StatusForbidden, "他ユーザー名義の監査は登録できません")
			return
		}

		// 監査日の既定値はサーバー設定のタイムゾーンでの「今日」。
		auditDate := strings.TrimSpace(req.AuditDate)
		if auditDate == "" {
			auditDate = time.Now().In(h.location).Format("2006-01-02")
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		audit, err := h.audits.Create(ctx, application.CreateAuditCommand{
			UserID:             userID,
			StoreID:            req.StoreID,
			Result:             req.Result,
			Notes:              req.Notes,
			AuditDate:          auditDate,
			ExpectedImageCount: req.ExpectedImageCount,
			SkipStatusUpdate:   req.SkipStatusUpdate,
		})
		if err != nil {
			h.writeServiceError(w, err, "監査の保存に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusCreated, buildAuditResponse(*audit))
	}
}

func (h *Handler) auditFinalizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idParam := strings.TrimSpace(chi.URLParam(r, "id"))
		if idParam == "" {
			common.WriteError(h.logger, w, http.StatusBadRequest, "監査IDが指定されていません")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		result, err := h.audits.Finalize(ctx, idParam)
		if err != nil {
			h.writeServiceError(w, err, "監査の確定に失敗しました")
			return
		}

		status := "ok"
		if result.Pending {
			status = "pending"
		}
		common.WriteJSON(h.logger, w, http.StatusOK, finalizeResponse{
			Status:        status,
			StoreStatus:   result.Status.String(),
			Pending:       result.Pending,
			MissingImages: result.Missing,
			ImageCount:    len(result.Audit.Images),
		})
	}
}
