package public

import (
	"errors"
	"net/http"

	"github.com/sngm3741/field-audit-services/api/internal/audit/application"
	"github.com/sngm3741/field-audit-services/api/internal/interfaces/http/common"
)

// writeServiceError はアプリケーション層のエラーを HTTP ステータスへ変換する。
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	var validation *application.ValidationError
	switch {
	case errors.As(err, &validation):
		common.WriteError(h.logger, w, http.StatusBadRequest, validation.Message)
	case errors.Is(err, application.ErrStoreNotFound):
		common.WriteError(h.logger, w, http.StatusNotFound, "店舗が見つかりません")
	case errors.Is(err, application.ErrAuditNotFound):
		common.WriteError(h.logger, w, http.StatusNotFound, "監査が見つかりません")
	case errors.Is(err, application.ErrDuplicateAudit):
		common.WriteError(h.logger, w, http.StatusConflict, "本日分の監査は既に登録されています")
	default:
		h.logger.Printf("%s: %v", fallback, err)
		common.WriteError(h.logger, w, http.StatusInternalServerError, fallback)
	}
}
