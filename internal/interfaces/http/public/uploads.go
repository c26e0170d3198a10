package public

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sngm3741/field-audit-services/api/internal/audit/application"
	"github.com/sngm3741/field-audit-services/api/internal/infrastructure/media"
	"github.com/sngm3741/field-audit-services/api/internal/interfaces/http/common"
)

type uploadImageResponse struct {
	Status string        `json:"status"`
	Image  imageResponse `json:"image"`
}

// imageUploadHandler は multipart で受けた撮影画像を透かしサービスへ
// 保存し、得られた公開URLを監査へ追記する。
func (h *Handler) imageUploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(common.MaxAuditImageBytes); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "multipart リクエストの解析に失敗しました")
			return
		}

		auditID := strings.TrimSpace(r.FormValue("auditId"))
		if auditID == "" {
			common.WriteError(h.logger, w, http.StatusBadRequest, "auditId は必須です")
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "画像ファイルが添付されていません")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, common.MaxAuditImageBytes+1))
		if err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "画像の読み込みに失敗しました")
			return
		}
		if len(data) == 0 {
			common.WriteError(h.logger, w, http.StatusBadRequest, "画像データが空です")
			return
		}
		if len(data) > common.MaxAuditImageBytes {
			common.WriteError(h.logger, w, http.StatusRequestEntityTooLarge, "画像サイズが上限を超えています")
			return
		}

		latitude, err := common.ParseFloatPtr(r.FormValue("latitude"))
		if err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "latitude の形式が不正です")
			return
		}
		longitude, err := common.ParseFloatPtr(r.FormValue("longitude"))
		if err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "longitude の形式が不正です")
			return
		}

		capturedAt := time.Now().UTC()
		timestamp := strings.TrimSpace(r.FormValue("timestamp"))
		if timestamp != "" {
			parsed, err := time.Parse(time.RFC3339, timestamp)
			if err != nil {
				common.WriteError(h.logger, w, http.StatusBadRequest, "timestamp は RFC3339 形式で指定してください")
				return
			}
			capturedAt = parsed
		}
		tzOffset := 0
		if raw := strings.TrimSpace(r.FormValue("timezoneOffset")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				common.WriteError(h.logger, w, http.StatusBadRequest, "timezoneOffset の形式が不正です")
				return
			}
			tzOffset = parsed
		}

		// 透かしサービスは外部I/Oのため multipart 全体より長めに待つ。
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		uploaded, err := h.uploader.Upload(ctx, media.UploadRequest{
			Data:                  data,
			ContentType:           header.Header.Get("Content-Type"),
			AuditID:               auditID,
			Latitude:              latitude,
			Longitude:             longitude,
			CapturedAt:            capturedAt,
			TimezoneOffsetMinutes: tzOffset,
		})
		if err != nil {
			h.logger.Printf("画像アップロードに失敗: audit=%s err=%v", auditID, err)
			common.WriteError(h.logger, w, http.StatusBadGateway, "画像の保存に失敗しました")
			return
		}

		image, err := h.audits.AddImage(ctx, auditID, application.AddImageCommand{
			ImageURL:   uploaded.ImageURL,
			Latitude:   latitude,
			Longitude:  longitude,
			CapturedAt: capturedAt.Format(time.RFC3339),
		})
		if err != nil {
			h.writeServiceError(w, err, "画像情報の保存に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusCreated, uploadImageResponse{
			Status: "ok",
			Image: imageResponse{
				ID:                image.ID,
				ImageURL:          image.ImageURL,
				ReferenceImageURL: image.ReferenceImageURL,
				Latitude:          image.Latitude,
				Longitude:         image.Longitude,
				CapturedAt:        formatTime(image.CapturedAt),
				UploadedAt:        formatTime(image.UploadedAt),
			},
		})
	}
}
