// Package media は画像を透かし入りで永続保存する外部サービスへの境界アダプタ。
// 位置情報・撮影日時のメタデータは保存時に画像へ焼き込まれ、恒久的な
// 公開URLが返る。
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadRequest は透かしサービスへ渡す画像と焼き込みメタデータ。
type UploadRequest struct {
	Data                  []byte
	ContentType           string
	AuditID               string
	Latitude              *float64
	Longitude             *float64
	CapturedAt            time.Time
	TimezoneOffsetMinutes int
}

// UploadResult は保存済み画像の公開URLを保持する。
type UploadResult struct {
	Key      string
	ImageURL string
}

// Uploader は透かし保存サービスのポート。
type Uploader interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)
}

// WatermarkClient は HTTP 経由で透かしサービスを呼び出す Uploader 実装。
type WatermarkClient struct {
	endpoint   string
	httpClient *http.Client
	logger     *log.Logger
}

// NewWatermarkClient はエンドポイントとタイムアウトを束縛したクライアントを生成する。
func NewWatermarkClient(endpoint string, timeout time.Duration, logger *log.Logger) *WatermarkClient {
	return &WatermarkClient{
		endpoint:   strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Upload は multipart で画像とメタデータを送信し、焼き込み済み画像の
// 公開URLを受け取る。
func (c *WatermarkClient) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if len(req.Data) == 0 {
		return nil, errors.New("画像データが空です")
	}
	if c.endpoint == "" {
		return nil, errors.New("透かしサービスのエンドポイントが設定されていません")
	}

	key := uuid.NewString()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	contentType := strings.TrimSpace(req.ContentType)
	if contentType == "" {
		contentType = "image/jpeg"
	}
	part, err := writer.CreateFormFile("image", key+".jpg")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"key":            key,
		"auditId":        req.AuditID,
		"contentType":    contentType,
		"timestamp":      req.CapturedAt.UTC().Format(time.RFC3339),
		"timezoneOffset": strconv.Itoa(req.TimezoneOffsetMinutes),
	}
	if req.Latitude != nil {
		fields["latitude"] = strconv.FormatFloat(*req.Latitude, 'f', -1, 64)
	}
	if req.Longitude != nil {
		fields["longitude"] = strconv.FormatFloat(*req.Longitude, 'f', -1, 64)
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/watermark", body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("透かしサービスへの接続に失敗: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if c.logger != nil {
			c.logger.Printf("透かしサービスがエラー応答: status=%d audit=%s", resp.StatusCode, req.AuditID)
		}
		return nil, fmt.Errorf("透かしサービスがエラーを返しました: status=%d", resp.StatusCode)
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("透かしサービスの応答が不正です: %w", err)
	}
	if strings.TrimSpace(payload.URL) == "" {
		return nil, errors.New("透かしサービスが画像URLを返しませんでした")
	}

	return &UploadResult{Key: key, ImageURL: payload.URL}, nil
}
