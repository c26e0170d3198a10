// Package backend は監査APIサーバーへの型付きHTTPクライアント。
// キャプチャセッションと日次判定が共有するリクエスト・レスポンス型を
// 定義し、サーバーのエラー応答をステータスコード付きで伝播する。
package backend

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
)

// APIError is a non-2xx server response. The message is the server's
// user-facing error text when the body carried one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("APIエラー (status=%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("APIエラー (status=%d)", e.StatusCode)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// Client calls the audit API with a fixed bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient はベースURLとトークンを束縛したクライアントを生成する。
func NewClient(baseURL, token string, timeout time.Duration, logger *log.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

var _ API = (*Client)(nil)

// CreateAudit registers a new audit record and returns it with its
// server-assigned ID.
func (c *Client) CreateAudit(ctx context.Context, req CreateAuditRequest) (*Audit, error) {
	var audit Audit
	if err := c.doJSON(ctx, http.MethodPost, "/audits", req, &audit); err != nil {
		return nil, fmt.Errorf("監査の登録に失敗: %w", err)
	}
	return &audit, nil
}

// UploadImage sends one captured frame as multipart form data. The
// field names match the server's upload handler.
func (c *Client) UploadImage(ctx context.Context, req UploadImageRequest) (*Image, error) {
	if len(req.Data) == 0 {
		return nil, errors.New("画像データが空です")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("image", req.AuditID+".jpg")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"auditId":        req.AuditID,
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

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/upload", body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	var payload struct {
		Status string `json:"status"`
		Image  Image  `json:"image"`
	}
	if err := c.do(httpReq, &payload); err != nil {
		return nil, fmt.Errorf("画像のアップロードに失敗: %w", err)
	}
	return &payload.Image, nil
}

// FinalizeAudit closes the capture session server-side and returns the
// recomputed store status.
func (c *Client) FinalizeAudit(ctx context.Context, auditID string) (*FinalizeResult, error) {
	var result FinalizeResult
	path := "/audits/" + auditID + "/finalize"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &result); err != nil {
		return nil, fmt.Errorf("監査の確定に失敗: %w", err)
	}
	return &result, nil
}

// UpdateStoreLocation records the store's last known coordinates.
func (c *Client) UpdateStoreLocation(ctx context.Context, storeID string, latitude, longitude *float64) error {
	body := map[string]*float64{
		"latitude":  latitude,
		"longitude": longitude,
	}
	if err := c.doJSON(ctx, http.MethodPut, "/stores/"+storeID, body, nil); err != nil {
		return fmt.Errorf("店舗位置の更新に失敗: %w", err)
	}
	return nil
}

// StoreDetail fetches the store with its full audit history. reason is
// logged so first loads and refetches are distinguishable in traces.
func (c *Client) StoreDetail(ctx context.Context, storeID string, reason FetchReason) (*StoreDetail, error) {
	if c.logger != nil {
		c.logger.Printf("店舗詳細を取得: store=%s reason=%s", storeID, reason)
	}
	var detail StoreDetail
	if err := c.doJSON(ctx, http.MethodGet, "/stores/"+storeID, nil, &detail); err != nil {
		return nil, fmt.Errorf("店舗詳細の取得に失敗: %w", err)
	}
	return &detail, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("サーバーへの接続に失敗: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err == nil {
			apiErr.Message = payload.Error
		}
		if c.logger != nil {
			c.logger.Printf("APIがエラー応答: method=%s path=%s status=%d", req.Method, req.URL.Path, resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(out); err != nil {
		return fmt.Errorf("応答の解析に失敗: %w", err)
	}
	return nil
}
