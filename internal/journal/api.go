package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const sessionCookieName = "session_id"

// Identity はログイン中のユーザーを表す。
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Entry は旅行記録のクライアント側表現。
type Entry struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Place       string    `json:"place"`
	Date        string    `json:"date"`
	Notes       string    `json:"notes"`
	ImageBase64 string    `json:"image_base64"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExportData はエクスポート結果。
type ExportData struct {
	ExportedAt time.Time `json:"exported_at"`
	Entries    []Entry   `json:"entries"`
}

// apiError はサーバーの統一エラーフォーマット。
type apiError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// Client は記録サービスのHTTP APIクライアント。
// セッションIDを保持し、全リクエストでCookieとして送信する。
// リトライやタイムアウトは行わない（1操作につきリモート呼び出し1回）。
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu        sync.Mutex
	sessionID string
}

// NewClient はClientを生成する。httpClientがnilの場合はhttp.DefaultClient相当を使う。
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// SessionID は現在保持しているセッションIDを返す。
// プロセスをまたいだセッション永続化に使う。
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// SetSessionID は保存済みセッションIDを復元する。
func (c *Client) SetSessionID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = id
}

// CreateAccount は新規アカウントを作成し、セッションを確立する。
func (c *Client) CreateAccount(ctx context.Context, email, password string) (*Identity, error) {
	var identity Identity
	err := c.do(ctx, http.MethodPost, "/auth/signup", credentials{Email: email, Password: password}, &identity)
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// CreateSession は既存アカウントでセッションを確立する。
func (c *Client) CreateSession(ctx context.Context, email, password string) (*Identity, error) {
	var identity Identity
	err := c.do(ctx, http.MethodPost, "/auth/login", credentials{Email: email, Password: password}, &identity)
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// GetCurrentUser は現在のセッションのユーザーを返す。
// 有効なセッションがない場合は(nil, nil)を返す。
func (c *Client) GetCurrentUser(ctx context.Context) (*Identity, error) {
	var identity Identity
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &identity)
	if err != nil {
		if isStatusError(err, http.StatusUnauthorized) {
			return nil, nil
		}
		return nil, err
	}
	return &identity, nil
}

// DeleteCurrentSession は現在のセッションを破棄する。
func (c *Client) DeleteCurrentSession(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// EntryFields は記録作成時の入力フィールド。
type EntryFields struct {
	Title       string `json:"title"`
	Place       string `json:"place"`
	Date        string `json:"date"`
	Notes       string `json:"notes"`
	ImageBase64 string `json:"image_base64"`
}

// ListDocuments はログインユーザーの記録一覧をサーバーの返却順のまま返す。
func (c *Client) ListDocuments(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if err := c.do(ctx, http.MethodGet, "/api/entries", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateDocument は記録を作成する。
func (c *Client) CreateDocument(ctx context.Context, fields EntryFields) (*Entry, error) {
	var entry Entry
	if err := c.do(ctx, http.MethodPost, "/api/entries", fields, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteDocument は記録をIDで削除する。
// GetDocument はログインユーザーの記録を1件取得する。
func (c *Client) GetDocument(ctx context.Context, entryID string) (*Entry, error) {
	var entry Entry
	if err := c.do(ctx, http.MethodGet, "/api/entries/"+entryID, nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) DeleteDocument(ctx context.Context, entryID string) error {
	return c.do(ctx, http.MethodDelete, "/api/entries/"+entryID, nil, nil)
}

// Export は全記録のエクスポートを取得する。
func (c *Client) Export(ctx context.Context) (*ExportData, error) {
	var data ExportData
	if err := c.do(ctx, http.MethodGet, "/api/entries/export", nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// DeleteAccount は退会処理を実行する。全記録とセッションも削除される。
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/users/me", nil, nil)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// statusError はHTTPステータス付きのAPIエラー。
type statusError struct {
	statusCode int
	code       string
	message    string
	kind       error
}

func (e *statusError) Error() string {
	if e.message != "" {
		return e.message
	}
	return fmt.Sprintf("サーバーエラー（status %d）", e.statusCode)
}

// Unwrap はエラー種別センチネルを返し、errors.Isでの判別を可能にする。
func (e *statusError) Unwrap() error {
	return e.kind
}

func isStatusError(err error, statusCode int) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.statusCode == statusCode
	}
	return false
}

// do はHTTPリクエストを実行し、セッションCookieの送受信とエラー変換を行う。
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("リクエストの構築に失敗しました: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("リクエストの構築に失敗しました: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if sid := c.SessionID(); sid != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sid})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	// セッションCookieの更新（ログイン時の設定・ログアウト時のクリア）
	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookieName {
			if cookie.MaxAge < 0 {
				c.SetSessionID("")
			} else if cookie.Value != "" {
				c.SetSessionID(cookie.Value)
			}
		}
	}

	if resp.StatusCode >= 400 {
		return c.errorFromResponse(resp)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: レスポンスの解析に失敗しました", ErrRemoteUnavailable)
		}
	}

	return nil
}

// errorFromResponse はエラーレスポンスをエラー種別付きのエラーに変換する。
func (c *Client) errorFromResponse(resp *http.Response) error {
	var body apiError
	_ = json.NewDecoder(resp.Body).Decode(&body)

	return &statusError{
		statusCode: resp.StatusCode,
		code:       body.Code,
		message:    body.Message,
		kind:       kindForError(resp.StatusCode, body.Code),
	}
}

// kindForError はサーバーのエラーコードとHTTPステータスからエラー種別を決定する。
func kindForError(statusCode int, code string) error {
	switch code {
	case "VALIDATION_FAILED", "PASSWORD_TOO_SHORT", "IMAGE_TOO_LARGE", "INVALID_IMAGE", "INVALID_REQUEST":
		return ErrValidation
	case "INVALID_CREDENTIALS", "DUPLICATE_EMAIL", "UNAUTHORIZED":
		return ErrAuth
	case "ENTRY_NOT_FOUND", "USER_NOT_FOUND":
		return ErrNotFound
	}

	switch statusCode {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity:
		return ErrValidation
	case http.StatusUnauthorized, http.StatusConflict:
		return ErrAuth
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrRemoteUnavailable
	}
}
