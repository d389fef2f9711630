package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/triplog/internal/metrics"
	"github.com/hitoshi/triplog/internal/middleware"
	"github.com/hitoshi/triplog/internal/model"
)

// EntryServiceInterface は記録ハンドラーが必要とするサービスインターフェース。
type EntryServiceInterface interface {
	// List はユーザーの旅行記録を作成日時の降順で返す。
	List(ctx context.Context, userID string) ([]*model.Entry, error)
	// Get は記録を1件取得する。所有者以外の記録は見つからない扱いになる。
	Get(ctx context.Context, userID, entryID string) (*model.Entry, error)
	// Create は旅行記録を作成する。
	Create(ctx context.Context, userID string, input model.EntryInput) (*model.Entry, error)
	// Delete は記録を削除する。所有者以外の記録は見つからない扱いになる。
	Delete(ctx context.Context, userID, entryID string) error
	// Export はエクスポート用に全記録を返す。
	Export(ctx context.Context, userID string) ([]*model.Entry, error)
}

// EntryHandler は旅行記録のHTTPハンドラー。
type EntryHandler struct {
	service   EntryServiceInterface
	collector metrics.MetricsCollector // nilの場合は記録しない
}

// NewEntryHandler はEntryHandlerを生成する。
func NewEntryHandler(service EntryServiceInterface, collector metrics.MetricsCollector) *EntryHandler {
	return &EntryHandler{
		service:   service,
		collector: collector,
	}
}

// createEntryRequest は記録作成リクエストのボディ。
type createEntryRequest struct {
	Title       string `json:"title"`
	Place       string `json:"place"`
	Date        string `json:"date"`
	Notes       string `json:"notes"`
	ImageBase64 string `json:"image_base64"`
}

// entryResponse は旅行記録のAPIレスポンス。
type entryResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Place       string    `json:"place"`
	Date        string    `json:"date"`
	Notes       string    `json:"notes"`
	ImageBase64 string    `json:"image_base64"`
	CreatedAt   time.Time `json:"created_at"`
}

// exportResponse はエクスポートのAPIレスポンス。
type exportResponse struct {
	ExportedAt time.Time       `json:"exported_at"`
	Entries    []entryResponse `json:"entries"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// ListEntries はユーザーの記録一覧を返す。
// GET /api/entries
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	entries, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toEntryResponses(entries))
}

// CreateEntry は記録を作成する。
// POST /api/entries
func (h *EntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestError())
		return
	}

	entry, err := h.service.Create(r.Context(), userID, model.EntryInput{
		Title:       req.Title,
		Place:       req.Place,
		Date:        req.Date,
		Notes:       req.Notes,
		ImageBase64: req.ImageBase64,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordEntryCreated()
		h.collector.RecordImageSize(len(entry.ImageBase64))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toEntryResponse(entry))
}

// DeleteEntry は記録を削除する。
// DELETE /api/entries/:id
// GetEntry はGET /api/entries/{id}を処理する。詳細画面用の1件取得。
func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	entryID := chi.URLParam(r, "id")

	entry, err := h.service.Get(r.Context(), userID, entryID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(toEntryResponse(entry))
}

func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	entryID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), userID, entryID); err != nil {
		handleServiceError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordEntryDeleted(1)
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportEntries は全記録をJSONファイルとしてダウンロードさせる。
// GET /api/entries/export
func (h *EntryHandler) ExportEntries(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	entries, err := h.service.Export(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="triplog-export.json"`)
	json.NewEncoder(w).Encode(exportResponse{
		ExportedAt: time.Now().UTC(),
		Entries:    toEntryResponses(entries),
	})
}

// --- ヘルパー関数 ---

// toEntryResponse はmodel.EntryからAPIレスポンスに変換する。
func toEntryResponse(entry *model.Entry) entryResponse {
	return entryResponse{
		ID:          entry.ID,
		Title:       entry.Title,
		Place:       entry.Place,
		Date:        entry.Date,
		Notes:       entry.Notes,
		ImageBase64: entry.ImageBase64,
		CreatedAt:   entry.CreatedAt,
	}
}

// toEntryResponses は空の一覧でもnullではなく[]を返すように変換する。
func toEntryResponses(entries []*model.Entry) []entryResponse {
	res := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		res = append(res, toEntryResponse(e))
	}
	return res
}

// invalidRequestError はリクエストボディ解析失敗のエラーを生成する。
func invalidRequestError() *model.APIError {
	return &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// internalError は内部サーバーエラーの統一エラーを生成する。
func internalError() *model.APIError {
	return &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, internalError())
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidationFailed, model.ErrCodePasswordTooShort:
		return http.StatusBadRequest
	case model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeDuplicateEmail:
		return http.StatusConflict
	case model.ErrCodeEntryNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeImageTooLarge:
		return http.StatusRequestEntityTooLarge
	case model.ErrCodeInvalidImage:
		return http.StatusUnprocessableEntity
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
