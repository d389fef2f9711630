// Package entry は旅行記録のドメインロジックを提供する。
// 所有者スコープの強制、入力検証、画像ペイロードの検証を含む。
package entry

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/triplog/internal/model"
	"github.com/hitoshi/triplog/internal/repository"
	"github.com/microcosm-cc/bluemonday"
)

// ServiceConfig はエントリーサービスの設定。
type ServiceConfig struct {
	MaxImageBytes int64 // デコード後の画像サイズ上限（バイト）
}

// Service は旅行記録のサービス層。
// 全操作が所有者IDを要求し、リポジトリのスコープ付きクエリと合わせて
// 二重にデータ分離を保証する。
type Service struct {
	entryRepo repository.EntryRepository
	sanitizer *bluemonday.Policy
	config    ServiceConfig
}

// NewService はServiceを生成する。
func NewService(entryRepo repository.EntryRepository, config ServiceConfig) *Service {
	if config.MaxImageBytes <= 0 {
		config.MaxImageBytes = 5242880
	}
	return &Service{
		entryRepo: entryRepo,
		// ユーザー入力はモバイルアプリでそのまま描画されるため、
		// HTMLタグを全て除去するStrictPolicyを適用する
		sanitizer: bluemonday.StrictPolicy(),
		config:    config,
	}
}

// List は指定ユーザー所有の全エントリーを返す。
// 並び順はストアの返却順（created_at降順）をそのまま使用する。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Entry, error) {
	entries, err := s.entryRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

// Create は新規エントリーを作成する。
// title/place/date/notesは必須。画像はbase64文字列として受け取り、
// デコード可能かつサイズ上限内であることを検証する。
func (s *Service) Create(ctx context.Context, userID string, input model.EntryInput) (*model.Entry, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	imageBase64 := strings.TrimSpace(input.ImageBase64)
	if imageBase64 != "" {
		if err := s.validateImage(imageBase64); err != nil {
			return nil, err
		}
	}

	entry := &model.Entry{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       s.sanitizer.Sanitize(strings.TrimSpace(input.Title)),
		Place:       s.sanitizer.Sanitize(strings.TrimSpace(input.Place)),
		Date:        strings.TrimSpace(input.Date),
		Notes:       s.sanitizer.Sanitize(strings.TrimSpace(input.Notes)),
		ImageBase64: imageBase64,
		CreatedAt:   time.Now(),
	}

	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	slog.Info("entry created",
		slog.String("user_id", userID),
		slog.String("entry_id", entry.ID),
		slog.Bool("has_image", entry.ImageBase64 != ""),
	)

	return entry, nil
}

// Get は所有者スコープ付きでエントリーを1件取得する。
// 存在しないID、または他ユーザー所有のエントリーはENTRY_NOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, userID, entryID string) (*model.Entry, error) {
	entry, err := s.entryRepo.FindByID(ctx, userID, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry: %w", err)
	}
	if entry == nil {
		return nil, model.NewEntryNotFoundError(entryID)
	}
	return entry, nil
}

// Delete は所有者スコープ付きでエントリーを1件削除する。
// 存在しないID、または他ユーザー所有のエントリーはENTRY_NOT_FOUNDを返す。
func (s *Service) Delete(ctx context.Context, userID, entryID string) error {
	if err := s.entryRepo.DeleteByID(ctx, userID, entryID); err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return model.NewEntryNotFoundError(entryID)
		}
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	slog.Info("entry deleted",
		slog.String("user_id", userID),
		slog.String("entry_id", entryID),
	)

	return nil
}

// Export は指定ユーザーの全エントリーをエクスポート用に返す。
// 内容はListと同一だが、呼び出し元でJSONシリアライズして返却する用途。
func (s *Service) Export(ctx context.Context, userID string) ([]*model.Entry, error) {
	entries, err := s.entryRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to export entries: %w", err)
	}
	return entries, nil
}

// validateInput は必須フィールドの存在を検証する。
func validateInput(input model.EntryInput) error {
	fields := []struct {
		name  string
		value string
	}{
		{"title", input.Title},
		{"place", input.Place},
		{"date", input.Date},
		{"notes", input.Notes},
	}

	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return model.NewValidationError(f.name)
		}
	}
	return nil
}

// validateImage はbase64画像ペイロードを検証する。
// data URLプレフィックス（data:image/jpeg;base64,）付きの入力も許容する。
func (s *Service) validateImage(imageBase64 string) error {
	payload := imageBase64
	if idx := strings.Index(payload, ","); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return model.NewInvalidImageError()
	}
	if int64(len(decoded)) > s.config.MaxImageBytes {
		return model.NewImageTooLargeError(s.config.MaxImageBytes)
	}
	return nil
}
