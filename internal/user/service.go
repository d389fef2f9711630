// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/triplog/internal/model"
	"github.com/hitoshi/triplog/internal/repository"
)

// EntryDeleter は旅行記録の一括削除インターフェース。
type EntryDeleter interface {
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}

// Service はユーザー管理のサービス層。
// 退会処理のビジネスロジックを提供する。
type Service struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.SessionRepository
	entryDeleter EntryDeleter
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	entryDeleter EntryDeleter,
) *Service {
	return &Service{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		entryDeleter: entryDeleter,
	}
}

// Withdraw はユーザーの退会処理を実行する。
// 削除順序: entries → sessions → user。
// 途中で失敗した場合は以降の削除を行わず、削除済みデータは戻さない。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	// ユーザー存在確認
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	slog.Info("退会処理を開始します",
		slog.String("user_id", userID),
	)

	// 1. 旅行記録を削除
	if s.entryDeleter != nil {
		deleted, err := s.entryDeleter.DeleteByUserID(ctx, userID)
		if err != nil {
			return fmt.Errorf("記録の削除に失敗しました: %w", err)
		}
		slog.Info("記録を削除しました",
			slog.String("user_id", userID),
			slog.Int64("count", deleted),
		)
	}

	// 2. セッションを削除
	if s.sessionRepo != nil {
		if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("セッションの削除に失敗しました: %w", err)
		}
	}

	// 3. ユーザーを削除
	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.String("user_id", userID),
	)

	return nil
}
