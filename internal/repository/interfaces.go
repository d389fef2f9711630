// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/triplog/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。メールアドレス重複時はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するsessions、entriesはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。存在しないIDの削除はエラーにしない。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired は期限切れの全セッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// EntryRepository は旅行記録データの永続化インターフェース。
// 全ての読み取り・削除は所有者IDでスコープする。
type EntryRepository interface {
	// ListByUserID は指定ユーザー所有の全エントリーをcreated_at降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Entry, error)

	// FindByID は所有者スコープ付きでエントリーを取得する。
	// 見つからない場合（他ユーザー所有を含む）はnilを返す。
	FindByID(ctx context.Context, userID, entryID string) (*model.Entry, error)

	// Create はエントリーを作成する。
	Create(ctx context.Context, entry *model.Entry) error

	// DeleteByID は所有者スコープ付きでエントリーを削除する。
	// 削除対象が存在しない場合はErrEntryNotFoundを返す。
	DeleteByID(ctx context.Context, userID, entryID string) error

	// DeleteByUserID は指定ユーザーの全エントリーを削除し、削除件数を返す。
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}
