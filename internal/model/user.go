// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// メールアドレスとパスワードで認証する。パスワードはArgon2idハッシュで保持する。
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	PasswordSalt []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity は認証済みユーザーの公開情報を表す。
// セッション解決後にクライアントへ返す最小構成（ID + メールアドレス）。
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Identity はUserから公開情報のみを切り出す。
func (u *User) Identity() *Identity {
	return &Identity{
		ID:    u.ID,
		Email: u.Email,
	}
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
