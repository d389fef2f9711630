// Package model はドメインモデルを定義する。
package model

import "time"

// Entry はユーザーが作成した旅行記録1件を表す。
// 作成後の更新操作は存在しない（編集機能なし、削除のみ）。
type Entry struct {
	ID          string
	UserID      string // 所有者。全ての読み取り・削除はこのIDでスコープされる
	Title       string
	Place       string
	Date        string // 自由形式の文字列（例: "2025-07-31"）。日付型に正規化しない
	Notes       string
	ImageBase64 string // 添付画像のbase64表現。画像なしの場合は空文字列
	CreatedAt   time.Time
}

// EntryInput はエントリー作成時の入力フィールド。
type EntryInput struct {
	Title       string
	Place       string
	Date        string
	Notes       string
	ImageBase64 string
}
