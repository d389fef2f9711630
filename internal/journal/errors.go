// Package journal は旅行記録サービスのクライアントSDKを提供する。
// セッションストア・ルートガード・記録リポジトリを通じて、
// 画面側は生のトランスポートエラーを見ることなくサービスを利用できる。
package journal

import "errors"

// エラー種別のセンチネル。errors.Isで判別できる。
var (
	// ErrValidation は必須フィールド欠落など、送信前に検出される入力エラー。
	ErrValidation = errors.New("入力内容が不正です")
	// ErrAuth は認証情報の誤りやアカウント重複などの認証エラー。
	ErrAuth = errors.New("認証に失敗しました")
	// ErrRemoteUnavailable はネットワーク・サービス障害。
	ErrRemoteUnavailable = errors.New("サービスに接続できません")
	// ErrNotFound は削除対象が存在しない場合のエラー。
	ErrNotFound = errors.New("対象が見つかりません")
)
