package journal

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MinPasswordLength はサインアップ時のパスワード最小文字数。
const MinPasswordLength = 8

// Snapshot はセッションストアの観測可能な状態。
type Snapshot struct {
	Identity *Identity
	Loading  bool
}

// sessionAPI はセッションストアが必要とするAPIクライアントのインターフェース。
type sessionAPI interface {
	CreateAccount(ctx context.Context, email, password string) (*Identity, error)
	CreateSession(ctx context.Context, email, password string) (*Identity, error)
	GetCurrentUser(ctx context.Context) (*Identity, error)
	DeleteCurrentSession(ctx context.Context) error
}

// SessionStore はプロセス全体で「誰がログインしているか」の唯一の情報源。
// ライフサイクル: 未初期化 → loading → {認証済み | 未認証}。
// 全ての状態変化は購読者にスナップショットで通知される。
type SessionStore struct {
	api sessionAPI

	mu          sync.Mutex
	identity    *Identity
	loading     bool
	subscribers []func(Snapshot)
}

// NewSessionStore はSessionStoreを生成する。
func NewSessionStore(api sessionAPI) *SessionStore {
	return &SessionStore{api: api}
}

// Initialize は既存のリモートセッションの解決を試みる。
// 開始時にloading=true、完了時にloading=falseを設定する（結果によらず）。
// 解決失敗は「セッションなし」と同一に扱い、エラーを返さない。
func (s *SessionStore) Initialize(ctx context.Context) {
	s.setState(nil, true)

	identity, err := s.api.GetCurrentUser(ctx)
	if err != nil {
		// 解決失敗はセッションなしと同じ扱い
		s.setState(nil, false)
		return
	}

	s.setState(identity, false)
}

// SignUp は新規アカウントを作成し、セッションを確立する。
// パスワードの最小文字数チェックは呼び出し側（ここ）で行う。
func (s *SessionStore) SignUp(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: メールアドレスを入力してください", ErrValidation)
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: パスワードは%d文字以上で入力してください", ErrValidation, MinPasswordLength)
	}

	identity, err := s.api.CreateAccount(ctx, email, password)
	if err != nil {
		return err
	}

	s.setState(identity, false)
	return nil
}

// SignIn は既存アカウントでセッションを確立する。
// 両フィールドの非空チェックは呼び出し側（ここ）で行う。
func (s *SessionStore) SignIn(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return fmt.Errorf("%w: メールアドレスとパスワードを入力してください", ErrValidation)
	}

	identity, err := s.api.CreateSession(ctx, email, password)
	if err != nil {
		return err
	}

	s.setState(identity, false)
	return nil
}

// SignOut はリモートセッションを破棄し、ローカルの認証状態を無条件にクリアする。
// 冪等: アクティブなセッションがない場合もエラーにしない。
func (s *SessionStore) SignOut(ctx context.Context) {
	// リモート削除の失敗によらずローカル状態はクリアする
	_ = s.api.DeleteCurrentSession(ctx)
	s.setState(nil, false)
}

// Subscribe は状態変化の購読者を登録する。
// 以降の全ての状態変化がスナップショットで通知される。
func (s *SessionStore) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Snapshot は現在の状態を返す。
func (s *SessionStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Identity: s.identity, Loading: s.loading}
}

// setState は状態を更新し、購読者に通知する。
func (s *SessionStore) setState(identity *Identity, loading bool) {
	s.mu.Lock()
	s.identity = identity
	s.loading = loading
	snapshot := Snapshot{Identity: identity, Loading: loading}
	subscribers := make([]func(Snapshot), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(snapshot)
	}
}
