package journal

import (
	"strings"
	"sync"
)

// 画面ルートの定数。
const (
	// RouteHome はログイン後のデフォルト画面。
	RouteHome = "/"
	// RouteAuthPrefix はログイン関連画面のルートグループ。
	RouteAuthPrefix = "/auth"
	// RouteSignIn はログイン画面。未認証ユーザーのリダイレクト先。
	RouteSignIn = "/auth/sign-in"
)

// Navigator はルートガードがリダイレクトを発行するためのインターフェース。
type Navigator interface {
	// Replace は現在のルートを置き換える（履歴に残さない）。
	Replace(route string)
}

// RouteGuard はセッション状態と現在ルートからリダイレクトを決定する状態機械。
// 判定規則:
//   - loading中は一切リダイレクトしない（認証途中のフラッシュリダイレクト防止）。
//   - 未認証かつログイングループ外のルート → ログイン画面へ。
//   - 認証済みかつログイングループ内のルート → ホームへ。
//   - それ以外 → 何もしない。
//
// セッションストアの状態変化とルート変更の両方で再評価される。
type RouteGuard struct {
	nav Navigator

	mu       sync.Mutex
	route    string
	snapshot Snapshot
}

// NewRouteGuard はRouteGuardを生成し、セッションストアの購読を開始する。
// 初期ルートはホームとして扱う。
// 購読登録を先に行ってからスナップショットを取得する。逆順にすると
// 登録前の状態変化を取りこぼし、次のイベントまで古い状態で判定してしまう。
func NewRouteGuard(store *SessionStore, nav Navigator) *RouteGuard {
	g := &RouteGuard{
		nav:   nav,
		route: RouteHome,
	}

	store.Subscribe(func(snapshot Snapshot) {
		g.onSessionChange(snapshot)
	})

	g.mu.Lock()
	g.snapshot = store.Snapshot()
	g.mu.Unlock()

	return g
}

// OnRouteChange はルート変更を通知し、リダイレクトを再評価する。
func (g *RouteGuard) OnRouteChange(route string) {
	g.mu.Lock()
	g.route = route
	g.mu.Unlock()

	g.evaluate()
}

// onSessionChange はセッション状態の変化を受けてリダイレクトを再評価する。
func (g *RouteGuard) onSessionChange(snapshot Snapshot) {
	g.mu.Lock()
	g.snapshot = snapshot
	g.mu.Unlock()

	g.evaluate()
}

// evaluate は現在の(loading, identity, ルートグループ)からリダイレクトを決定する。
func (g *RouteGuard) evaluate() {
	g.mu.Lock()
	snapshot := g.snapshot
	route := g.route
	g.mu.Unlock()

	// loading中はリダイレクトしない
	if snapshot.Loading {
		return
	}

	inAuthGroup := strings.HasPrefix(route, RouteAuthPrefix)

	switch {
	case snapshot.Identity == nil && !inAuthGroup:
		g.nav.Replace(RouteSignIn)
	case snapshot.Identity != nil && inAuthGroup:
		g.nav.Replace(RouteHome)
	}
}
