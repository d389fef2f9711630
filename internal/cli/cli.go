// Package cli は旅行記録サービスのコマンドラインクライアントを提供する。
// internal/journal のSDKを薄くラップし、セッションIDをファイルに永続化する
// ことでコマンド実行をまたいだログイン状態を維持する。
package cli

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/hitoshi/triplog/internal/journal"
)

const defaultServerURL = "http://localhost:8080"

// sessionFileName はセッションIDの保存先（ホームディレクトリ配下）。
const sessionFileName = ".triplog/session"

// Run はCLIのエントリーポイント。
func Run(w io.Writer, args []string) error {
	if len(args) == 0 {
		printUsage(w)
		return errors.New("コマンドを指定してください")
	}

	command, commandArgs := args[0], args[1:]
	if command == "help" || command == "-h" || command == "--help" {
		printUsage(w)
		return nil
	}

	app, err := newApp(w)
	if err != nil {
		return err
	}

	ctx := context.Background()

	switch command {
	case "signup":
		return app.signUp(ctx, commandArgs)
	case "login":
		return app.signIn(ctx, commandArgs)
	case "logout":
		return app.signOut(ctx)
	case "whoami":
		return app.whoAmI(ctx)
	case "list":
		return app.list(ctx)
	case "show":
		return app.show(ctx, commandArgs)
	case "add":
		return app.add(ctx, commandArgs)
	case "delete":
		return app.delete(ctx, commandArgs)
	case "wipe":
		return app.wipe(ctx)
	case "export":
		return app.export(ctx, commandArgs)
	case "withdraw":
		return app.withdraw(ctx, commandArgs)
	default:
		printUsage(w)
		return fmt.Errorf("不明なコマンド: %s", command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `使い方: tripctl <コマンド> [引数...]

アカウント:
  signup <email>         新規アカウント登録（パスワードは対話入力）
  login <email>          ログイン
  logout                 ログアウト
  whoami                 ログイン中のユーザーを表示
  withdraw --yes         退会（全データ削除・取り消し不可）

記録:
  list                   記録を一覧表示（新しい順）
  show <id>              記録を1件表示
  add -title <t> -place <p> -date <d> -notes <n> [-image <file>]
                         記録を作成
  delete <id>            記録を1件削除
  wipe                   全ての記録を削除
  export [-o <file>]     全記録をJSONでエクスポート

環境変数:
  TRIPLOG_SERVER         サーバーURL（デフォルト: http://localhost:8080）`)
}

type app struct {
	w           io.Writer
	client      *journal.Client
	store       *journal.SessionStore
	repo        *journal.LogRepository
	sessionPath string
}

func newApp(w io.Writer) (*app, error) {
	serverURL := os.Getenv("TRIPLOG_SERVER")
	if serverURL == "" {
		serverURL = defaultServerURL
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("ホームディレクトリの取得に失敗しました: %w", err)
	}
	sessionPath := filepath.Join(home, sessionFileName)

	client := journal.NewClient(serverURL, nil)
	if data, err := os.ReadFile(sessionPath); err == nil {
		client.SetSessionID(strings.TrimSpace(string(data)))
	}

	return &app{
		w:           w,
		client:      client,
		store:       journal.NewSessionStore(client),
		repo:        journal.NewLogRepository(client),
		sessionPath: sessionPath,
	}, nil
}

// saveSession は現在のセッションIDをファイルに保存する。
// 空文字列の場合はファイルを削除する。
func (a *app) saveSession() error {
	sid := a.client.SessionID()
	if sid == "" {
		if err := os.Remove(a.sessionPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("セッションファイルの削除に失敗しました: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(a.sessionPath), 0o700); err != nil {
		return fmt.Errorf("設定ディレクトリの作成に失敗しました: %w", err)
	}
	if err := os.WriteFile(a.sessionPath, []byte(sid), 0o600); err != nil {
		return fmt.Errorf("セッションの保存に失敗しました: %w", err)
	}
	return nil
}

// readPassword はエコーなしでパスワードを読み取る。テスト用の差し替えポイント。
// 標準入力が端末でない場合（パイプ等）は1行読み取りにフォールバックする。
var readPassword = func(w io.Writer) (string, error) {
	fmt.Fprint(w, "パスワード: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		defer fmt.Fprintln(w)
		data, err := term.ReadPassword(fd)
		if err != nil {
			return "", fmt.Errorf("パスワードの読み取りに失敗しました: %w", err)
		}
		return string(data), nil
	}

	var password string
	if _, err := fmt.Fscanln(os.Stdin, &password); err != nil {
		return "", fmt.Errorf("パスワードの読み取りに失敗しました: %w", err)
	}
	return password, nil
}

func (a *app) signUp(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("使い方: signup <email>")
	}
	password, err := readPassword(a.w)
	if err != nil {
		return err
	}

	if err := a.store.SignUp(ctx, args[0], password); err != nil {
		return err
	}
	if err := a.saveSession(); err != nil {
		return err
	}

	identity := a.store.Snapshot().Identity
	fmt.Fprintf(a.w, "登録しました: %s\n", identity.Email)
	return nil
}

func (a *app) signIn(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("使い方: login <email>")
	}
	password, err := readPassword(a.w)
	if err != nil {
		return err
	}

	if err := a.store.SignIn(ctx, args[0], password); err != nil {
		return err
	}
	if err := a.saveSession(); err != nil {
		return err
	}

	identity := a.store.Snapshot().Identity
	fmt.Fprintf(a.w, "ログインしました: %s\n", identity.Email)
	return nil
}

func (a *app) signOut(ctx context.Context) error {
	a.store.SignOut(ctx)
	if err := a.saveSession(); err != nil {
		return err
	}
	fmt.Fprintln(a.w, "ログアウトしました")
	return nil
}

func (a *app) whoAmI(ctx context.Context) error {
	a.store.Initialize(ctx)
	identity := a.store.Snapshot().Identity
	if identity == nil {
		fmt.Fprintln(a.w, "ログインしていません")
		return nil
	}
	fmt.Fprintf(a.w, "%s (%s)\n", identity.Email, identity.ID)
	return nil
}

func (a *app) list(ctx context.Context) error {
	entries, err := a.repo.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.w, "記録はありません")
		return nil
	}
	for _, e := range entries {
		marker := " "
		if e.ImageBase64 != "" {
			marker = "*" // 画像付き
		}
		fmt.Fprintf(a.w, "%s %s  %-12s %s（%s）\n", marker, e.ID, e.Date, e.Title, e.Place)
	}
	return nil
}

func (a *app) show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("使い方: show <id>")
	}
	entry, err := a.repo.Get(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.w, "ID:     %s\n", entry.ID)
	fmt.Fprintf(a.w, "タイトル: %s\n", entry.Title)
	fmt.Fprintf(a.w, "場所:    %s\n", entry.Place)
	fmt.Fprintf(a.w, "日付:    %s\n", entry.Date)
	fmt.Fprintf(a.w, "メモ:    %s\n", entry.Notes)
	if entry.ImageBase64 != "" {
		fmt.Fprintf(a.w, "画像:    あり（%dバイト）\n", base64.StdEncoding.DecodedLen(len(entry.ImageBase64)))
	}
	return nil
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(a.w)
	title := fs.String("title", "", "タイトル")
	place := fs.String("place", "", "場所")
	date := fs.String("date", "", "日付（例: 2025-07-31）")
	notes := fs.String("notes", "", "メモ")
	imagePath := fs.String("image", "", "添付画像ファイル（任意）")
	if err := fs.Parse(args); err != nil {
		return err
	}

	input := journal.NewEntry{
		Title: *title,
		Place: *place,
		Date:  *date,
		Notes: *notes,
	}
	if *imagePath != "" {
		data, err := os.ReadFile(*imagePath)
		if err != nil {
			return fmt.Errorf("画像ファイルの読み込みに失敗しました: %w", err)
		}
		input.Image = data
	}

	created, err := a.repo.Create(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.w, "記録を作成しました: %s\n", created.ID)
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("使い方: delete <id>")
	}
	if err := a.repo.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.w, "削除しました")
	return nil
}

func (a *app) wipe(ctx context.Context) error {
	if err := a.repo.DeleteAll(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.w, "全ての記録を削除しました")
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(a.w)
	outPath := fs.String("o", "", "出力先ファイル（省略時は標準出力）")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := a.repo.Export(ctx)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("エクスポートデータの整形に失敗しました: %w", err)
	}
	encoded = append(encoded, '\n')

	if *outPath == "" {
		_, err = a.w.Write(encoded)
		return err
	}
	if err := os.WriteFile(*outPath, encoded, 0o600); err != nil {
		return fmt.Errorf("ファイルの書き込みに失敗しました: %w", err)
	}
	fmt.Fprintf(a.w, "%d件の記録を %s に書き出しました\n", len(data.Entries), *outPath)
	return nil
}

func (a *app) withdraw(ctx context.Context, args []string) error {
	if len(args) != 1 || args[0] != "--yes" {
		return errors.New("退会は全データを削除します。実行するには --yes を指定してください")
	}
	if err := a.client.DeleteAccount(ctx); err != nil {
		return err
	}
	a.client.SetSessionID("")
	if err := a.saveSession(); err != nil {
		return err
	}
	fmt.Fprintln(a.w, "退会しました")
	return nil
}
