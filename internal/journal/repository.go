package journal

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// entryAPI は記録リポジトリが必要とするAPIクライアントのインターフェース。
type entryAPI interface {
	ListDocuments(ctx context.Context) ([]Entry, error)
	GetDocument(ctx context.Context, entryID string) (*Entry, error)
	CreateDocument(ctx context.Context, fields EntryFields) (*Entry, error)
	DeleteDocument(ctx context.Context, entryID string) error
	Export(ctx context.Context) (*ExportData, error)
}

// LogRepository は旅行記録のCRUDファサード。
// 所有者スコープはサーバー側がセッションから強制するため、
// このクライアントはログインユーザーの記録だけを見る。
type LogRepository struct {
	api entryAPI
}

// NewLogRepository はLogRepositoryを生成する。
func NewLogRepository(api entryAPI) *LogRepository {
	return &LogRepository{api: api}
}

// NewEntry は記録作成の入力。Imageは省略可能。
type NewEntry struct {
	Title string
	Place string
	Date  string
	Notes string
	Image []byte
}

// List はログインユーザーの記録を、サーバーの返却順のまま返す。
// 通信失敗時は呼び出し側が直前の一覧を保持できるよう、nilとエラーを返す。
func (r *LogRepository) List(ctx context.Context) ([]Entry, error) {
	return r.api.ListDocuments(ctx)
}

// Get は記録をIDで1件取得する。詳細画面用。
// 存在しないID、または他ユーザー所有の記録はNotFound種別のエラーになる。
func (r *LogRepository) Get(ctx context.Context, entryID string) (*Entry, error) {
	if entryID == "" {
		return nil, fmt.Errorf("%w: 記録IDが空です", ErrValidation)
	}
	return r.api.GetDocument(ctx, entryID)
}

// Create は記録を作成する。
// 必須フィールド（title/place/date/notes）の非空チェックは送信前に行う。
// 画像はbase64エンコードして送信する。画像なしの場合は空文字として保存される。
func (r *LogRepository) Create(ctx context.Context, input NewEntry) (*Entry, error) {
	if err := validateNewEntry(input); err != nil {
		return nil, err
	}

	fields := EntryFields{
		Title: input.Title,
		Place: input.Place,
		Date:  input.Date,
		Notes: input.Notes,
	}
	if len(input.Image) > 0 {
		fields.ImageBase64 = base64.StdEncoding.EncodeToString(input.Image)
	}

	return r.api.CreateDocument(ctx, fields)
}

// Delete は記録をIDで削除する。
// 存在しないIDの削除はNotFound種別のエラーになる。
func (r *LogRepository) Delete(ctx context.Context, entryID string) error {
	if entryID == "" {
		return fmt.Errorf("%w: 記録IDが空です", ErrValidation)
	}
	return r.api.DeleteDocument(ctx, entryID)
}

// DeleteAll はログインユーザーの全記録を削除する。
// 一覧を取得し、各記録を並行に削除する（全件の完了を待つ）。
// 一部が失敗した場合は単一の集約エラーを返す。ロールバックやリトライは
// 行わない: 削除済みの記録は削除されたままになる。
func (r *LogRepository) DeleteAll(ctx context.Context) error {
	entries, err := r.api.ListDocuments(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, entry := range entries {
		wg.Add(1)
		go func(entryID string) {
			defer wg.Done()
			if err := r.api.DeleteDocument(ctx, entryID); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(entry.ID)
	}

	wg.Wait()

	if len(errs) > 0 {
		return fmt.Errorf("%d件中%d件の削除に失敗しました: %w",
			len(entries), len(errs), errors.Join(errs...))
	}

	return nil
}

// Export は全記録のJSONエクスポートを取得する。
func (r *LogRepository) Export(ctx context.Context) (*ExportData, error) {
	return r.api.Export(ctx)
}

// validateNewEntry は必須フィールドの非空チェックを行う。
func validateNewEntry(input NewEntry) error {
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
			return fmt.Errorf("%w: %sを入力してください", ErrValidation, f.name)
		}
	}
	return nil
}
