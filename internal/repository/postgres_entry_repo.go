package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/triplog/internal/model"
)

// PostgresEntryRepo はPostgreSQLを使用した旅行記録リポジトリ。
// 全クエリがuser_idでスコープされるため、他ユーザーのエントリーは
// 観測も削除もできない。
type PostgresEntryRepo struct {
	db *sql.DB
}

// NewPostgresEntryRepo はPostgresEntryRepoを生成する。
func NewPostgresEntryRepo(db *sql.DB) *PostgresEntryRepo {
	return &PostgresEntryRepo{db: db}
}

// ListByUserID は指定ユーザー所有の全エントリーをcreated_at降順で返す。
func (r *PostgresEntryRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, place, date, notes, image_base64, created_at
		 FROM entries
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.Entry
	for rows.Next() {
		entry := &model.Entry{}
		if err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.Title, &entry.Place,
			&entry.Date, &entry.Notes, &entry.ImageBase64, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	return entries, nil
}

// FindByID は所有者スコープ付きでエントリーを取得する。
// 見つからない場合（他ユーザー所有を含む）はnilを返す。
func (r *PostgresEntryRepo) FindByID(ctx context.Context, userID, entryID string) (*model.Entry, error) {
	entry := &model.Entry{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, place, date, notes, image_base64, created_at
		 FROM entries
		 WHERE id = $1 AND user_id = $2`,
		entryID, userID,
	).Scan(
		&entry.ID, &entry.UserID, &entry.Title, &entry.Place,
		&entry.Date, &entry.Notes, &entry.ImageBase64, &entry.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find entry: %w", err)
	}

	return entry, nil
}

// Create はエントリーを作成する。
func (r *PostgresEntryRepo) Create(ctx context.Context, entry *model.Entry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO entries (id, user_id, title, place, date, notes, image_base64, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.UserID, entry.Title, entry.Place,
		entry.Date, entry.Notes, entry.ImageBase64, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

// DeleteByID は所有者スコープ付きでエントリーを削除する。
// 削除対象が存在しない場合はErrEntryNotFoundを返す。
func (r *PostgresEntryRepo) DeleteByID(ctx context.Context, userID, entryID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM entries WHERE id = $1 AND user_id = $2`,
		entryID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// DeleteByUserID は指定ユーザーの全エントリーを削除し、削除件数を返す。
func (r *PostgresEntryRepo) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM entries WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user entries: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// compile-time interface check
var _ EntryRepository = (*PostgresEntryRepo)(nil)
