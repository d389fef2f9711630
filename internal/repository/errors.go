package repository

import "errors"

// ErrDuplicateEmail はメールアドレスの一意制約違反を表す。
var ErrDuplicateEmail = errors.New("email already registered")

// ErrEntryNotFound は削除対象のエントリーが存在しないことを表す。
var ErrEntryNotFound = errors.New("entry not found")
