package auth

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// Argon2idパラメータ（サーバーサイドハッシュ向けに調整）
const (
	argonTime    uint32 = 3         // 反復回数
	argonMemory  uint32 = 64 * 1024 // 64 MB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
	saltLen             = 16
)

// generateSalt は暗号的に安全なソルトを生成する。
func generateSalt() ([]byte, error) {
	b := make([]byte, saltLen)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// hashPassword は指定ソルトを使用してパスワードのArgon2idハッシュを返す。
func hashPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// verifyPassword はパスワードを期待ハッシュと定数時間で比較検証する。
func verifyPassword(password string, salt, expected []byte) bool {
	got := hashPassword(password, salt)
	return subtle.ConstantTimeCompare(got, expected) == 1
}
