package userdb

import (
	"crypto/rand"
	"fmt"

	"github.com/GehirnInc/crypt/sha512_crypt"
)

const saltAlphabet = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// HashPassword hashes a plaintext credential with sha512-crypt and a
// freshly generated random salt, producing a value suitable for the
// shadow table.
func HashPassword(plain string) (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	salt := make([]byte, len(raw))
	for i, b := range raw {
		salt[i] = saltAlphabet[int(b)%len(saltAlphabet)]
	}

	hash, err := sha512_crypt.New().Generate([]byte(plain), []byte("$6$"+string(salt)))
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}
