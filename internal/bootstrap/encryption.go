package bootstrap

import (
	"errors"
	"fmt"

	"github.com/javaDevJT/auth-hooker/internal/data/cryptoutil"
)

// CreateEncryptor builds the AES-256-GCM cipher for provider client secrets from a
// base64-encoded 32-byte key. There is no plaintext fallback: a missing or malformed key
// stops startup.
func CreateEncryptor(key string) (*cryptoutil.AESGCMEncryptor, error) {
	if key == "" {
		return nil, errors.New("SECRETS_ENCRYPTION_KEY is required")
	}
	enc, err := cryptoutil.NewAESGCMEncryptorFromBase64(key)
	if err != nil {
		return nil, fmt.Errorf("create secrets encryptor: %w", err)
	}
	return enc, nil
}
