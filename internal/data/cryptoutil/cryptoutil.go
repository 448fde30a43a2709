package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
)

// Encryptor defines an interface for encrypting/decrypting provider secrets.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// tagSize is the GCM authentication tag length in bytes.
	tagSize = 16
)

// strictB64 rejects non-canonical encodings so a flipped padding bit cannot decode to the same bytes.
var strictB64 = base64.StdEncoding.Strict()

// AESGCMEncryptor implements Encryptor using AES-256-GCM with a 96-bit random nonce per call.
// Ciphertext layout is base64(nonce || sealed || tag).
type AESGCMEncryptor struct {
	aead cipher.AEAD
	rand io.Reader
}

var _ Encryptor = (*AESGCMEncryptor)(nil)

// NewAESGCMEncryptor constructs a new AESGCMEncryptor. Key must be 32 bytes (AES-256).
func NewAESGCMEncryptor(key []byte) (*AESGCMEncryptor, error) {
	if len(key) != KeySize {
		return nil, apperrors.Wrap(
			fmt.Errorf("got %d bytes", len(key)),
			apperrors.ErrCodeEncryptionFailed,
			"aes-gcm key must be 32 bytes",
		)
	}
	block, err := aes.NewCipher(append([]byte(nil), key...))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeEncryptionFailed, "init aes cipher")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeEncryptionFailed, "init gcm")
	}
	return &AESGCMEncryptor{aead: aead, rand: rand.Reader}, nil
}

// NewAESGCMEncryptorFromBase64 decodes a standard base64 key and constructs an AESGCMEncryptor.
func NewAESGCMEncryptorFromBase64(encoded string) (*AESGCMEncryptor, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, apperrors.InvalidArgument("encryption key is required")
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeEncryptionFailed, "decode encryption key")
	}
	return NewAESGCMEncryptor(key)
}

// GenerateKey returns a fresh random AES-256 key encoded as standard base64.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeEncryptionFailed, "generate key")
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// Encrypt seals plaintext under a fresh nonce.
func (e *AESGCMEncryptor) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", apperrors.InvalidArgument("plaintext cannot be empty")
	}
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(e.rand, nonce); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeEncryptionFailed, "generate nonce")
	}
	// Seal appends to nonce, giving nonce||ciphertext||tag in one buffer.
	buf := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(buf), nil
}

// Decrypt opens a value produced by Encrypt. Any malformed or tampered input fails with DecryptionFailed.
func (e *AESGCMEncryptor) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", apperrors.InvalidArgument("ciphertext cannot be empty")
	}
	data, err := strictB64.DecodeString(ciphertext)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeDecryptionFailed, "decode ciphertext")
	}
	nonceSize := e.aead.NonceSize()
	if len(data) < nonceSize+tagSize {
		return "", apperrors.Wrap(
			fmt.Errorf("got %d bytes", len(data)),
			apperrors.ErrCodeDecryptionFailed,
			"ciphertext too short",
		)
	}
	pt, err := e.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeDecryptionFailed, "open ciphertext")
	}
	return string(pt), nil
}
