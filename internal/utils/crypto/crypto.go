package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// normalizeKey pads or truncates the secret to 32 bytes for AES-256.
func normalizeKey(secret string) []byte {
	key := []byte(secret)
	if len(key) < 32 {
		padded := make([]byte, 32)
		copy(padded, key)
		return padded
	}
	return key[:32]
}

// EncryptString encrypts plaintext using AES-GCM with the given secret key.
// Used to store webhook signing secrets at rest.
func EncryptString(secret, plaintext string) (string, error) {
	if secret == "" {
		return "", errors.New("secret key cannot be empty")
	}

	block, err := aes.NewCipher(normalizeKey(secret))
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptString decrypts ciphertext produced by EncryptString.
func DecryptString(secret, ciphertext string) (string, error) {
	if secret == "" {
		return "", errors.New("secret key cannot be empty")
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(normalizeKey(secret))
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(raw) < gcm.NonceSize() {
		return "", errors.New("ciphertext too short")
	}

	nonce, payload := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, payload, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
