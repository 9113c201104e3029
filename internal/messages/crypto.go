package messages

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// Cipher шифрует содержимое сообщений перед записью в хранилище.
// Ключ общий на процесс, задаётся конфигурацией при старте.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher создаёт шифр из ключа ENCODE_KEY (base64, 32 байта)
func NewCipher(encodedKey string) (*Cipher, error) {
	key, err := base64.URLEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования ключа шифрования: %w", err)
	}
	if len(key) != 32 {
		return nil, errors.New("ключ шифрования должен содержать 32 байта")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации шифра: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации GCM: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt шифрует текст и возвращает base64-строку nonce||ciphertext
func (c *Cipher) Encrypt(plain string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("ошибка генерации nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt расшифровывает строку, полученную из Encrypt
func (c *Cipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("ошибка декодирования сообщения: %w", err)
	}
	if len(raw) < c.aead.NonceSize() {
		return "", errors.New("повреждённое зашифрованное сообщение")
	}
	nonce, ciphertext := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("ошибка расшифровки сообщения: %w", err)
	}
	return string(plain), nil
}
