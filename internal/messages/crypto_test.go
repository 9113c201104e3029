package messages

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return base64.URLEncoding.EncodeToString(key)
}

func TestNewCipher_KeyValidation(t *testing.T) {
	_, err := NewCipher("не base64!")
	assert.Error(t, err)

	// ключ правильного формата, но неверной длины
	short := base64.URLEncoding.EncodeToString([]byte("короткий"))
	_, err = NewCipher(short)
	assert.Error(t, err)

	_, err = NewCipher(testKey(t))
	assert.NoError(t, err)
}

func TestCipher_RoundTrip(t *testing.T) {
	cipher, err := NewCipher(testKey(t))
	require.NoError(t, err)

	for _, plain := range []string{
		"Привет! Ещё актуально?",
		"",
		"multi\nline\ntext",
	} {
		encrypted, err := cipher.Encrypt(plain)
		require.NoError(t, err)
		assert.NotEqual(t, plain, encrypted)

		decrypted, err := cipher.Decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, plain, decrypted)
	}
}

func TestCipher_NonDeterministic(t *testing.T) {
	cipher, err := NewCipher(testKey(t))
	require.NoError(t, err)

	first, err := cipher.Encrypt("одно и то же сообщение")
	require.NoError(t, err)
	second, err := cipher.Encrypt("одно и то же сообщение")
	require.NoError(t, err)

	// одинаковый текст не должен давать одинаковый шифротекст
	assert.NotEqual(t, first, second)
}

func TestCipher_DecryptGarbage(t *testing.T) {
	cipher, err := NewCipher(testKey(t))
	require.NoError(t, err)

	_, err = cipher.Decrypt("не шифротекст")
	assert.Error(t, err)

	_, err = cipher.Decrypt(base64.RawURLEncoding.EncodeToString([]byte("xx")))
	assert.Error(t, err)
}

func TestCipher_WrongKey(t *testing.T) {
	first, err := NewCipher(testKey(t))
	require.NoError(t, err)
	second, err := NewCipher(testKey(t))
	require.NoError(t, err)

	encrypted, err := first.Encrypt("секрет")
	require.NoError(t, err)

	_, err = second.Decrypt(encrypted)
	assert.Error(t, err)
}
