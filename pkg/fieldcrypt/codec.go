// Package fieldcrypt cifra campos individuales antes de persistirlos.
//
// Formato del valor cifrado: prefijo "enc:v1:" + base64(nonce || ciphertext) usando
// XChaCha20-Poly1305. Los valores sin prefijo se devuelven tal cual al descifrar
// (filas previas al cifrado).
package fieldcrypt

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

const prefix = "enc:v1:"

// ErrInvalidKey la clave no tiene 32 bytes.
var ErrInvalidKey = errors.New("fieldcrypt: la clave debe tener 32 bytes")

// Codec cifra y descifra cadenas.
type Codec interface {
	Encrypt(plain string) (string, error)
	Decrypt(stored string) (string, error)
}

// AEADCodec implementación sobre XChaCha20-Poly1305.
type AEADCodec struct {
	key []byte
}

// New crea el codec con una clave de 32 bytes.
func New(key []byte) (*AEADCodec, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrInvalidKey
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &AEADCodec{key: k}, nil
}

// NewFromBase64 acepta la clave como "base64:<...>" o base64 plano (APP_KEY).
func NewFromBase64(encoded string) (*AEADCodec, error) {
	encoded = strings.TrimPrefix(strings.TrimSpace(encoded), "base64:")
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("fieldcrypt: decodificar clave: %w", err)
	}
	return New(key)
}

// Encrypt cifra plain. La cadena vacía se guarda vacía.
func (c *AEADCodec) Encrypt(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("fieldcrypt: nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plain), nil)
	return prefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt descifra un valor guardado por Encrypt.
func (c *AEADCodec) Decrypt(stored string) (string, error) {
	if !strings.HasPrefix(stored, prefix) {
		return stored, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, prefix))
	if err != nil {
		return "", fmt.Errorf("fieldcrypt: base64: %w", err)
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize() {
		return "", errors.New("fieldcrypt: valor cifrado truncado")
	}
	nonce, ct := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("fieldcrypt: descifrar: %w", err)
	}
	return string(plain), nil
}
