// Package secretbox cifra y descifra tokens de bots con AES-256-GCM.
// Formato en disco: nonce (12 bytes) ‖ ciphertext. La clave se valida una
// sola vez al construir el Box; nunca por llamada.
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	nonceSizeGCM      = 12 // AES-GCM nonce recomendado (96 bits)
	requiredKeyLength = 32 // 32 bytes => AES-256
)

// ErrIntegrity indica que el ciphertext fue alterado, truncado, o que la
// clave no corresponde. Nunca se devuelve plaintext parcial.
var ErrIntegrity = errors.New("secretbox: integrity check failed")

// Box cifra/descifra con una clave fija de 32 bytes.
type Box struct {
	aead cipher.AEAD
}

// New crea un Box a partir de una clave cruda de 32 bytes.
func New(key []byte) (*Box, error) {
	if len(key) != requiredKeyLength {
		return nil, fmt.Errorf("secretbox: key must be %d bytes, got %d", requiredKeyLength, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("secretbox: aes.NewCipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secretbox: cipher.NewGCM: %w", err)
	}
	return &Box{aead: aead}, nil
}

// NewFromHex crea un Box desde una clave hex de 64 caracteres
// (formato de ENCRYPTION_KEY en configuración).
func NewFromHex(keyHex string) (*Box, error) {
	keyHex = strings.TrimSpace(keyHex)
	if len(keyHex) != requiredKeyLength*2 {
		return nil, fmt.Errorf("secretbox: hex key must be %d chars, got %d", requiredKeyLength*2, len(keyHex))
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("secretbox: decode hex key: %w", err)
	}
	return New(key)
}

// Encrypt cifra plaintext con un nonce aleatorio fresco por llamada.
// Nunca reutiliza nonces bajo la misma clave.
func (b *Box) Encrypt(plaintext string) ([]byte, error) {
	nonce := make([]byte, nonceSizeGCM)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("secretbox: nonce random: %w", err)
	}
	// Seal appendea el ciphertext después del nonce: out = nonce ‖ ct
	return b.aead.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

// Decrypt separa los primeros 12 bytes como nonce, autentica y descifra.
func (b *Box) Decrypt(data []byte) (string, error) {
	if len(data) < nonceSizeGCM {
		return "", ErrIntegrity
	}
	nonce, ct := data[:nonceSizeGCM], data[nonceSizeGCM:]
	pt, err := b.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", ErrIntegrity
	}
	return string(pt), nil
}
