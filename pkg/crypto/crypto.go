package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// Prefijo que marca un valor cifrado por este paquete. Un valor sin prefijo
// se considera texto en claro heredado y se devuelve tal cual.
const encPrefix = "enc:"

// Cipher cifra y descifra credenciales con AES-256-GCM. La clave se deriva
// con SHA-256 de la passphrase de configuración.
type Cipher struct {
	aead cipher.AEAD
}

// New construye el cifrador desde la passphrase. Passphrase vacía es error:
// las credenciales de integraciones no deben guardarse sin cifrar.
func New(passphrase string) (*Cipher, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("crypto: passphrase vacía")
	}
	key := sha256.Sum256([]byte(passphrase))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("crypto: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt cifra el texto y lo devuelve como enc:<base64(nonce+ciphertext)>.
func (c *Cipher) Encrypt(plain string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypto: generar nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plain), nil)
	return encPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// SafeDecrypt descifra un valor guardado. Tolera entrada ya en claro
// (sin prefijo: se devuelve sin cambios) y entrada malformada o con clave
// incorrecta (devuelve vacío). Nunca retorna error: el caller decide qué
// hacer con una credencial vacía.
func (c *Cipher) SafeDecrypt(value string) string {
	if value == "" {
		return ""
	}
	if !strings.HasPrefix(value, encPrefix) {
		return value
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, encPrefix))
	if err != nil {
		return ""
	}
	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return ""
	}
	plain, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return ""
	}
	return string(plain)
}
