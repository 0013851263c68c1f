// Package cryptox implements the client-side cryptography: deriving the
// key-encryption key from the PIN, sealing the vault key into the opaque
// recovery blob, encrypting entries, and deriving deletion pre-images.
// None of this code runs on the server; the server only ever sees the
// resulting opaque bytes and hashes.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"

	"github.com/sealvault/sealvault/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	saltSize = 16

	// KeySize is the size of the vault key in bytes.
	KeySize = 32
)

// DeriveKEK stretches the PIN into the key-encryption key used to wrap the
// vault key inside the recovery blob.
func DeriveKEK(pin []byte, salt []byte) []byte {
	return argon2.IDKey(pin, salt, 1, 64*1024, 4, 32)
}

// recoveryBlob is the JSON layout of the opaque metadata blob. Only the
// client ever parses it.
type recoveryBlob struct {
	Salt       []byte `json:"salt"`
	WrappedKey []byte `json:"wrapped_key"`
}

// MakeRecoveryBlob wraps the vault key under a PIN-derived key and returns
// the opaque blob stored on the server. A fresh salt is drawn on every call,
// so rewrapping the same key produces a different blob.
func MakeRecoveryBlob(pin []byte, vaultKey []byte) ([]byte, error) {
	salt := common.GenerateRandByteArray(saltSize)

	kek := DeriveKEK(pin, salt)
	defer common.WipeByteArray(kek)

	wrapped, err := Seal(kek, vaultKey)
	if err != nil {
		return nil, err
	}

	return json.Marshal(recoveryBlob{Salt: salt, WrappedKey: wrapped})
}

// OpenRecoveryBlob recovers the vault key from a blob previously produced by
// MakeRecoveryBlob, given the same PIN. A wrong PIN fails AEAD authentication.
func OpenRecoveryBlob(pin []byte, blob []byte) ([]byte, error) {
	var rb recoveryBlob
	if err := json.Unmarshal(blob, &rb); err != nil {
		return nil, err
	}

	kek := DeriveKEK(pin, rb.Salt)
	defer common.WipeByteArray(kek)

	return Open(kek, rb.WrappedKey)
}

// Seal encrypts plaintext with AES-256-GCM under key and returns
// nonce||ciphertext.
func Seal(key []byte, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a nonce||ciphertext blob produced by Seal.
func Open(key []byte, sealed []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(sealed) < aesgcm.NonceSize() {
		return nil, common.ErrorInvalidInput
	}
	nonce, ciphertext := sealed[:aesgcm.NonceSize()], sealed[aesgcm.NonceSize():]

	return aesgcm.Open(nil, nonce, ciphertext, nil)
}

// DeletionPreimage derives the pre-image that authorizes deleting the named
// entry. It is deterministic in (vaultKey, name), so the client needs no
// local state to delete entries it created.
func DeletionPreimage(vaultKey []byte, name string) []byte {
	mac := hmac.New(sha256.New, vaultKey)
	mac.Write([]byte("delete:"))
	mac.Write([]byte(name))
	return mac.Sum(nil)
}
