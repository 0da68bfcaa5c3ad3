// Package keys loads the secp256k1 key the issuer signs transactions with.
// The key can be configured as plain hex, as an AES-256-GCM envelope sealed
// with a master key, or derived from a seed for development networks.
package keys

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/hkdf"
)

// Config selects where the signing key comes from. Exactly one of
// PrivateKey, EncryptedKey or Seed must be set.
type Config struct {
	PrivateKey   string `yaml:"private_key"`   // hex, optional 0x prefix
	EncryptedKey string `yaml:"encrypted_key"` // base64 nonce || ciphertext || tag
	MasterKey    string `yaml:"master_key"`    // base64, 32 bytes
	Seed         string `yaml:"seed"`          // hex, >= 32 bytes
	SeedLabel    string `yaml:"seed_label"`
}

// Load resolves the configured signing key.
func Load(cfg Config) (*ecdsa.PrivateKey, error) {
	set := 0
	for _, v := range []string{cfg.PrivateKey, cfg.EncryptedKey, cfg.Seed} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return nil, errors.New("exactly one of private_key, encrypted_key or seed must be set")
	}

	switch {
	case cfg.PrivateKey != "":
		return ParsePrivateKeyHex(cfg.PrivateKey)
	case cfg.EncryptedKey != "":
		master, err := MasterKeyFromBase64(cfg.MasterKey)
		if err != nil {
			return nil, err
		}
		raw, err := DecryptPrivateKey(cfg.EncryptedKey, master)
		if err != nil {
			return nil, err
		}
		return crypto.ToECDSA(raw)
	default:
		seed, err := decodeHex(cfg.Seed)
		if err != nil {
			return nil, fmt.Errorf("decode seed: %w", err)
		}
		return DeriveSigningKey(cfg.SeedLabel, seed)
	}
}

// ParsePrivateKeyHex parses a 32-byte hex private key.
func ParsePrivateKeyHex(s string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// GenerateSigningKey generates a fresh secp256k1 key.
func GenerateSigningKey() (*ecdsa.PrivateKey, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate secp256k1 key: %w", err)
	}
	return key, nil
}

// DeriveSigningKey deterministically derives a key from seed and label using
// HKDF with SHA-256.
func DeriveSigningKey(label string, seed []byte) (*ecdsa.PrivateKey, error) {
	if len(seed) < 32 {
		return nil, fmt.Errorf("seed must be at least 32 bytes")
	}
	r := hkdf.New(sha256.New, seed, nil, []byte("issuer-key-"+label))
	raw := make([]byte, 32)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	key, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create private key: %w", err)
	}
	return key, nil
}

// EncryptPrivateKey seals a 32-byte private key with AES-256-GCM.
// The result is base64(nonce || ciphertext || tag).
func EncryptPrivateKey(privateKey []byte, masterKey []byte) (string, error) {
	if len(privateKey) != 32 {
		return "", fmt.Errorf("private key must be 32 bytes (secp256k1)")
	}
	gcm, err := newGCM(masterKey)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return base64.StdEncoding.EncodeToString(gcm.Seal(nonce, nonce, privateKey, nil)), nil
}

// DecryptPrivateKey opens an envelope produced by EncryptPrivateKey.
func DecryptPrivateKey(encrypted string, masterKey []byte) ([]byte, error) {
	gcm, err := newGCM(masterKey)
	if err != nil {
		return nil, err
	}
	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encrypted))
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	ns := gcm.NonceSize()
	if len(ciphertext) < ns {
		return nil, fmt.Errorf("ciphertext too short")
	}
	plaintext, err := gcm.Open(nil, ciphertext[:ns], ciphertext[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	if len(plaintext) != 32 {
		return nil, fmt.Errorf("decrypted key has wrong size: got %d, want 32", len(plaintext))
	}
	return plaintext, nil
}

func newGCM(masterKey []byte) (cipher.AEAD, error) {
	if len(masterKey) != 32 {
		return nil, fmt.Errorf("master key must be 32 bytes (AES-256)")
	}
	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// GenerateMasterKey generates a random 32-byte master key.
func GenerateMasterKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate master key: %w", err)
	}
	return key, nil
}

// MasterKeyFromBase64 decodes a base64-encoded master key
func MasterKeyFromBase64(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode master key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("master key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// MasterKeyToBase64 encodes a master key as base64 for storage
func MasterKeyToBase64(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
}
