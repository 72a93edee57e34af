package security

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "lyla"
	vaultFile      = "vault.enc"
)

// KeyStore holds the bot token and API keys. Writes go to the OS keychain
// when one is available; otherwise to an encrypted file vault.
type KeyStore struct {
	encryptionKey []byte // nil disables the file vault
	vaultPath     string
}

// NewKeyStore creates a key store. masterKey unlocks the file vault and may
// be nil when only the OS keychain is wanted.
func NewKeyStore(masterKey []byte) (*KeyStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(home, ".lyla")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return &KeyStore{
		encryptionKey: masterKey,
		vaultPath:     filepath.Join(dir, vaultFile),
	}, nil
}

// Set stores a secret under name.
func (ks *KeyStore) Set(name, value string) error {
	if err := keyring.Set(keyringService, name, value); err == nil {
		return nil
	}
	return ks.vaultUpdate(func(vault map[string]string) {
		vault[name] = value
	})
}

// Get retrieves the secret stored under name.
func (ks *KeyStore) Get(name string) (string, error) {
	if val, err := keyring.Get(keyringService, name); err == nil {
		return val, nil
	}

	vault, err := ks.vaultLoad()
	if err != nil {
		return "", err
	}
	val, ok := vault[name]
	if !ok {
		return "", fmt.Errorf("key not found: %s", name)
	}
	return val, nil
}

// Has reports whether a secret exists under name.
func (ks *KeyStore) Has(name string) bool {
	_, err := ks.Get(name)
	return err == nil
}

// Delete removes the secret stored under name from both backends.
func (ks *KeyStore) Delete(name string) error {
	_ = keyring.Delete(keyringService, name)
	return ks.vaultUpdate(func(vault map[string]string) {
		delete(vault, name)
	})
}

// MaskKey returns a display form of an API key with the middle hidden.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:3] + "..." + key[len(key)-4:]
}

func (ks *KeyStore) vaultLoad() (map[string]string, error) {
	data, err := os.ReadFile(ks.vaultPath)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	if ks.encryptionKey == nil {
		return nil, fmt.Errorf("no encryption key set")
	}

	plaintext, err := Open(data, ks.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("decrypt vault: %w", err)
	}

	var vault map[string]string
	if err := json.Unmarshal(plaintext, &vault); err != nil {
		return nil, fmt.Errorf("parse vault: %w", err)
	}
	return vault, nil
}

func (ks *KeyStore) vaultUpdate(fn func(map[string]string)) error {
	if ks.encryptionKey == nil {
		return fmt.Errorf("no encryption key set")
	}

	vault, err := ks.vaultLoad()
	if err != nil {
		vault = make(map[string]string)
	}
	fn(vault)

	data, err := json.Marshal(vault)
	if err != nil {
		return err
	}
	sealed, err := Seal(data, ks.encryptionKey)
	if err != nil {
		return err
	}
	return os.WriteFile(ks.vaultPath, sealed, 0600)
}
