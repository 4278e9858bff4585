package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/gagliardetto/solana-go"
)

// keystoreEntry is the on-disk format for an encrypted operator key.
type keystoreEntry struct {
	Address      string `json:"address"`
	EncryptedKey string `json:"encrypted_key"`
	Version      int    `json:"version"`
}

// OperatorKeystore manages the vault operator's signing identity: key
// generation, AES-256-GCM encryption at rest, and loading into a form the
// Solana vault can sign with.
type OperatorKeystore struct {
	dir string
}

// NewOperatorKeystore uses VAULT_KEYSTORE_DIR, defaulting to configs/keystore.
func NewOperatorKeystore() *OperatorKeystore {
	dir := os.Getenv("VAULT_KEYSTORE_DIR")
	if dir == "" {
		dir = "configs/keystore"
	}
	return &OperatorKeystore{dir: dir}
}

// GenerateOperator creates a fresh operator key pair.
func (ks *OperatorKeystore) GenerateOperator() (*types.Account, error) {
	account := types.NewAccount()
	return &account, nil
}

// Save encrypts the operator key with the password and writes it under the
// keystore directory, one JSON file per address.
func (ks *OperatorKeystore) Save(account *types.Account, password string) error {
	encrypted, err := encryptKey(account.PrivateKey, password)
	if err != nil {
		return fmt.Errorf("failed to encrypt operator key: %w", err)
	}

	entry := keystoreEntry{
		Address:      account.PublicKey.ToBase58(),
		EncryptedKey: encrypted,
		Version:      1,
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal keystore entry: %w", err)
	}

	if err := os.MkdirAll(ks.dir, 0700); err != nil {
		return fmt.Errorf("failed to create keystore directory: %w", err)
	}
	filename := filepath.Join(ks.dir, entry.Address+".json")
	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write keystore entry: %w", err)
	}
	return nil
}

// Load decrypts the operator key for an address and returns it ready for
// transaction signing.
func (ks *OperatorKeystore) Load(address, password string) (solana.PrivateKey, error) {
	data, err := os.ReadFile(filepath.Join(ks.dir, address+".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore entry: %w", err)
	}

	var entry keystoreEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keystore entry: %w", err)
	}
	if entry.Address != address {
		return nil, fmt.Errorf("address mismatch: expected %s, got %s", address, entry.Address)
	}

	raw, err := decryptKey(entry.EncryptedKey, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt operator key: %w", err)
	}
	if _, err := types.AccountFromBytes(raw); err != nil {
		return nil, fmt.Errorf("invalid operator key material: %w", err)
	}
	return solana.PrivateKey(raw), nil
}

func encryptKey(privateKey []byte, password string) (string, error) {
	block, err := aes.NewCipher(deriveKey(password))
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, privateKey, nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func decryptKey(encryptedKey, password string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encryptedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(password))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	ciphertext = ciphertext[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}

func deriveKey(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return sum[:]
}
