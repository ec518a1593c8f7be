// Package security stores the warehouse password referenced from the YAML
// config. The OS keyring is preferred; when unavailable the credential is
// kept in an AES-GCM encrypted file under the app home, keyed via PBKDF2
// from a machine-scoped secret.
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/pbkdf2"

	"flakeforge/internal/common"
)

const (
	// Keyring service name
	keyringService = "flakeforge"
	// Salt for key derivation
	saltSize = 32
	// Number of iterations for PBKDF2
	pbkdf2Iterations = 100000
	// Key size for AES-256
	keySize = 32
)

// CredentialManager handles secure storage and retrieval of credentials
type CredentialManager struct {
	useKeyring bool
	masterKey  []byte
}

// Credential represents a stored credential
type Credential struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Value     string `json:"value"`
	Encrypted bool   `json:"encrypted"`
}

// NewCredentialManager creates a new credential manager
func NewCredentialManager() (*CredentialManager, error) {
	cm := &CredentialManager{
		useKeyring: isKeyringAvailable(),
	}

	if !cm.useKeyring {
		key, err := cm.getMasterKey()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize master key: %w", err)
		}
		cm.masterKey = key
	}

	return cm, nil
}

// StorePassword stores the warehouse password under the given reference name
func (cm *CredentialManager) StorePassword(ref, password string) error {
	return cm.storeCredential(ref, "warehouse-password", password)
}

// GetPassword retrieves the warehouse password for the given reference name
func (cm *CredentialManager) GetPassword(ref string) (string, error) {
	cred, err := cm.getCredential(ref)
	if err != nil {
		return "", err
	}
	return cred.Value, nil
}

// DeleteCredential removes a stored credential
func (cm *CredentialManager) DeleteCredential(name string) error {
	if cm.useKeyring {
		return keyring.Delete(keyringService, name)
	}
	return os.Remove(cm.getCredentialPath(name))
}

func (cm *CredentialManager) storeCredential(name, credType, value string) error {
	if cm.useKeyring {
		return cm.storeInKeyring(name, credType, value)
	}
	return cm.storeEncrypted(name, credType, value)
}

func (cm *CredentialManager) getCredential(name string) (*Credential, error) {
	if cm.useKeyring {
		return cm.getFromKeyring(name)
	}
	return cm.getEncrypted(name)
}

// Keyring storage methods

func (cm *CredentialManager) storeInKeyring(name, credType, value string) error {
	cred := Credential{
		Name:  name,
		Type:  credType,
		Value: value,
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	if err := keyring.Set(keyringService, name, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	return nil
}

func (cm *CredentialManager) getFromKeyring(name string) (*Credential, error) {
	data, err := keyring.Get(keyringService, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get from keyring: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal([]byte(data), &cred); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credential: %w", err)
	}

	return &cred, nil
}

// Encrypted file storage methods

func (cm *CredentialManager) storeEncrypted(name, credType, value string) error {
	encrypted, err := cm.encrypt(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt credential: %w", err)
	}

	cred := Credential{
		Name:      name,
		Type:      credType,
		Value:     encrypted,
		Encrypted: true,
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cm.getCredentialsDir(), common.DirPermissionSecure); err != nil {
		return err
	}

	path := cm.getCredentialPath(name)
	validatedPath, err := common.ValidatePath(path, cm.getCredentialsDir())
	if err != nil {
		return fmt.Errorf("invalid credential file path: %w", err)
	}
	return os.WriteFile(validatedPath, data, common.FilePermissionSecure) // #nosec G304
}

func (cm *CredentialManager) getEncrypted(name string) (*Credential, error) {
	path := cm.getCredentialPath(name)
	validatedPath, err := common.ValidatePath(path, cm.getCredentialsDir())
	if err != nil {
		return nil, fmt.Errorf("invalid credential file path: %w", err)
	}
	data, err := os.ReadFile(validatedPath) // #nosec G304
	if err != nil {
		return nil, err
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, err
	}

	if cred.Encrypted {
		decrypted, err := cm.decrypt(cred.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt credential: %w", err)
		}
		cred.Value = decrypted
		cred.Encrypted = false
	}

	return &cred, nil
}

// Encryption methods

func (cm *CredentialManager) encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(cm.masterKey)
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

func (cm *CredentialManager) decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(cm.masterKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, encryptedData := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, encryptedData, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

// Helper methods

func (cm *CredentialManager) getMasterKey() ([]byte, error) {
	keyPath := cm.getMasterKeyPath()

	validatedPath, err := common.ValidatePath(keyPath, cm.getCredentialsDir())
	if err != nil {
		return nil, fmt.Errorf("invalid master key path: %w", err)
	}

	// Check if master key exists
	data, err := os.ReadFile(validatedPath) // #nosec G304 - path is validated
	if err == nil {
		// Extract the key part (skip the salt)
		if len(data) != saltSize+keySize {
			return nil, fmt.Errorf("invalid master key file size")
		}
		return data[saltSize:], nil
	}

	// Generate new master key
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	// Derive key from machine-specific data
	machineID := getMachineID()
	key := pbkdf2.Key([]byte(machineID), salt, pbkdf2Iterations, keySize, sha256.New)

	// Store salt and key together
	keyData := append(salt, key...)
	if err := os.MkdirAll(cm.getCredentialsDir(), common.DirPermissionSecure); err != nil {
		return nil, err
	}

	if err := os.WriteFile(validatedPath, keyData, common.FilePermissionSecure); err != nil { // #nosec G304
		return nil, err
	}

	return key, nil
}

func (cm *CredentialManager) getCredentialsDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".flakeforge", "credentials")
}

func (cm *CredentialManager) getCredentialPath(name string) string {
	return filepath.Join(cm.getCredentialsDir(), name+".cred")
}

func (cm *CredentialManager) getMasterKeyPath() string {
	return filepath.Join(cm.getCredentialsDir(), ".master")
}

// Platform-specific helpers

func isKeyringAvailable() bool {
	// Check if keyring usage is explicitly disabled
	if os.Getenv("FLAKEFORGE_USE_KEYRING") == "false" {
		return false
	}

	switch runtime.GOOS {
	case "darwin", "windows":
		return true
	case "linux":
		// Check if a supported keyring backend is available
		if os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != "" {
			return true
		}
	}
	return false
}

func getMachineID() string {
	hostname, _ := os.Hostname()
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME")
	}

	data := strings.Join([]string{hostname, user, runtime.GOOS, runtime.GOARCH}, "-")
	hash := sha256.Sum256([]byte(data))
	return base64.StdEncoding.EncodeToString(hash[:])
}
