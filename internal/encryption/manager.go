package encryption

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/google/uuid"

	"lms-service/internal/config"
)

var (
	ErrEncryptionFailed = errors.New("encryption failed")
	ErrDecryptionFailed = errors.New("decryption failed")
)

// EncryptedData is the stored ciphertext envelope for a sensitive field
// (the national id). The DEK is itself encrypted under the KMS master key.
type EncryptedData struct {
	EncryptedValue string    `json:"encrypted_value"`
	EncryptedDEK   string    `json:"encrypted_dek"`
	KeyID          string    `json:"key_id"`
	CreatedAt      time.Time `json:"created_at"`
}

type dataKey struct {
	Plaintext  []byte
	Ciphertext []byte
	KeyID      string
}

// EncryptionManager performs AES-256-GCM envelope encryption. With KMS
// disabled (development) it generates local throwaway data keys.
type EncryptionManager struct {
	kmsClient *kms.Client
	config    *config.Config
	keyCache  sync.Map // encrypted DEK -> plaintext DEK
}

func NewEncryptionManager(cfg *config.Config, kmsClient *kms.Client) *EncryptionManager {
	return &EncryptionManager{
		kmsClient: kmsClient,
		config:    cfg,
	}
}

func (em *EncryptionManager) generateDataKey(ctx context.Context) (*dataKey, error) {
	if !em.config.KMS.Enabled || em.kmsClient == nil {
		return em.generateLocalKey()
	}

	result, err := em.kmsClient.GenerateDataKey(ctx, &kms.GenerateDataKeyInput{
		KeyId:   aws.String(em.config.KMS.KeyID),
		KeySpec: types.DataKeySpecAes256,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate data key: %w", err)
	}

	return &dataKey{
		Plaintext:  result.Plaintext,
		Ciphertext: result.CiphertextBlob,
		KeyID:      em.config.KMS.KeyID,
	}, nil
}

func (em *EncryptionManager) generateLocalKey() (*dataKey, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate local key: %w", err)
	}
	// Development only: the "encrypted" DEK is just the key itself encoded.
	return &dataKey{
		Plaintext:  key,
		Ciphertext: []byte(base64.StdEncoding.EncodeToString(key)),
		KeyID:      uuid.New().String(),
	}, nil
}

func (em *EncryptionManager) decryptDataKey(ctx context.Context, encryptedDEK []byte) ([]byte, error) {
	cacheKey := string(encryptedDEK)
	if cached, ok := em.keyCache.Load(cacheKey); ok {
		return cached.([]byte), nil
	}

	var plaintext []byte
	if !em.config.KMS.Enabled || em.kmsClient == nil {
		key, err := base64.StdEncoding.DecodeString(string(encryptedDEK))
		if err != nil {
			return nil, fmt.Errorf("%w: bad local key encoding", ErrDecryptionFailed)
		}
		plaintext = key
	} else {
		result, err := em.kmsClient.Decrypt(ctx, &kms.DecryptInput{
			CiphertextBlob: encryptedDEK,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt data key: %w", err)
		}
		plaintext = result.Plaintext
	}

	em.keyCache.Store(cacheKey, plaintext)
	return plaintext, nil
}

// EncryptField envelope-encrypts a sensitive value and returns the stored
// form as JSON bytes.
func (em *EncryptionManager) EncryptField(ctx context.Context, plaintext string) ([]byte, string, error) {
	dk, err := em.generateDataKey(ctx)
	if err != nil {
		return nil, "", err
	}

	block, err := aes.NewCipher(dk.Plaintext)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)

	envelope := EncryptedData{
		EncryptedValue: base64.StdEncoding.EncodeToString(sealed),
		EncryptedDEK:   base64.StdEncoding.EncodeToString(dk.Ciphertext),
		KeyID:          dk.KeyID,
		CreatedAt:      time.Now().UTC(),
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}
	return raw, dk.KeyID, nil
}

// DecryptField reverses EncryptField.
func (em *EncryptionManager) DecryptField(ctx context.Context, raw []byte) (string, error) {
	var envelope EncryptedData
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", fmt.Errorf("%w: bad envelope", ErrDecryptionFailed)
	}

	encryptedDEK, err := base64.StdEncoding.DecodeString(envelope.EncryptedDEK)
	if err != nil {
		return "", fmt.Errorf("%w: bad DEK encoding", ErrDecryptionFailed)
	}
	key, err := em.decryptDataKey(ctx, encryptedDEK)
	if err != nil {
		return "", err
	}

	sealed, err := base64.StdEncoding.DecodeString(envelope.EncryptedValue)
	if err != nil {
		return "", fmt.Errorf("%w: bad value encoding", ErrDecryptionFailed)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	if len(sealed) < gcm.NonceSize() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecryptionFailed)
	}

	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return string(plaintext), nil
}

// ClearCache drops cached plaintext DEKs on shutdown.
func (em *EncryptionManager) ClearCache() {
	em.keyCache = sync.Map{}
}
