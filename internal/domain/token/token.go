package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// AccessToken grants a contractor time-boxed access to exactly one work
// order. Only the SHA-256 hash of the link token is stored; the plaintext
// exists once, inside the emailed link.
type AccessToken struct {
	ID              int64      `json:"id"`
	TokenID         uuid.UUID  `json:"tokenId"`
	TokenHash       string     `json:"-"`
	WorkOrderID     uuid.UUID  `json:"workOrderId"`
	ContractorEmail string     `json:"contractorEmail"`
	IssuedAt        time.Time  `json:"issuedAt"`
	ExpiresAt       time.Time  `json:"expiresAt"`
	RevokedAt       *time.Time `json:"revokedAt,omitempty"`
	LastUsedAt      *time.Time `json:"lastUsedAt,omitempty"`
}

func (t *AccessToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

func (t *AccessToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Mint generates a new link token and the hash under which it is stored.
func Mint() (plaintext, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	plaintext = base64.RawURLEncoding.EncodeToString(buf)
	return plaintext, Hash(plaintext), nil
}

// Hash returns the storage hash of a presented token.
func Hash(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
