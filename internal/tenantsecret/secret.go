// Package tenantsecret provides the per-tenant webhook secret store and the
// two-tier key resolution used to authenticate inbound lead webhooks.
package tenantsecret

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SourceAll is the wildcard source accepted from every lead platform.
const SourceAll = "all"

const (
	secretPrefix    = "lsk_"
	displayPrefixLn = 12 // "lsk_" + 8 hex chars
)

var sourcePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// Secret is a tenant-owned webhook secret. Only the hash of the value is stored.
type Secret struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Name         string
	Source       string
	SecretHash   string
	SecretPrefix string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// GenerateSecret creates a new random secret value and returns the plaintext,
// its hash and a display prefix. The plaintext is returned only once.
func GenerateSecret() (plaintext string, hash string, prefix string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", "", err
	}
	plaintext = secretPrefix + hex.EncodeToString(bytes)
	return plaintext, HashSecret(plaintext), plaintext[:displayPrefixLn], nil
}

// HashSecret hashes a plaintext secret for lookup.
func HashSecret(plaintext string) string {
	h := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(h[:])
}

// NormalizeSource lower-cases and trims a source name. The second return value
// is false when the name is not a syntactically valid source identifier.
func NormalizeSource(source string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(source))
	if !sourcePattern.MatchString(normalized) {
		return "", false
	}
	return normalized, true
}
