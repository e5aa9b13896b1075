package domain

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"time"
)

const UserActivationScope = "user_activation"

// Token carries both the plaintext handed to the user and its SHA-256 hash.
// Only the hash is persisted.
type Token struct {
	Plaintext string
	Hash      []byte
	UserId    int64
	Expiry    time.Time
	Scope     string
}

func GenerateToken(userId int64, ttl time.Duration, scope string) (*Token, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}

	t := &Token{
		Plaintext: base64.RawURLEncoding.EncodeToString(raw),
		UserId:    userId,
		Expiry:    time.Now().Add(ttl),
		Scope:     scope,
	}

	hash := sha256.Sum256([]byte(t.Plaintext))
	t.Hash = hash[:]

	return t, nil
}

type TokenRepository interface {
	Create(context.Context, *Token) error
	DeleteAllForUser(ctx context.Context, tokenScope string, userID int) error
}
