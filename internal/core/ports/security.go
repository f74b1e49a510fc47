package ports

import "time"

// PasswordHasher performs one-way password hashing.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenClaims is the verified payload of a bearer token.
type TokenClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer issues and verifies stateless bearer tokens.
type TokenIssuer interface {
	Issue(subject string) (string, error)
	Verify(token string) (*TokenClaims, error)
}
