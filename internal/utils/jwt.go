package utils // package utils provides helpers for tokens, cookies, hashing and responses

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sincarebunch/barbershop-api/internal/model"
)

// DefaultAccessTTL is the canonical access token lifetime.
const DefaultAccessTTL = 15 * time.Minute

// refreshTokenBytes is the amount of random data behind a refresh token
// (64 hex characters once encoded).
const refreshTokenBytes = 32

// ErrInvalidAccessToken is returned by Verify for any token that is
// malformed, expired, signed with another key or another algorithm.
var ErrInvalidAccessToken = errors.New("invalid access token")

// Claims is the reduced identity carried by an access token.
type Claims struct {
	ID    uint64     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Phone string     `json:"phone"`
	Role  model.Role `json:"role"`
	jwt.RegisteredClaims
}

// AccessToken represents a signed JWT access token along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// TokenIssuer signs access tokens with an ECDSA P-256 private key (ES256)
// and verifies them with the matching public key.
type TokenIssuer struct {
	priv *ecdsa.PrivateKey
	pub  *ecdsa.PublicKey
	ttl  time.Duration
}

// NewTokenIssuer builds an issuer from an already parsed key pair.  A
// non-positive ttl is replaced by DefaultAccessTTL.
func NewTokenIssuer(priv *ecdsa.PrivateKey, pub *ecdsa.PublicKey, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	return &TokenIssuer{priv: priv, pub: pub, ttl: ttl}
}

// LoadTokenIssuer reads PEM encoded EC keys from disk.
func LoadTokenIssuer(privPath, pubPath string, ttl time.Duration) (*TokenIssuer, error) {
	privPem, err := os.ReadFile(privPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	priv, err := jwt.ParseECPrivateKeyFromPEM(privPem)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	pubPem, err := os.ReadFile(pubPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pub, err := jwt.ParseECPublicKeyFromPEM(pubPem)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return NewTokenIssuer(priv, pub, ttl), nil
}

// TTL returns the lifetime given to new access tokens.
func (i *TokenIssuer) TTL() time.Duration { return i.ttl }

// IssueAccessToken signs {id, name, email, phone, role} for p.
func (i *TokenIssuer) IssueAccessToken(p model.Profile) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(i.ttl)
	claims := Claims{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Phone: p.Phone,
		Role:  p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(p.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(i.priv)
	if err != nil {
		return AccessToken{}, fmt.Errorf("sign access token: %w", err)
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// Verify parses raw and returns its claims.  Every failure collapses to
// ErrInvalidAccessToken.
func (i *TokenIssuer) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrInvalidAccessToken
	}
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, ErrInvalidAccessToken
		}
		return i.pub, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return nil, ErrInvalidAccessToken
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || claims.ID == 0 {
		return nil, ErrInvalidAccessToken
	}
	return claims, nil
}

// NewRefreshToken returns a cryptographically secure random token encoded
// as hex.  Refresh tokens are opaque; their lifetime lives in the store.
func NewRefreshToken() (string, error) {
	return randomHex(refreshTokenBytes)
}

// HashRefreshRaw returns the SHA‑256 hash of the raw refresh token as a hex
// string.  Only the hash is persisted.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex‑encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
