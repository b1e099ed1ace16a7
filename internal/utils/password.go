package utils

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is the work factor used when no cost is configured.
const DefaultBcryptCost = 10

// MaxPasswordBytes is the longest input bcrypt reads.  Longer passwords are
// cut to this many bytes before hashing and comparing.
const MaxPasswordBytes = 72

// BcryptHasher hashes and verifies passwords with a fixed bcrypt cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, falling back to
// DefaultBcryptCost when cost is outside bcrypt's accepted range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns bcrypt hash using the configured cost.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(passwordKey(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify safely compares bcrypt hash and plain password.
func (h *BcryptHasher) Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), passwordKey(plain)) == nil
}

func passwordKey(plain string) []byte {
	b := []byte(plain)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}
	return b
}
