package security

import (
	"errors"
	"fmt"
	"time"

	"axiapac.com/timeclock/timeclock/v1/common/role"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is what the client learns about the signed-in user from the token.
type Identity struct {
	UserID    string
	Role      role.Role
	ExpiresAt time.Time
}

func (i Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

type IdentityClaims struct {
	UserID string    `json:"user_id"`
	Role   role.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *IdentityClaims) identity() (Identity, error) {
	if c.UserID == "" {
		return Identity{}, fmt.Errorf("%w: missing user_id", ErrInvalidToken)
	}
	r, err := role.Parse(string(c.Role))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id := Identity{UserID: c.UserID, Role: r}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id, nil
}

// ParseIdentity reads the claims of a token without checking its signature.
// The server is the authority on tokens; the client only needs user_id, role and exp.
func ParseIdentity(tokenStr string) (Identity, error) {
	claims := &IdentityClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.identity()
}

// VerifyIdentity parses an HMAC signed token and checks its signature and expiry.
func VerifyIdentity(tokenStr string, secret []byte) (Identity, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.identity()
}

// CreateIdentityToken signs a token shaped like the ones the server issues.
// It is used for local development and tests.
func CreateIdentityToken(identity Identity, secret []byte, expiresIn time.Duration) (string, error) {
	claims := IdentityClaims{
		UserID: identity.UserID,
		Role:   identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
