package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token verification failures, each distinguishable so the HTTP boundary can
// give expired tokens their own message.
var (
	ErrTokenMalformed  = errors.New("token malformed")
	ErrTokenSignature  = errors.New("token signature invalid")
	ErrTokenExpired    = errors.New("token expired")
	ErrUnexpectedToken = errors.New("token invalid")
)

// Claims carried by every issued token. Subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 JWTs signed with a process-wide secret.
// Rotating the secret invalidates every outstanding token.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

func NewTokenCodec(secret []byte) *TokenCodec {
	return &TokenCodec{secret: secret, now: time.Now}
}

// WithClock overrides the codec's clock. Test hook.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	c.now = now
	return c
}

// Issue signs a token naming subjectID, valid for ttl from now.
func (c *TokenCodec) Issue(subjectID string, ttl time.Duration) (string, error) {
	now := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify parses and validates tokenStr and returns the subject id. Failures
// map to ErrTokenMalformed, ErrTokenSignature, or ErrTokenExpired; anything
// else the library reports collapses to ErrUnexpectedToken.
func (c *TokenCodec) Verify(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "", ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrTokenExpired
	default:
		return "", ErrUnexpectedToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return "", ErrTokenMalformed
	}
	return claims.Subject, nil
}
