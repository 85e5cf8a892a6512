// Package auth issues and parses the bearer tokens accepted by the API.
//
// Two schemes are supported. The session scheme produces
// "<prefix>-<userID>-<unixMillis>" strings that carry no signature and never
// expire; clients "log out" by forgetting the token. The jwt scheme signs an
// HS256 token with a user_id claim and an expiry.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that cannot be parsed or verified.
var ErrInvalidToken = errors.New("invalid token")

const (
	ModeSession = "session"
	ModeJWT     = "jwt"

	DefaultSessionPrefix = "blog-session"
)

// Issuer creates tokens for a user and resolves tokens back to a user ID.
type Issuer interface {
	Issue(userID int) (string, error)
	Parse(token string) (int, error)
}

// NewIssuer returns the issuer for mode. Unknown modes fall back to session tokens.
func NewIssuer(mode, sessionPrefix string, secret []byte, ttl time.Duration) Issuer {
	if mode == ModeJWT {
		return &JWTIssuer{Secret: secret, TTL: ttl}
	}
	return &SessionIssuer{Prefix: sessionPrefix}
}

// ==========================
// Session tokens
// ==========================

type SessionIssuer struct {
	Prefix string
	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *SessionIssuer) prefix() string {
	if s.Prefix == "" {
		return DefaultSessionPrefix
	}
	return s.Prefix
}

func (s *SessionIssuer) Issue(userID int) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("issue session token: bad user id %d", userID)
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return fmt.Sprintf("%s-%d-%d", s.prefix(), userID, now().UnixMilli()), nil
}

func (s *SessionIssuer) Parse(token string) (int, error) {
	rest, ok := strings.CutPrefix(token, s.prefix()+"-")
	if !ok {
		return 0, ErrInvalidToken
	}
	idPart, tsPart, ok := strings.Cut(rest, "-")
	if !ok || !isDigits(idPart) || !isDigits(tsPart) {
		return 0, ErrInvalidToken
	}
	id, err := strconv.Atoi(idPart)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	if _, err := strconv.ParseInt(tsPart, 10, 64); err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}

func isDigits(s string) bool {
	return s != "" && !strings.ContainsFunc(s, func(r rune) bool { return r < '0' || r > '9' })
}

// ==========================
// JWT tokens
// ==========================

type JWTIssuer struct {
	Secret []byte
	TTL    time.Duration
}

func (j *JWTIssuer) Issue(userID int) (string, error) {
	ttl := j.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTIssuer) Parse(tokenStr string) (int, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return j.Secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	raw, ok := claims["user_id"].(float64)
	if !ok || raw <= 0 {
		return 0, ErrInvalidToken
	}
	return int(raw), nil
}

// BearerToken extracts the token from an Authorization header value.
// It returns "" when the header is not a bearer credential.
func BearerToken(header string) string {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
