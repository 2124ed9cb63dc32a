// Package session binds a browser to its game.
//
// A session token is an HS256 JWT whose "gid" claim names the game. The
// signing key is derived from the configured secret with HKDF-SHA256, so the
// raw secret never signs anything directly. Tokens travel either in an
// Authorization: Bearer header or in an HttpOnly cookie.
package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

// ErrInvalidToken covers missing, malformed, expired or forged tokens.
var ErrInvalidToken = errors.New("invalid session token")

const keyInfo = "crisscross session v1"

// Claims is the JWT payload.
type Claims struct {
	GameID string `json:"gid"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies session tokens.
type Tokens struct {
	key        []byte
	ttl        time.Duration
	cookieName string
	secure     bool
	now        func() time.Time
}

// Options configures Tokens.
type Options struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool // Secure + SameSite=None cookies
}

// New derives the signing key from opts.Secret.
func New(opts Options) (*Tokens, error) {
	if opts.Secret == "" {
		return nil, errors.New("session secret is empty")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(opts.Secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return &Tokens{
		key:        key,
		ttl:        opts.TTL,
		cookieName: opts.CookieName,
		secure:     opts.Secure,
		now:        time.Now,
	}, nil
}

// Issue signs a token for gameID and returns it with its expiry.
func (t *Tokens) Issue(gameID string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		GameID: gameID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := tok.SignedString(t.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return ss, exp, nil
}

// Parse verifies raw and returns the game id it names.
func (t *Tokens) Parse(raw string) (string, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return t.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !tok.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.GameID == "" {
		return "", fmt.Errorf("%w: no game id", ErrInvalidToken)
	}
	return claims.GameID, nil
}

// FromRequest reads the token from the Authorization header, then the cookie,
// and returns the game id it names.
func (t *Tokens) FromRequest(r *http.Request) (string, error) {
	raw := bearerOrCookie(r, t.cookieName)
	if raw == "" {
		return "", fmt.Errorf("%w: missing", ErrInvalidToken)
	}
	return t.Parse(raw)
}

// SetCookie writes the session cookie.
func (t *Tokens) SetCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if t.secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     t.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a bearer token from the Authorization header or the
// named cookie.
func bearerOrCookie(r *http.Request, cookie string) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookie); err == nil {
		return c.Value
	}
	return ""
}
