package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/entrepreneur-award/award-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims holds the JWT payload fields. Subject carries the user ID.
type Claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	Type  string      `json:"typ"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim.
func (c *Claims) UserID() string { return c.Subject }

// Options configures a Provider. RefreshSecret may be empty, in which case
// refresh tokens are signed with AccessSecret.
type Options struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// Provider signs and verifies HS256 access and refresh tokens. It keeps no
// state about issued tokens.
type Provider struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	issuer        string
	now           func() time.Time
}

func NewProvider(opts Options) (*Provider, error) {
	if opts.AccessSecret == "" {
		return nil, errors.New("jwt access secret is required")
	}
	refresh := opts.RefreshSecret
	if refresh == "" {
		refresh = opts.AccessSecret
	}
	if opts.AccessExpiry <= 0 {
		opts.AccessExpiry = 60 * time.Minute
	}
	if opts.RefreshExpiry <= 0 {
		opts.RefreshExpiry = 7 * 24 * time.Hour
	}
	if opts.Issuer == "" {
		opts.Issuer = "award-api"
	}
	return &Provider{
		accessSecret:  []byte(opts.AccessSecret),
		refreshSecret: []byte(refresh),
		accessExpiry:  opts.AccessExpiry,
		refreshExpiry: opts.RefreshExpiry,
		issuer:        opts.Issuer,
		now:           time.Now,
	}, nil
}

// IssuePair mints an access token and a refresh token for subject.
func (p *Provider) IssuePair(subject domain.TokenSubject) (*domain.TokenPair, error) {
	access, err := p.sign(subject, TokenTypeAccess, p.accessExpiry, p.accessSecret)
	if err != nil {
		return nil, err
	}
	refresh, err := p.sign(subject, TokenTypeRefresh, p.refreshExpiry, p.refreshSecret)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// SignAccess mints an access token only.
func (p *Provider) SignAccess(subject domain.TokenSubject) (string, error) {
	return p.sign(subject, TokenTypeAccess, p.accessExpiry, p.accessSecret)
}

// VerifyAccess validates an access token and returns its claims.
func (p *Provider) VerifyAccess(tokenStr string) (*Claims, error) {
	return p.verify(tokenStr, TokenTypeAccess, p.accessSecret)
}

// Refresh validates a refresh token and mints a new access token from its
// claims. Refresh tokens are not rotated; one stays usable until it expires.
func (p *Provider) Refresh(refreshToken string) (string, error) {
	claims, err := p.verify(refreshToken, TokenTypeRefresh, p.refreshSecret)
	if err != nil {
		return "", err
	}
	return p.SignAccess(domain.TokenSubject{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	})
}

func (p *Provider) sign(subject domain.TokenSubject, typ string, ttl time.Duration, secret []byte) (string, error) {
	now := p.now()
	claims := Claims{
		Email: subject.Email,
		Role:  subject.Role,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Subject:   subject.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

func (p *Provider) verify(tokenStr, typ string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(p.issuer),
		jwt.WithTimeFunc(p.now),
	)
	token, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid %s token: %w", typ, domain.ErrUnauthorized)
	}
	if !token.Valid || claims.Type != typ || claims.Subject == "" {
		return nil, fmt.Errorf("invalid %s token: %w", typ, domain.ErrUnauthorized)
	}
	return claims, nil
}
