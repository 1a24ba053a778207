package jwt

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/streamkit/platform/pkg/scopes"
)

// Config holds signing settings, loaded with config.Load.
type Config struct {
	Secret string        `env:"JWT_SECRET,required"`
	Issuer string        `env:"JWT_ISSUER" envDefault:"platformd"`
	TTL    time.Duration `env:"JWT_TTL" envDefault:"1h"`
}

// Claims are the access token claims. TenantID is empty for platform
// operators, who act across tenants through scopes instead.
type Claims struct {
	TenantID string `json:"tid,omitempty"`
	Scope    string `json:"scope,omitempty"`
	gojwt.RegisteredClaims
}

// Tenant returns the tenant the token was issued for.
func (c *Claims) Tenant() (uuid.UUID, bool) {
	if c == nil || c.TenantID == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(c.TenantID)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func (c *Claims) Scopes() []string {
	if c == nil {
		return nil
	}
	return scopes.Parse(c.Scope)
}

// Service issues and verifies HS256 tokens.
type Service struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Service)

func WithIssuer(issuer string) Option {
	return func(s *Service) { s.issuer = issuer }
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock sets the issuing clock. Verification uses the library clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(key []byte, opts ...Option) (*Service, error) {
	if len(key) == 0 {
		return nil, ErrMissingSigningKey
	}
	s := &Service{key: key, ttl: time.Hour, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func NewFromConfig(cfg Config) (*Service, error) {
	return New([]byte(cfg.Secret), WithIssuer(cfg.Issuer), WithTTL(cfg.TTL))
}

// Issue signs a token for subject. Pass uuid.Nil as tenantID for a
// platform-wide token.
func (s *Service) Issue(subject string, tenantID uuid.UUID, scope ...string) (string, error) {
	now := s.now()
	claims := Claims{
		Scope: scopes.Join(scope),
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}
	if tenantID != uuid.Nil {
		claims.TenantID = tenantID.String()
	}
	return gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Parse verifies the signature, algorithm, expiry and issuer of token.
func (s *Service) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := gojwt.ParseWithClaims(token, claims, func(*gojwt.Token) (any, error) {
		return s.key, nil
	}, gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}))
	switch {
	case errors.Is(err, gojwt.ErrTokenExpired):
		return nil, errors.Join(ErrExpiredToken, err)
	case err != nil:
		return nil, errors.Join(ErrInvalidToken, err)
	case !parsed.Valid:
		return nil, ErrInvalidToken
	}
	if s.issuer != "" && !claims.VerifyIssuer(s.issuer, true) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
