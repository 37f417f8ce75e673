// Package token implements the JWT access/refresh token lifecycle.
//
// Tokens are HS256-signed and stateless: the server keeps no record of issued
// tokens, so a token is valid until its expiry unless its jti has been placed
// on the external denylist consulted by the auth flow.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "cradle/pkg/domain-errors"
	"cradle/pkg/requestcontext"
)

// Token type discriminator carried in the "type" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims are the JWT claims embedded in every Cradle token.
type Claims struct {
	Email    string   `json:"email,omitempty"`
	TenantID string   `json:"tenant_id,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	Type     string   `json:"type"`
	jwt.RegisteredClaims
}

// Identity converts validated claims into the request identity stored in
// context. It fails when subject or tenant are not well-formed UUIDs.
func (c *Claims) Identity() (requestcontext.Identity, error) {
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return requestcontext.Identity{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	tenantID, err := uuid.Parse(c.TenantID)
	if err != nil {
		return requestcontext.Identity{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token tenant")
	}
	return requestcontext.Identity{
		UserID:   userID,
		TenantID: tenantID,
		Email:    c.Email,
		Roles:    c.Roles,
		TokenID:  c.ID,
	}, nil
}

// Pair is the issued token pair returned to clients.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Subject describes the principal a token is issued for.
type Subject struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Email    string
	Roles    []string
}

// Service handles JWT creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService creates a token service.
func NewService(signingKey, issuer string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTTL returns the configured access token lifetime.
func (s *Service) AccessTTL() time.Duration {
	return s.accessTTL
}

// IssuePair issues a fresh access/refresh token pair for the subject.
func (s *Service) IssuePair(sub Subject) (Pair, error) {
	access, err := s.issue(sub, TypeAccess, s.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := s.issue(sub, TypeRefresh, s.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// IssueAccess issues a single access token, used by the refresh flow.
func (s *Service) IssueAccess(sub Subject) (string, error) {
	return s.issue(sub, TypeAccess, s.accessTTL)
}

func (s *Service) issue(sub Subject, tokenType string, ttl time.Duration) (string, error) {
	jti, err := newJTI()
	if err != nil {
		return "", err
	}
	now := time.Now()

	claims := Claims{
		Email:    sub.Email,
		TenantID: sub.TenantID.String(),
		Roles:    sub.Roles,
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        jti,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign token")
	}
	return signed, nil
}

// Decode validates signature, algorithm, expiry, and structural shape.
// It fails closed: any cryptographic or structural failure yields an
// unauthorized domain error, never a default identity.
func (s *Service) Decode(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "empty token")
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token issuer")
	}

	return claims, nil
}

// DecodeAccess decodes a token and rejects it unless it is an access token.
func (s *Service) DecodeAccess(tokenString string) (*Claims, error) {
	return s.decodeTyped(tokenString, TypeAccess)
}

// DecodeRefresh decodes a token and rejects it unless it is a refresh token.
func (s *Service) DecodeRefresh(tokenString string) (*Claims, error) {
	return s.decodeTyped(tokenString, TypeRefresh)
}

func (s *Service) decodeTyped(tokenString, wantType string) (*Claims, error) {
	claims, err := s.Decode(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != wantType {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token is not a "+wantType+" token")
	}
	return claims, nil
}

func newJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate token id")
	}
	return hex.EncodeToString(b), nil
}
