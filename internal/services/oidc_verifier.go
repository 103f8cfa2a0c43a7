package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	firebaseIssuerPrefix = "https://securetoken.google.com/"
	firebaseJWKSURL      = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
	maxDevSubjectLen     = 128
)

var ErrInvalidToken = errors.New("invalid id token")

// ExternalIdentity is the verified principal behind a bearer token.
type ExternalIdentity struct {
	Provider      string
	Sub           string
	Email         string
	EmailVerified bool
}

// TokenVerifier checks an identity-provider token and returns its subject.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*ExternalIdentity, error)
}

type firebaseClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

type firebaseVerifier struct {
	projectID string
	parser    *jwt.Parser
	jwks      *jwksCache
}

// NewFirebaseVerifier verifies Firebase Auth ID tokens for projectID. jwksURL may
// be empty to use Google's published securetoken keys.
func NewFirebaseVerifier(httpClient *http.Client, projectID, jwksURL string) (TokenVerifier, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if strings.TrimSpace(jwksURL) == "" {
		jwksURL = firebaseJWKSURL
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(firebaseIssuerPrefix+projectID),
		jwt.WithAudience(projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(30*time.Second),
	)
	cache := newJWKSCache(httpClient)
	cache.setURL(jwksURL)
	return &firebaseVerifier{projectID: projectID, parser: parser, jwks: cache}, nil
}

func (v *firebaseVerifier) Verify(ctx context.Context, token string) (*ExternalIdentity, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidToken)
	}
	claims := &firebaseClaims{}
	tok, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if strings.TrimSpace(kid) == "" {
			return nil, fmt.Errorf("missing kid")
		}
		return v.jwks.getKey(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if tok == nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	return &ExternalIdentity{
		Provider:      "firebase",
		Sub:           claims.Subject,
		Email:         strings.TrimSpace(claims.Email),
		EmailVerified: claims.EmailVerified,
	}, nil
}

type devVerifier struct{}

// NewDevVerifier accepts any non-empty bearer token and uses it as the subject.
// An optional "|email" suffix sets the email. Local runs only.
func NewDevVerifier() TokenVerifier { return devVerifier{} }

func (devVerifier) Verify(_ context.Context, token string) (*ExternalIdentity, error) {
	token = strings.TrimSpace(token)
	sub, email, _ := strings.Cut(token, "|")
	sub = strings.TrimSpace(sub)
	if sub == "" || len(sub) > maxDevSubjectLen || strings.ContainsAny(sub, " \t\r\n") {
		return nil, fmt.Errorf("%w: dev subject must be a non-empty single word", ErrInvalidToken)
	}
	return &ExternalIdentity{Provider: "dev", Sub: sub, Email: strings.TrimSpace(email)}, nil
}
