package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/yungbote/sprout-backend/internal/platform/apierr"
	"github.com/yungbote/sprout-backend/internal/platform/ctxutil"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

type AuthService interface {
	// SetContextFromToken verifies the bearer token and attaches the principal.
	SetContextFromToken(ctx context.Context, token string) (context.Context, error)
}

type authService struct {
	log      *logger.Logger
	verifier TokenVerifier
}

func NewAuthService(log *logger.Logger, verifier TokenVerifier) AuthService {
	return &authService{log: log.With("service", "AuthService"), verifier: verifier}
}

func (as *authService) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ctx, apierr.Unauthenticated("missing bearer token")
	}
	id, err := as.verifier.Verify(ctx, token)
	if err != nil {
		as.log.Debug("token rejected", "error", err)
		return ctx, apierr.New(http.StatusUnauthorized, apierr.CodeUnauthenticated, "invalid or expired token", err)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		ExternalID: id.Sub,
		Email:      id.Email,
	}), nil
}
