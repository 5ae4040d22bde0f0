package service

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"

	"github.com/rideready/rideready/internal/domain"
	"github.com/rideready/rideready/internal/usecase"
	"github.com/rideready/rideready/jwt"
)

var tracer = otel.Tracer("auth")

type AuthService struct {
	config *domain.Config
	riders *usecase.RiderUsecase
	// seen throttles rider upserts to once per cache window
	seen *cache.Cache
}

func NewAuthService(
	config *domain.Config,
	riders *usecase.RiderUsecase,
) *AuthService {
	return &AuthService{
		config: config,
		riders: riders,
		seen:   cache.New(5*time.Minute, 10*time.Minute),
	}
}

type AuthResult struct {
	Identity    string
	Groups      []string
	DisplayName string
}

// AuthJwt validates a session token and records the identity as a known
// rider on first sight within the cache window.
func (s *AuthService) AuthJwt(ctx context.Context, token string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.AuthJwt")
	defer span.End()

	_, claims, err := jwt.Validate(token, []byte(s.config.TokenSecret))
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return nil, err
	}

	if claims.Audience != s.config.FQDN {
		err := fmt.Errorf("jwt audience mismatch: expected %s, got %s", s.config.FQDN, claims.Audience)
		span.RecordError(err)
		return nil, err
	}

	if claims.Subject != "rideready" {
		err := fmt.Errorf("invalid subject")
		span.RecordError(err)
		return nil, err
	}

	if claims.Issuer == "" {
		err := fmt.Errorf("missing issuer identity")
		span.RecordError(err)
		return nil, err
	}

	result := &AuthResult{
		Identity:    claims.Issuer,
		Groups:      claims.Groups,
		DisplayName: claims.DisplayName,
	}

	if s.riders != nil {
		if _, found := s.seen.Get(result.Identity); !found {
			if err := s.riders.Observe(ctx, result.Identity, result.DisplayName); err != nil {
				span.RecordError(errors.Wrap(err, "rider upsert failed"))
			} else {
				s.seen.Set(result.Identity, struct{}{}, cache.DefaultExpiration)
			}
		}
	}

	return result, nil
}

// VerifyAPIKey checks a presented key against the configured bcrypt hash.
func (s *AuthService) VerifyAPIKey(key string) error {
	if s.config.APIKeyHash == "" || key == "" {
		return fmt.Errorf("api key access not configured")
	}
	return bcrypt.CompareHashAndPassword([]byte(s.config.APIKeyHash), []byte(key))
}
