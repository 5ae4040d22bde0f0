package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rideready/rideready/internal/domain"
	"github.com/rideready/rideready/internal/service"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	auth   *service.AuthService
	config domain.Config
}

func NewAuthMiddleware(
	auth *service.AuthService,
	config domain.Config,
) *AuthMiddleware {
	return &AuthMiddleware{
		auth:   auth,
		config: config,
	}
}

// IdentifyIdentity resolves the caller's identity from a Bearer token or
// the public api key. Failures are recorded but never fatal here; the
// handlers decide via policy whether an anonymous request may proceed.
func (s *AuthMiddleware) IdentifyIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyIdentity")
		defer span.End()

		authHeader := c.Request().Header.Get("authorization")

		if authHeader != "" {
			split := strings.Split(authHeader, " ")
			if len(split) != 2 {
				span.RecordError(fmt.Errorf("invalid authentication header"))
				goto checkAPIKey
			}

			{
				authType, token := split[0], split[1]
				if authType != "Bearer" {
					span.RecordError(fmt.Errorf("only Bearer is acceptable"))
					goto checkAPIKey
				}

				result, err := s.auth.AuthJwt(ctx, token)
				if err != nil {
					span.RecordError(errors.Wrap(err, "AuthMiddleware.IdentifyIdentity: s.auth.AuthJwt failed"))
					goto checkAPIKey
				}

				ctx = context.WithValue(ctx, domain.RequesterIdCtxKey, result.Identity)
				ctx = context.WithValue(ctx, domain.RequesterGroupsCtxKey, result.Groups)
				ctx = context.WithValue(ctx, domain.RequesterNameCtxKey, result.DisplayName)
				span.SetAttributes(attribute.String("RequesterId", result.Identity))
			}
		}

	checkAPIKey:
		if key := c.Request().Header.Get(domain.APIKeyHeader); key != "" {
			if err := s.auth.VerifyAPIKey(key); err == nil {
				ctx = context.WithValue(ctx, domain.APIKeyVerifiedCtxKey, true)
				span.SetAttributes(attribute.Bool("APIKeyVerified", true))
			} else {
				span.RecordError(errors.Wrap(err, "api key verification failed"))
			}
		}

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
