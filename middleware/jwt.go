package middleware

import (
	"context"
	"net/http"
	"net/url"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"

	"github.com/andrewpaige1/mindmap-api/logger"
	"github.com/andrewpaige1/mindmap-api/utils"
)

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Nickname string `json:"nickname"`
}

func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// EnsureValidToken validates Auth0 access tokens when present. Credentials
// are optional: anonymous requests pass through and handlers that need a
// user check utils.GetAuth0ID. With no domain configured it is a no-op.
func EnsureValidToken(domain, audience string, log *logger.Logger) (func(http.Handler) http.Handler, error) {
	if domain == "" {
		log.Warn("AUTH0_DOMAIN not set, authentication disabled")
		return func(next http.Handler) http.Handler { return next }, nil
	}
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, err
	}
	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		log.Warn("encountered error while validating JWT", "error", err, "path", r.URL.Path)
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized", "Failed to validate JWT.")
	}

	mw := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
		jwtmiddleware.WithCredentialsOptional(true),
	)
	return func(next http.Handler) http.Handler {
		return mw.CheckJWT(next)
	}, nil
}
