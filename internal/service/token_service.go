package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/sma-wellbeing-api/internal/models"
	appErrors "github.com/noah-isme/sma-wellbeing-api/pkg/errors"
)

// TokenConfig configures access token validation.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience []string
	Leeway   time.Duration
}

// TokenService validates access tokens issued by the identity provider.
type TokenService struct {
	config TokenConfig
}

// NewTokenService constructs a TokenService.
func NewTokenService(cfg TokenConfig) *TokenService {
	return &TokenService{config: cfg}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *TokenService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	if tokenString == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing token")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	if s.config.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(s.config.Leeway))
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrUnauthorized, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	if !s.audienceAllowed(claims.Audience) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token audience not accepted")
	}

	if claims.UserID == "" || claims.SchoolID == "" || claims.Role == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token is missing caller scope")
	}

	return claims, nil
}

func (s *TokenService) audienceAllowed(aud jwt.ClaimStrings) bool {
	if len(s.config.Audience) == 0 {
		return true
	}
	for _, want := range s.config.Audience {
		for _, got := range aud {
			if want == got {
				return true
			}
		}
	}
	return false
}
