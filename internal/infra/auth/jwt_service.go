package auth

import (
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"jobportal/config"
	"jobportal/internal/domain/entity"
	"jobportal/internal/domain/service"
	"jobportal/internal/errors"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	signingKey []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	now        func() time.Time
}

// NewJWTService is the constructor for jwtService. Outside production a
// missing signing key is replaced by a random per-process key, so tokens do
// not survive a restart.
func NewJWTService(cfg *config.Config, logger *slog.Logger) (service.TokenService, error) {
	key := []byte(cfg.JWT.SigningKey)
	if len(key) == 0 {
		if cfg.IsProduction() {
			return nil, errors.New("jwt signing key must be provided")
		}

		random, err := GenerateSecret(config.MinSigningKeyLength)
		if err != nil {
			return nil, errors.Wrap(err, "generate ephemeral signing key")
		}
		key = []byte(random)
		logger.Warn("jwt.signingKey is empty, using an ephemeral signing key")
	}

	return newJWTService(key, cfg.JWT, time.Now), nil
}

func newJWTService(key []byte, cfg config.JWTConfig, now func() time.Time) *jwtService {
	ttl := cfg.AccessTokenTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &jwtService{
		signingKey: key,
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		accessTTL:  ttl,
		now:        now,
	}
}

// Issue signs an HS256 access token carrying the account identity and role.
func (s *jwtService) Issue(account *entity.Account) (*service.IssuedToken, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTTL)
	tokenID := uuid.NewString()

	claims := service.Claims{
		UserID: account.ID,
		Email:  account.Email,
		Role:   account.TokenRole(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.Email,
			ID:        tokenID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return nil, errors.Wrap(err, "sign access token")
	}

	return &service.IssuedToken{
		Token:     signed,
		TokenID:   tokenID,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate parses a token and enforces algorithm, issuer, audience and expiry.
func (s *jwtService) Validate(tokenString string) (*service.Claims, error) {
	claims := &service.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.Wrap(err, "parse access token")
	}
	if !token.Valid {
		return nil, errors.New("access token is not valid")
	}

	return claims, nil
}
