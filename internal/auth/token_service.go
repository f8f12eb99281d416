package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrExpiredRefreshToken = errors.New("expired refresh token")
	ErrInvalidAccessToken  = errors.New("invalid access token")
	ErrExpiredAccessToken  = errors.New("expired access token")
)

type TokenService interface {
	GenerateTokens(ctx context.Context, userID string) (accessToken, refreshToken string, accessExpiresAt int64, err error)
	ParseAccessToken(ctx context.Context, tokenStr string) (*Claims, error)
	RefreshTokens(ctx context.Context, refreshToken string) (string, string, int64, error)
	RevokeRefreshToken(ctx context.Context, refreshToken string) error
}

type tokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      RefreshStore
	now        func() time.Time
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, store RefreshStore) TokenService {
	return &tokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
		now:        time.Now,
	}
}

func (s *tokenService) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, jwt.ErrTokenUnverifiable
	}
	return s.secret, nil
}

func (s *tokenService) parseRefreshClaims(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, s.keyFunc, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredRefreshToken
		}
		return nil, ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidRefreshToken
	}

	// only refresh tokens carry a jti
	if claims.ID == "" {
		return nil, ErrInvalidRefreshToken
	}

	return claims, nil
}

func (s *tokenService) GenerateTokens(ctx context.Context, userID string) (string, string, int64, error) {
	now := s.now()

	accessExpiresAt := now.Add(s.accessTTL)

	accessClaims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(accessExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(s.secret)
	if err != nil {
		return "", "", 0, err
	}

	jti := uuid.NewString()
	refreshClaims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(s.secret)
	if err != nil {
		return "", "", 0, err
	}

	if err := s.store.Save(ctx, jti, userID, s.refreshTTL); err != nil {
		return "", "", 0, err
	}

	return accessToken, refreshToken, accessExpiresAt.Unix(), nil
}

func (s *tokenService) ParseAccessToken(ctx context.Context, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, s.keyFunc, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredAccessToken
		}
		return nil, ErrInvalidAccessToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidAccessToken
	}

	// a refresh token must not be usable as an access token
	if claims.ID != "" {
		return nil, ErrInvalidAccessToken
	}

	return claims, nil
}

func (s *tokenService) RefreshTokens(ctx context.Context, refreshToken string) (string, string, int64, error) {
	claims, err := s.parseRefreshClaims(refreshToken)
	if err != nil {
		return "", "", 0, err
	}

	// single-use: missing jti means expired, revoked or already used
	ok, err := s.store.Consume(ctx, claims.ID)
	if err != nil {
		return "", "", 0, err
	}
	if !ok {
		return "", "", 0, ErrInvalidRefreshToken
	}

	return s.GenerateTokens(ctx, claims.UserID)
}

func (s *tokenService) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	claims, err := s.parseRefreshClaims(refreshToken)
	if err != nil {
		return err
	}
	return s.store.Revoke(ctx, claims.ID)
}
