package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const adminSubject = "admin"

// AuthService выдаёт токены администратора
type AuthService struct {
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

func NewAuthService(passwordHash, secret string, ttl time.Duration, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AuthService{
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		ttl:          ttl,
		logger:       logger,
		now:          time.Now,
	}
}

// Enabled вход возможен только когда заданы и хэш пароля, и секрет
func (s *AuthService) Enabled() bool {
	return len(s.passwordHash) > 0 && len(s.secret) > 0
}

// Login проверяет пароль и возвращает подписанный токен
func (s *AuthService) Login(password string) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, ErrAdminDisabled
	}

	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		s.logger.Warn("Admin login failed")
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := s.now()
	expires := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("Admin logged in", zap.Time("expires_at", expires))
	return token, expires, nil
}

// ParseToken проверяет подпись и срок действия токена
func (s *AuthService) ParseToken(tokenString string) (*jwt.RegisteredClaims, error) {
	if !s.Enabled() {
		return nil, ErrAdminDisabled
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	if claims.Subject != adminSubject {
		return nil, ErrInvalidCredentials
	}

	return claims, nil
}

// HashPassword готовит значение для ADMIN_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
