package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/herbvita/shop_backend/internal/models"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	Role string `json:"role"`
	Typ  string `json:"typ"`
	jwt.RegisteredClaims
}

// Service signs and verifies the session token pair. Secrets come in at
// construction, never from the environment at call sites.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	production    bool
}

func NewService(accessSecret, refreshSecret []byte, production bool) *Service {
	return &Service{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		production:    production,
	}
}

func (s *Service) IssueAccessToken(userID uint, role models.Role) (string, time.Time, error) {
	exp := time.Now().Add(AccessTTL)
	claims := AccessClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.accessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (s *Service) IssueRefreshToken(userID uint, role models.Role) (string, time.Time, error) {
	exp := time.Now().Add(RefreshTTL)
	claims := RefreshClaims{
		Role: string(role),
		Typ:  "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.NewString(),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.refreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (s *Service) VerifyAccessToken(tokenStr string) (*AccessClaims, error) {
	var claims AccessClaims
	if err := s.verify(tokenStr, &claims, s.accessSecret); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (s *Service) VerifyRefreshToken(tokenStr string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := s.verify(tokenStr, &claims, s.refreshSecret); err != nil {
		return nil, err
	}
	if claims.Typ != "refresh" {
		return nil, ErrTokenInvalid
	}
	return &claims, nil
}

func (s *Service) verify(tokenStr string, claims jwt.Claims, secret []byte) error {
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected sign method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if !tkn.Valid {
		return ErrTokenInvalid
	}
	return nil
}

// UserID parses the numeric subject out of a claim set.
func UserID(subject string) (uint, error) {
	id, err := strconv.ParseUint(subject, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	return uint(id), nil
}
