package security

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Роли, которые middleware различает при авторизации
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// NewToken генерирует JWT-токен для указанной учётной записи с заданным временем жизни.
// role попадает в claims и разделяет пользовательский и административный API
func NewToken(ctx context.Context, id int64, email, role string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   fmt.Sprintf("%d", id),
		"email": email,
		"role":  role,
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	secretStr := os.Getenv("JWT_SECRET")
	if secretStr == "" {
		return "", errors.New("JWT_SECRET environment variable is not set")
	}
	secret := []byte(secretStr)
	return token.SignedString(secret)
}
