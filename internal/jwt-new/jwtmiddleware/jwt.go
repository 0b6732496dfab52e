package jwtmiddleware

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	security "github.com/linemk/shop-orders/internal/jwt-new"
)

type contextKey string

const (
	UserIDKey  contextKey = "userID"
	AdminIDKey contextKey = "adminID"
)

// NewJWTMiddleware создаёт middleware для проверки JWT пользователя,
// секрет берётся из переменной окружения.
func NewJWTMiddleware() func(http.Handler) http.Handler {
	return newRoleMiddleware(security.RoleUser, UserIDKey)
}

// NewAdminJWTMiddleware — то же самое, но пропускает только токены с ролью админа
func NewAdminJWTMiddleware() func(http.Handler) http.Handler {
	return newRoleMiddleware(security.RoleAdmin, AdminIDKey)
}

func newRoleMiddleware(role string, ctxKey contextKey) func(http.Handler) http.Handler {
	// Можно также принять секрет как параметр, если не хочется брать его внутри.
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		panic("JWT_SECRET is not set")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем токен из заголовка Authorization (формат: "Bearer <token>")
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing token", http.StatusUnauthorized)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid token format", http.StatusUnauthorized)
				return
			}
			tokenStr := parts[1]

			// Парсинг и проверка токена
			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
				// Проверка алгоритма
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "invalid token claims", http.StatusUnauthorized)
				return
			}

			// Токен другой роли не даёт доступа к этому API
			tokenRole, _ := claims["role"].(string)
			if tokenRole != role {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			// Извлекаем идентификатор учётной записи из поля "sub"
			sub, ok := claims["sub"].(string)
			if !ok {
				http.Error(w, "invalid token claims: sub not found", http.StatusUnauthorized)
				return
			}

			id, err := strconv.ParseInt(sub, 10, 64)
			if err != nil {
				http.Error(w, "invalid token claims: invalid subject id", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext извлекает userID из контекста.
func FromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}

// AdminFromContext извлекает adminID из контекста.
func AdminFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(AdminIDKey).(int64)
	return id, ok
}
