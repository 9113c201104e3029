package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rajivgeraev/sdelka-api/internal/models"
)

// JWTService отвечает за создание и валидацию JWT токенов
type JWTService struct {
	secretKey string
}

// NewJWTService создаёт новый экземпляр JWTService
func NewJWTService(secretKey string) *JWTService {
	return &JWTService{secretKey: secretKey}
}

// GenerateToken создаёт JWT токен с данными пользователя
func (s *JWTService) GenerateToken(payload models.TokenPayload) (string, error) {
	types := make([]string, 0, len(payload.Types))
	for _, t := range payload.Types {
		types = append(types, string(t))
	}

	claims := jwt.MapClaims{
		"user_id":          payload.ID,
		"types":            types,
		"profile_complete": payload.ProfileComplete,
		"blocked":          payload.Blocked,
		"exp":              time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ValidateToken проверяет JWT токен
func (s *JWTService) ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.secretKey), nil
	})
}

// ExtractPayload извлекает данные пользователя из токена
func (s *JWTService) ExtractPayload(tokenString string) (models.TokenPayload, error) {
	token, err := s.ValidateToken(tokenString)
	if err != nil {
		return models.TokenPayload{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.TokenPayload{}, errors.New("невалидный токен")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return models.TokenPayload{}, errors.New("в токене отсутствует user_id")
	}

	payload := models.TokenPayload{
		ID: int64(userID),
	}

	if rawTypes, ok := claims["types"].([]interface{}); ok {
		for _, rt := range rawTypes {
			if t, ok := rt.(string); ok {
				payload.Types = append(payload.Types, models.UserType(t))
			}
		}
	}
	if pc, ok := claims["profile_complete"].(bool); ok {
		payload.ProfileComplete = pc
	}
	if blocked, ok := claims["blocked"].(bool); ok {
		payload.Blocked = blocked
	}

	return payload, nil
}
