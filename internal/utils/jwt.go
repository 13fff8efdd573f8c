package utils

import (
	"fmt"
	"time"

	"clubdesk/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// NewAccessToken signs an HS256 JWT carrying the user's identity,
// role and optional category restriction. The web layer turns it back
// into the AppUser every policy check receives.
func NewAccessToken(secret string, user *models.AppUser, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      now.Add(ttl).Unix(),
		"iat":      now.Unix(),
	}
	if user.Category != nil {
		claims["category"] = *user.Category
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseAccessToken validates a token and reconstructs the AppUser it
// was issued for.
func ParseAccessToken(secret, token string) (*models.AppUser, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	user := &models.AppUser{}
	if sub, ok := claims["sub"].(string); ok {
		user.ID = sub
	}
	if username, ok := claims["username"].(string); ok {
		user.Username = username
	}
	if role, ok := claims["role"].(string); ok {
		user.Role = role
	}
	if category, ok := claims["category"].(string); ok {
		user.Category = &category
	}

	if user.ID == "" || user.Role == "" {
		return nil, fmt.Errorf("token missing identity claims")
	}
	return user, nil
}
