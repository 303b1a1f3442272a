package storage

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/krishichetan/kchetan/internal/models"
)

// Valid reports whether s can be used at now. The backend signs its
// tokens; the client cannot verify them and only reads the expiry of
// JWT-shaped tokens. Opaque tokens are accepted as they are.
func Valid(s *models.Session, now time.Time) bool {
	if s == nil || strings.TrimSpace(s.Token) == "" {
		return false
	}
	if strings.Count(s.Token, ".") != 2 {
		return true
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return now.Before(exp.Time)
}

// FromLogin builds a session from a token response. Claims embedded in a
// JWT token fill fields the response left empty.
func FromLogin(phone string, res *models.LoginResult, now time.Time) models.Session {
	s := models.Session{
		Token:     res.AccessToken,
		Role:      models.Role(res.Role),
		Name:      res.UserName,
		Phone:     phone,
		CreatedAt: now,
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(res.AccessToken, claims); err == nil {
		if s.Phone == "" {
			s.Phone, _ = claims.GetSubject()
		}
		if s.Role == "" {
			if r, ok := claims["role"].(string); ok {
				s.Role = models.Role(r)
			}
		}
		if s.Name == "" {
			if n, ok := claims["name"].(string); ok {
				s.Name = n
			}
		}
	}
	s.Normalize()
	return s
}
