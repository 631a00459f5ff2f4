package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DoctorClaims represents the claims in a doctor's access token
type DoctorClaims struct {
	DoctorID string   `json:"doctor_id"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// JWTManager handles JWT token generation and validation
type JWTManager struct {
	secretKey   []byte
	tokenExpiry time.Duration
	issuer      string
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, expiry time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:   []byte(secret),
		tokenExpiry: expiry,
		issuer:      "clinic-billing",
	}
}

// GenerateAccessToken issues a token for a doctor. The practice backend
// normally issues these; this path serves the CLI and local testing.
func (m *JWTManager) GenerateAccessToken(doctorID, email string, roles []string) (string, error) {
	now := time.Now()
	claims := &DoctorClaims{
		DoctorID: doctorID,
		Email:    email,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   doctorID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// ValidateAccessToken validates an access token and returns the claims
func (m *JWTManager) ValidateAccessToken(tokenString string) (*DoctorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &DoctorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*DoctorClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.DoctorID == "" {
		claims.DoctorID = claims.Subject
	}
	if claims.DoctorID == "" {
		return nil, errors.New("token carries no doctor id")
	}

	return claims, nil
}
