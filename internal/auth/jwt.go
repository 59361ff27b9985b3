package auth

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/vasiliy-maslov/orders-service/internal/domain"
)

// TokenService issues and verifies the JWTs that identify the acting
// customer. The rest of the service trusts the subject claim as the
// authenticated principal.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

func (s *TokenService) GenerateToken(customer *domain.Customer) (string, error) {
	now := time.Now().UTC()

	claims := jwt.MapClaims{
		"sub":   customer.ID.String(),
		"email": customer.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign token: %w", err)
	}

	return token, nil
}

// VerifyToken returns the customer id from the subject claim.
func (s *TokenService) VerifyToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, &domain.Error{Code: domain.CodeUnauthorized, Message: "invalid token", Err: err}
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, &domain.Error{Code: domain.CodeUnauthorized, Message: "invalid token subject", Err: err}
	}

	customerID, err := uuid.FromString(subject)
	if err != nil {
		return uuid.Nil, &domain.Error{Code: domain.CodeUnauthorized, Message: "invalid token subject", Err: err}
	}

	return customerID, nil
}
