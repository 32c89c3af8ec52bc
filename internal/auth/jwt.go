package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry is the lifetime of session and verification tokens.
const TokenExpiry = 5 * time.Hour

// A token is only accepted for the audience it was issued for.
const (
	audienceSession = "session"
	audienceVerify  = "verify-email"
)

// Claims represents the session JWT claims.
type Claims struct {
	UserID   int64  `json:"userId"`
	Role     string `json:"role"`
	IsLogged bool   `json:"isLogged"`
	jwt.RegisteredClaims
}

// VerificationClaims are carried by the emailed verification link.
type VerificationClaims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

func registeredClaims(audience string) (jwt.RegisteredClaims, error) {
	jti, err := generateJTI()
	if err != nil {
		return jwt.RegisteredClaims{}, fmt.Errorf("generating JTI: %w", err)
	}
	now := time.Now()
	return jwt.RegisteredClaims{
		ID:        jti,
		Audience:  jwt.ClaimStrings{audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
		IssuedAt:  jwt.NewNumericDate(now),
	}, nil
}

func sign(secret string, claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func parse(secret, tokenStr, audience string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithAudience(audience), jwt.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}

// GenerateToken creates a session JWT for a signed-in user.
func GenerateToken(secret string, userID int64, role string) (string, error) {
	rc, err := registeredClaims(audienceSession)
	if err != nil {
		return "", err
	}
	return sign(secret, Claims{
		UserID:           userID,
		Role:             role,
		IsLogged:         true,
		RegisteredClaims: rc,
	})
}

// ValidateToken parses and validates a session JWT, returning the claims.
func ValidateToken(secret, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if err := parse(secret, tokenStr, audienceSession, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// GenerateVerificationToken creates the JWT embedded in the email
// verification link.
func GenerateVerificationToken(secret string, userID int64) (string, error) {
	rc, err := registeredClaims(audienceVerify)
	if err != nil {
		return "", err
	}
	return sign(secret, VerificationClaims{UserID: userID, RegisteredClaims: rc})
}

// ValidateVerificationToken parses and validates an email verification JWT.
func ValidateVerificationToken(secret, tokenStr string) (*VerificationClaims, error) {
	claims := &VerificationClaims{}
	if err := parse(secret, tokenStr, audienceVerify, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// generateJTI creates a random token ID.
func generateJTI() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
