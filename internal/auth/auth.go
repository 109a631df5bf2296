// internal/auth/auth.go
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Annany2002/projecthub-backend/api/models"
	"github.com/Annany2002/projecthub-backend/internal/domain"
	"github.com/Annany2002/projecthub-backend/internal/logger"
)

const tokenIssuer = "projecthub-backend"

var (
	// ErrMissingCredential means no token was presented at all.
	ErrMissingCredential = errors.New("access denied: no token provided")
	// ErrInvalidCredential covers every structural, signature and expiry failure.
	ErrInvalidCredential = errors.New("invalid or expired token")
	// ErrInvalidLogin is returned for an unknown email or a wrong password alike.
	ErrInvalidLogin = errors.New("invalid credentials")

	errUnexpectedSigningMethod = errors.New("unexpected token signing method")
	customLog                  = logger.NewLogger()
)

// --- Password Utilities ---

// HashPassword generates a bcrypt hash for the given password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		customLog.Warnf("Error generating bcrypt hash: %v", err)
		return "", fmt.Errorf("failed to hash password")
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a plaintext password with a stored bcrypt hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		customLog.Warnf("Unexpected error comparing password hash: %v", err)
	}
	return err == nil
}

// --- JWT Utilities ---

// GenerateJWT creates a signed JWT string carrying the user's identity fields.
func GenerateJWT(user *domain.User, jwtSecret string, jwtExpiration time.Duration) (string, error) {
	now := time.Now()
	claims := models.CustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		customLog.Warnf("Error signing JWT for user %d: %v", user.ID, err)
		return "", fmt.Errorf("failed to generate token")
	}
	return signedToken, nil
}

// Verifier checks access tokens against the process-wide secret.
// It holds no mutable state and is safe for concurrent use.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier for tokens signed with jwtSecret.
func NewVerifier(jwtSecret string) *Verifier {
	return &Verifier{secret: []byte(jwtSecret)}
}

// Verify decodes a raw credential into an identity claim. An optional "Bearer "
// prefix is accepted. Every failure other than absence yields ErrInvalidCredential;
// the underlying cause is only logged.
func (v *Verifier) Verify(rawCredential string) (*domain.IdentityClaim, error) {
	tokenString := strings.TrimSpace(rawCredential)
	if strings.EqualFold(tokenString, "bearer") {
		tokenString = ""
	} else if len(tokenString) > 7 && strings.EqualFold(tokenString[:7], "bearer ") {
		tokenString = strings.TrimSpace(tokenString[7:])
	}
	if tokenString == "" {
		return nil, ErrMissingCredential
	}

	claims := &models.CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", errUnexpectedSigningMethod, token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		customLog.Warnf("Verify: Token rejected: %v", err)
		return nil, ErrInvalidCredential
	}
	if !token.Valid || claims.UserID <= 0 {
		customLog.Warnf("Verify: Token claims invalid (valid=%v, id=%d)", token.Valid, claims.UserID)
		return nil, ErrInvalidCredential
	}

	identity := &domain.IdentityClaim{
		SubjectID:   claims.UserID,
		Email:       claims.Email,
		Role:        domain.Role(claims.Role),
		DisplayName: claims.Name,
	}
	if claims.IssuedAt != nil {
		identity.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}
