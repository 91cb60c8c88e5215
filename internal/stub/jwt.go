package stub

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"paygate/internal/model"
)

// TokenTTL is the lifetime of stub-issued bearer tokens.
const TokenTTL = time.Hour

// Claims represents the JWT claims the stub upstream embeds.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs the HS256 bearer tokens the stub upstream hands out.
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer creates a token issuer with the given secret.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

// Issue signs a bearer token for the employee.
func (i *TokenIssuer) Issue(employee *model.Employee) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: employee.ID,
		Email:  employee.Email,
		Role:   employee.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}
