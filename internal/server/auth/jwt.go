// Package auth issues and verifies the stateless access tokens handed out
// after a successful login.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the account id as the only identity claim.
type Claims struct {
	jwt.RegisteredClaims
	AccountID int64 `json:"account_id"`
}

// GenerateToken signs an HS256 token for accountID valid for validity from
// now.
func GenerateToken(accountID int64, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		AccountID: accountID,
	})

	return token.SignedString(secretKey)
}

// GetAccountIDFromToken verifies signature and expiry and returns the
// account id. Expired tokens yield common.ErrTokenExpired; anything else
// wrong yields common.ErrInvalidToken.
func GetAccountIDFromToken(tokenString string, secretKey []byte) (int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, common.ErrTokenExpired
		}
		return 0, common.ErrInvalidToken
	}

	if !token.Valid || claims.AccountID == 0 {
		return 0, common.ErrInvalidToken
	}

	return claims.AccountID, nil
}
