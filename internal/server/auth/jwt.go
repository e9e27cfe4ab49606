// Package auth issues and checks the HS256 JWTs that identify requesters
// on the HTTP routes and operators on the admin gRPC service.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/securelinks/internal/common"
	"github.com/dmitrijs2005/securelinks/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims embeds the registered claims and adds the principal id and the
// admin marker required by the LinkService.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
	Admin  bool `json:",omitempty"`
}

func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	return generate(Claims{UserID: userID}, secretKey, validityDuration)
}

// GenerateAdminToken mints a token accepted by the admin service.
func GenerateAdminToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	return generate(Claims{UserID: userID, Admin: true}, secretKey, validityDuration)
}

func generate(claims Claims, secretKey []byte, validityDuration time.Duration) (string, error) {
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(validityDuration))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies tokenString. Expired tokens yield
// common.ErrTokenExpired, any other failure common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims, err := ParseToken(tokenString, secretKey)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// RequesterFromRequest identifies the caller from an "Authorization: Bearer"
// header or, failing that, the session cookie. Missing or invalid
// credentials give the anonymous requester; link holders need not log in.
func RequesterFromRequest(r *http.Request, secretKey []byte) models.Requester {
	raw := bearer(r.Header.Get("Authorization"))
	if raw == "" {
		if c, err := r.Cookie(common.SessionCookieName); err == nil {
			raw = c.Value
		}
	}
	if raw == "" {
		return models.Requester{}
	}

	userID, err := GetUserIDFromToken(raw, secretKey)
	if err != nil {
		return models.Requester{}
	}
	return models.Requester{PrincipalID: userID}
}

func bearer(h string) string {
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}
