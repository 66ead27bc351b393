package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/JohnBravos/bookhub-manager/model"
)

const (
	Issuer = "bookhub"
	// KeyID is the version of the signing key.
	KeyID = "v1"
	// AccessTokenDuration is the lifetime of an access token.
	AccessTokenDuration = 7 * 24 * time.Hour
	// AccessTokenCookieName is the cookie carrying the access token for
	// browser clients; API clients use the Authorization header.
	AccessTokenCookieName = "bookhub.access-token"
)

// ClaimsMessage carries the username and role alongside the registered
// claims. The ACL still resolves the user row, so the role here is
// informational for clients inspecting their own token.
type ClaimsMessage struct {
	Name string     `json:"name"`
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateAccessToken generates an access token for the user.
func GenerateAccessToken(username string, userID int64, role model.Role, expirationTime time.Time, secret []byte) (string, error) {
	expirationClaim := jwt.NewNumericDate(expirationTime)
	if expirationTime.IsZero() {
		expirationClaim = nil
	}

	claims := &ClaimsMessage{
		Name: username,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Issuer + ".api"},
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: expirationClaim,
			Subject:   fmt.Sprintf("%d", userID),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = KeyID

	accessToken, err := token.SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign access token")
	}
	return accessToken, nil
}
