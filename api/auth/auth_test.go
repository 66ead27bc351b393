package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/JohnBravos/bookhub-manager/model"
)

func TestGenerateAccessTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	expires := time.Now().Add(time.Hour)

	token, err := GenerateAccessToken("alice", 42, model.RoleLibrarian, expires, secret)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims := &ClaimsMessage{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		t.Fatalf("Failed to parse token: %v", err)
	}
	if !parsed.Valid {
		t.Fatal("Expected a valid token")
	}

	if claims.Name != "alice" {
		t.Errorf("Unexpected name: %s", claims.Name)
	}
	if claims.Role != model.RoleLibrarian {
		t.Errorf("Unexpected role: %s", claims.Role)
	}
	if claims.Subject != "42" {
		t.Errorf("Unexpected subject: %s", claims.Subject)
	}
	if claims.Issuer != Issuer {
		t.Errorf("Unexpected issuer: %s", claims.Issuer)
	}
	if kid, _ := parsed.Header["kid"].(string); kid != KeyID {
		t.Errorf("Unexpected key id: %s", kid)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateAccessToken("bob", 7, model.RoleMember, time.Now().Add(-time.Hour), secret)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	_, err = jwt.ParseWithClaims(token, &ClaimsMessage{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err == nil {
		t.Fatal("Expected an expired token error")
	}
}
