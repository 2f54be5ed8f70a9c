package test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Token returns the Authorization header for a token of the owner, signed with the secret.
func Token(t *testing.T, secret string, owner uuid.UUID) map[string]string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": owner.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	signed, err := token.SignedString([]byte(secret))
	require.Nil(t, err, "signing the token failed")

	return map[string]string{"Authorization": "Bearer " + signed}
}
