package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenGenerator(t *testing.T) {
	tests := []struct {
		name           string
		secret         string
		accessExpiry   time.Duration
		refreshExpiry  time.Duration
		expectedSecret string
	}{
		{
			name:           "standard initialization",
			secret:         "test-secret-key",
			accessExpiry:   1 * time.Hour,
			refreshExpiry:  7 * 24 * time.Hour,
			expectedSecret: "test-secret-key",
		},
		{
			name:           "short expiry times",
			secret:         "short-secret",
			accessExpiry:   1 * time.Minute,
			refreshExpiry:  10 * time.Minute,
			expectedSecret: "short-secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg := NewTokenGenerator(tt.secret, tt.accessExpiry, tt.refreshExpiry)

			assert.NotNil(t, tg)
			assert.Equal(t, tt.expectedSecret, tg.secret)
			assert.Equal(t, tt.accessExpiry, tg.accessTokenExpiry)
			assert.Equal(t, tt.refreshExpiry, tg.refreshTokenExpiry)
		})
	}
}

func TestTokenGenerator_GenerateTokens(t *testing.T) {
	secret := "b8a3c2267dc85f855dea9b46b452bf20"
	tg := NewTokenGenerator(secret, 1*time.Hour, 7*24*time.Hour)

	t.Run("success with standard accountID", func(t *testing.T) {
		accessToken, refreshToken, err := tg.GenerateTokens(123, 1)
		require.NoError(t, err)
		assert.NotEmpty(t, accessToken)
		assert.NotEmpty(t, refreshToken)
		assert.NotEqual(t, accessToken, refreshToken)
	})

	t.Run("accountID zero", func(t *testing.T) {
		accessToken, refreshToken, err := tg.GenerateTokens(0, 1)
		require.NoError(t, err)
		assert.NotEmpty(t, accessToken)
		assert.NotEmpty(t, refreshToken)

		// Verify accountID 0 is in the token
		accountID, _, err := tg.ValidateAccessToken(accessToken)
		require.NoError(t, err)
		assert.Equal(t, 0, accountID)
	})

	t.Run("role round trip", func(t *testing.T) {
		accessToken, _, err := tg.GenerateTokens(42, 2)
		require.NoError(t, err)

		accountID, role, err := tg.ValidateAccessToken(accessToken)
		require.NoError(t, err)
		assert.Equal(t, 42, accountID)
		assert.Equal(t, 2, role)
	})

	t.Run("token format validation", func(t *testing.T) {
		accessToken, refreshToken, err := tg.GenerateTokens(789, 1)
		require.NoError(t, err)

		// JWT tokens should have 3 parts separated by dots
		accessParts := strings.Split(accessToken, ".")
		assert.Len(t, accessParts, 3)

		refreshParts := strings.Split(refreshToken, ".")
		assert.Len(t, refreshParts, 3)
	})
}

func TestTokenGenerator_ValidateAccessToken(t *testing.T) {
	secret := "b8a3c2267dc85f855dea9b46b452bf20"
	accessExpiry := 1 * time.Hour
	refreshExpiry := 7 * 24 * time.Hour

	tg := NewTokenGenerator(secret, accessExpiry, refreshExpiry)

	t.Run("valid token", func(t *testing.T) {
		accessToken, _, err := tg.GenerateTokens(456, 1)
		require.NoError(t, err)

		accountID, role, err := tg.ValidateAccessToken(accessToken)
		require.NoError(t, err)
		assert.Equal(t, 456, accountID)
		assert.Equal(t, 1, role)
	})

	t.Run("empty string token", func(t *testing.T) {
		_, _, err := tg.ValidateAccessToken("")
		assert.Error(t, err)
	})

	t.Run("invalid token format", func(t *testing.T) {
		_, _, err := tg.ValidateAccessToken("invalid-token")
		assert.Error(t, err)
	})

	t.Run("wrong signature method - non-HMAC", func(t *testing.T) {
		claims := jwt.MapClaims{
			"account_id": 123,
			"role":       1,
			"exp":        time.Now().Add(1 * time.Hour).Unix(),
			"iat":        time.Now().Unix(),
			"type":       "access",
		}
		token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
		tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, _, err = tg.ValidateAccessToken(tokenString)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected signing method")
	})

	t.Run("token without account_id claim", func(t *testing.T) {
		claims := jwt.MapClaims{
			"role": 1,
			"exp":  time.Now().Add(1 * time.Hour).Unix(),
			"iat":  time.Now().Unix(),
			"type": "access",
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenString, err := token.SignedString([]byte(secret))
		require.NoError(t, err)

		_, _, err = tg.ValidateAccessToken(tokenString)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "account_id not found")
	})

	t.Run("token without role claim", func(t *testing.T) {
		claims := jwt.MapClaims{
			"account_id": 123,
			"exp":        time.Now().Add(1 * time.Hour).Unix(),
			"iat":        time.Now().Unix(),
			"type":       "access",
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenString, err := token.SignedString([]byte(secret))
		require.NoError(t, err)

		_, _, err = tg.ValidateAccessToken(tokenString)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "role not found")
	})

	t.Run("token with wrong type - refresh instead of access", func(t *testing.T) {
		claims := jwt.MapClaims{
			"account_id": 123,
			"role":       1,
			"exp":        time.Now().Add(1 * time.Hour).Unix(),
			"iat":        time.Now().Unix(),
			"type":       "refresh",
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenString, err := token.SignedString([]byte(secret))
		require.NoError(t, err)

		_, _, err = tg.ValidateAccessToken(tokenString)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not an access token")
	})

	t.Run("expired token", func(t *testing.T) {
		claims := jwt.MapClaims{
			"account_id": 123,
			"role":       1,
			"exp":        time.Now().Add(-1 * time.Hour).Unix(),
			"iat":        time.Now().Add(-2 * time.Hour).Unix(),
			"type":       "access",
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenString, err := token.SignedString([]byte(secret))
		require.NoError(t, err)

		_, _, err = tg.ValidateAccessToken(tokenString)
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		accessToken, _, err := tg.GenerateTokens(789, 1)
		require.NoError(t, err)

		wrongTG := NewTokenGenerator("wrong-secret", accessExpiry, refreshExpiry)
		_, _, err = wrongTG.ValidateAccessToken(accessToken)
		assert.Error(t, err)
	})
}

func TestTokenGenerator_ValidateRefreshToken(t *testing.T) {
	secret := "b8a3c2267dc85f855dea9b46b452bf20"
	tg := NewTokenGenerator(secret, 1*time.Hour, 7*24*time.Hour)

	t.Run("valid refresh token", func(t *testing.T) {
		_, refreshToken, err := tg.GenerateTokens(789, 1)
		require.NoError(t, err)

		err = tg.ValidateRefreshToken(refreshToken)
		assert.NoError(t, err)
	})

	t.Run("empty string token", func(t *testing.T) {
		err := tg.ValidateRefreshToken("")
		assert.Error(t, err)
	})

	t.Run("access token used as refresh token", func(t *testing.T) {
		accessToken, _, err := tg.GenerateTokens(789, 1)
		require.NoError(t, err)

		err = tg.ValidateRefreshToken(accessToken)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not a refresh token")
	})

	t.Run("expired refresh token", func(t *testing.T) {
		claims := jwt.MapClaims{
			"exp":  time.Now().Add(-1 * time.Hour).Unix(),
			"iat":  time.Now().Add(-2 * time.Hour).Unix(),
			"type": "refresh",
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenString, err := token.SignedString([]byte(secret))
		require.NoError(t, err)

		err = tg.ValidateRefreshToken(tokenString)
		assert.Error(t, err)
	})
}

func TestTokenGenerator_TokenClaims(t *testing.T) {
	secret := "b8a3c2267dc85f855dea9b46b452bf20"
	accessExpiry := 1 * time.Hour
	refreshExpiry := 7 * 24 * time.Hour

	tg := NewTokenGenerator(secret, accessExpiry, refreshExpiry)

	t.Run("access token claims", func(t *testing.T) {
		beforeGeneration := time.Now().Unix()
		accessToken, _, err := tg.GenerateTokens(123, 2)
		require.NoError(t, err)
		afterGeneration := time.Now().Unix()

		token, err := jwt.Parse(accessToken, func(token *jwt.Token) (any, error) {
			return []byte(secret), nil
		})
		require.NoError(t, err)
		require.True(t, token.Valid)

		claims, ok := token.Claims.(jwt.MapClaims)
		require.True(t, ok)

		accountIDFloat, ok := claims["account_id"].(float64)
		require.True(t, ok)
		assert.Equal(t, 123, int(accountIDFloat))

		roleFloat, ok := claims["role"].(float64)
		require.True(t, ok)
		assert.Equal(t, 2, int(roleFloat))

		tokenType, ok := claims["type"].(string)
		require.True(t, ok)
		assert.Equal(t, "access", tokenType)

		iat, ok := claims["iat"].(float64)
		require.True(t, ok)
		assert.GreaterOrEqual(t, int64(iat), beforeGeneration)
		assert.LessOrEqual(t, int64(iat), afterGeneration)

		exp, ok := claims["exp"].(float64)
		require.True(t, ok)
		expectedExp := time.Unix(int64(iat), 0).Add(accessExpiry).Unix()
		assert.Equal(t, expectedExp, int64(exp))
	})

	t.Run("refresh token claims", func(t *testing.T) {
		_, refreshToken, err := tg.GenerateTokens(456, 1)
		require.NoError(t, err)

		token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (any, error) {
			return []byte(secret), nil
		})
		require.NoError(t, err)
		require.True(t, token.Valid)

		claims, ok := token.Claims.(jwt.MapClaims)
		require.True(t, ok)

		// Refresh tokens carry no account payload
		_, hasAccountID := claims["account_id"]
		assert.False(t, hasAccountID, "refresh token should not contain account_id")

		tokenType, ok := claims["type"].(string)
		require.True(t, ok)
		assert.Equal(t, "refresh", tokenType)
	})
}
